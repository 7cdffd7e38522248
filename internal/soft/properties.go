package soft

import (
	"fmt"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// RefType is the property type of cross-entity references
const RefType = "ref"

// ShapePolicy controls how shape entries are checked against the declared dimensions
type ShapePolicy struct {
	// Strict rejects shape entries naming undeclared dimensions when at least one dimension is declared
	Strict bool
}

// NormalizeProperties converts a raw properties value accepted by flavor into the canonical mapping.
// dims is the already normalized dimension set of the same entity.
func NormalizeProperties(raw any, flavor Flavor, dims map[string]string, policy ShapePolicy) (map[string]entity.Property, []*FieldError) {
	out := map[string]entity.Property{}

	switch t := raw.(type) {
	case nil:
		return out, []*FieldError{newFieldError(KindNoProperties, "properties", "at least one property is required")}

	case map[string]any:
		if len(t) == 0 {
			return out, []*FieldError{newFieldError(KindNoProperties, "properties", "at least one property is required")}
		}
		if flavor == Legacy {
			return out, []*FieldError{newFieldError(KindInvalidPropertiesType, "properties",
				"%s entities list their properties as [{name, type, ...}], got a mapping", flavor)}
		}
		var errs []*FieldError
		for _, name := range sortedKeys(t) {
			field := "properties." + name
			if name == "" {
				errs = append(errs, newFieldError(KindInvalidPropertyField, "properties", "property names must not be empty"))
				continue
			}
			rec, ok := t[name].(map[string]any)
			if !ok {
				errs = append(errs, newFieldError(KindInvalidPropertyField, field,
					"must be a mapping, got %s", typeName(t[name])))
				continue
			}
			prop, propErrs := normalizeProperty(field, rec, false, dims, policy)
			errs = append(errs, propErrs...)
			out[name] = prop
		}
		return out, errs

	case []any:
		if len(t) == 0 {
			return out, []*FieldError{newFieldError(KindNoProperties, "properties", "at least one property is required")}
		}
		if flavor == Modern {
			return out, []*FieldError{newFieldError(KindInvalidPropertiesType, "properties",
				"%s entities map property names to definitions, got a sequence", flavor)}
		}
		var errs []*FieldError
		for i, item := range t {
			field := fmt.Sprintf("properties[%d]", i)
			rec, ok := item.(map[string]any)
			if !ok {
				errs = append(errs, newFieldError(KindInvalidPropertyField, field,
					"must be a mapping, got %s", typeName(item)))
				continue
			}
			name, ok := rec["name"].(string)
			if !ok || name == "" {
				errs = append(errs, newFieldError(KindInvalidPropertyField, field+".name", "must be a non-empty string"))
				continue
			}
			if _, dup := out[name]; dup {
				errs = append(errs, newFieldError(KindDuplicatePropertyName, field+".name",
					"property %q is defined more than once", name))
				continue
			}
			prop, propErrs := normalizeProperty(field, rec, true, dims, policy)
			errs = append(errs, propErrs...)
			out[name] = prop
		}
		return out, errs

	default:
		return out, []*FieldError{newFieldError(KindInvalidPropertiesType, "properties",
			"must be a mapping or a sequence, got %s", typeName(raw))}
	}
}

var propertyFields = map[string]bool{
	"type": true, "shape": true, "dims": true, "unit": true,
	"description": true, "$ref": true, "ref": true,
}

func normalizeProperty(field string, rec map[string]any, named bool, dims map[string]string, policy ShapePolicy) (entity.Property, []*FieldError) {
	var (
		prop entity.Property
		errs []*FieldError
	)
	invalid := func(sub, format string, args ...any) {
		errs = append(errs, newFieldError(KindInvalidPropertyField, field+"."+sub, format, args...))
	}

	for _, key := range sortedKeys(rec) {
		if !propertyFields[key] && !(named && key == "name") {
			invalid(key, "unknown field")
		}
	}

	if typ, ok := rec["type"].(string); ok && typ != "" {
		prop.Type = typ
	} else {
		invalid("type", "must be a non-empty string")
	}

	shapeKey := "shape"
	rawShape, hasShape := rec["shape"]
	if rawDims, hasDims := rec["dims"]; hasDims {
		if hasShape {
			invalid("dims", "'shape' and its alias 'dims' are both given")
		} else {
			shapeKey, rawShape, hasShape = "dims", rawDims, true
		}
	}
	if hasShape && rawShape != nil {
		seq, ok := rawShape.([]any)
		if !ok {
			invalid(shapeKey, "must be a sequence of dimension names, got %s", typeName(rawShape))
		}
		for i, item := range seq {
			dim, ok := item.(string)
			if !ok || dim == "" {
				invalid(fmt.Sprintf("%s[%d]", shapeKey, i), "must be a non-empty string")
				continue
			}
			if policy.Strict && len(dims) > 0 {
				if _, declared := dims[dim]; !declared {
					invalid(fmt.Sprintf("%s[%d]", shapeKey, i), "refers to undeclared dimension %q", dim)
				}
			}
			prop.Shape = append(prop.Shape, dim)
		}
	}

	for _, key := range []string{"unit", "description"} {
		s, ok := optionalString(rec[key])
		if !ok {
			invalid(key, "must be a string, got %s", typeName(rec[key]))
			continue
		}
		if key == "unit" {
			prop.Unit = s
		} else {
			prop.Description = s
		}
	}

	refKey := "$ref"
	rawRef, hasRef := rec["$ref"]
	if alias, hasAlias := rec["ref"]; hasAlias {
		if !hasRef {
			refKey, rawRef = "ref", alias
		} else if a, r := fmt.Sprint(alias), fmt.Sprint(rawRef); a != r {
			invalid("ref", "'$ref' and its alias 'ref' differ")
		}
	}
	ref, ok := optionalString(rawRef)
	switch {
	case !ok:
		invalid(refKey, "must be a string, got %s", typeName(rawRef))
	case prop.Type == RefType && ref == "":
		invalid("$ref", "properties of type %q require a '$ref' target", RefType)
	case prop.Type != RefType && ref != "":
		invalid(refKey, "only properties of type %q may carry a reference", RefType)
	case ref != "":
		if _, fe := parseIdentity(field+"."+refKey, ref); fe != nil {
			fe.Kind = KindInvalidPropertyField
			errs = append(errs, fe)
		} else {
			prop.Ref = ref
		}
	}

	return prop, errs
}
