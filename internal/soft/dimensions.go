package soft

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// NormalizeDimensions converts a raw dimensions value accepted by flavor into the canonical mapping.
// An absent (nil) value yields an empty mapping.
func NormalizeDimensions(raw any, flavor Flavor) (map[string]string, []*FieldError) {
	switch t := raw.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]any:
		if flavor == Legacy && len(t) > 0 {
			return map[string]string{}, []*FieldError{newFieldError(KindInvalidDimensionsType, "dimensions",
				"%s entities list their dimensions as [{name, description}], got a mapping", flavor)}
		}
		return dimensionsFromMapping(t)
	case []any:
		if flavor == Modern && len(t) > 0 {
			return map[string]string{}, []*FieldError{newFieldError(KindInvalidDimensionsType, "dimensions",
				"%s entities map dimension names to descriptions, got a sequence", flavor)}
		}
		return dimensionsFromSequence(t)
	default:
		return map[string]string{}, []*FieldError{newFieldError(KindInvalidDimensionsType, "dimensions",
			"must be a mapping or a sequence, got %s", typeName(raw))}
	}
}

func dimensionsFromMapping(m map[string]any) (map[string]string, []*FieldError) {
	out := make(map[string]string, len(m))
	var errs []*FieldError

	for _, name := range sortedKeys(m) {
		field := "dimensions." + name
		if name == "" {
			errs = append(errs, newFieldError(KindInvalidDimensionsType, "dimensions", "dimension names must not be empty"))
			continue
		}
		desc, ok := optionalString(m[name])
		if !ok {
			errs = append(errs, newFieldError(KindInvalidDimensionsType, field,
				"description must be a string, got %s", typeName(m[name])))
			continue
		}
		out[name] = desc
	}
	return out, errs
}

func dimensionsFromSequence(seq []any) (map[string]string, []*FieldError) {
	out := make(map[string]string, len(seq))
	var errs []*FieldError

	for i, item := range seq {
		field := fmt.Sprintf("dimensions[%d]", i)
		rec, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, newFieldError(KindInvalidDimensionsType, field,
				"must be a mapping with 'name' and 'description', got %s", typeName(item)))
			continue
		}
		for _, key := range sortedKeys(rec) {
			if key != "name" && key != "description" {
				errs = append(errs, newFieldError(KindInvalidDimensionsType, field+"."+key, "unknown field"))
			}
		}
		name, ok := rec["name"].(string)
		if !ok || name == "" {
			errs = append(errs, newFieldError(KindInvalidDimensionsType, field+".name", "must be a non-empty string"))
			continue
		}
		desc, ok := optionalString(rec["description"])
		if !ok {
			errs = append(errs, newFieldError(KindInvalidDimensionsType, field+".description",
				"must be a string, got %s", typeName(rec["description"])))
			continue
		}
		if _, dup := out[name]; dup {
			errs = append(errs, newFieldError(KindDuplicateDimensionName, field+".name",
				"dimension %q is defined more than once", name))
			continue
		}
		out[name] = desc
	}
	return out, errs
}

// optionalString coerces nil to "" and rejects anything that is not a string
func optionalString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	default:
		return "", false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

// typeName names a decoded JSON/YAML value the way users write it
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, uint64:
		return "number"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	default:
		return fmt.Sprintf("%T", v)
	}
}
