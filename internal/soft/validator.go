package soft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

const (
	// DefaultBaseNamespace is the namespace every entity identity must lie within
	DefaultBaseNamespace = "http://onto-ns.com/meta"
	// DefaultMetaschema is the pinned metaschema every entity must declare as its meta
	DefaultMetaschema = "http://onto-ns.com/meta/0.3/EntitySchema"
)

var entityFields = map[string]bool{
	"uri": true, "identity": true, "namespace": true, "version": true, "name": true,
	"meta": true, "description": true, "dimensions": true, "properties": true,
}

// Options are resolved once per process and shared by every validation call
type Options struct {
	BaseNamespace string
	Metaschema    string
	StrictShapes  bool
}

// Validator turns raw entity mappings into canonical entities.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	base   string
	meta   string
	shapes ShapePolicy
}

// NewValidator checks opts and returns a Validator. Empty options fall back to the defaults.
func NewValidator(opts Options) (*Validator, error) {
	base := strings.TrimRight(opts.BaseNamespace, "/")
	if base == "" {
		base = DefaultBaseNamespace
	}
	if err := checkNamespace(base); err != nil {
		return nil, fmt.Errorf("%w: base namespace: %v", ErrContract, err)
	}

	meta := opts.Metaschema
	if meta == "" {
		meta = DefaultMetaschema
	}
	if _, fe := parseIdentity("meta", meta); fe != nil {
		return nil, fmt.Errorf("%w: metaschema: %s", ErrContract, fe.Message)
	}

	return &Validator{
		base:   base,
		meta:   meta,
		shapes: ShapePolicy{Strict: opts.StrictShapes},
	}, nil
}

// MustNewValidator is NewValidator for options known to be valid
func MustNewValidator(opts Options) *Validator {
	v, err := NewValidator(opts)
	if err != nil {
		panic(err)
	}
	return v
}

// BaseNamespace returns the configured base namespace without trailing slash
func (v *Validator) BaseNamespace() string {
	return v.base
}

// Metaschema returns the pinned metaschema identity
func (v *Validator) Metaschema() string {
	return v.meta
}

// Validate runs the full pipeline under one flavor and reports every violation found
func (v *Validator) Validate(raw map[string]any, flavor Flavor) (*entity.Entity, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	var errs []*FieldError

	id, idErrs := v.resolveIdentity(raw)
	errs = append(errs, idErrs...)

	meta, metaErr := v.checkMeta(raw["meta"])
	if metaErr != nil {
		errs = append(errs, metaErr)
	}

	description, ok := optionalString(raw["description"])
	if !ok {
		errs = append(errs, newFieldError(KindInvalidEntityField, "description",
			"must be a string, got %s", typeName(raw["description"])))
	}

	for _, key := range sortedKeys(raw) {
		if !entityFields[key] {
			errs = append(errs, newFieldError(KindInvalidEntityField, key, "unknown field"))
		}
	}

	dims, dimErrs := NormalizeDimensions(raw["dimensions"], flavor)
	errs = append(errs, dimErrs...)

	props, propErrs := NormalizeProperties(raw["properties"], flavor, dims, v.shapes)
	errs = append(errs, propErrs...)

	if len(errs) > 0 {
		return nil, &ValidationError{Flavor: flavor, Errors: errs}
	}

	return &entity.Entity{
		Identity:    id,
		Meta:        meta,
		Description: description,
		Dimensions:  dims,
		Properties:  props,
	}, nil
}

// ValidateAny tries every flavor in order and returns the first success.
// When all fail the error is a *FlavorErrors holding each attempt.
func (v *Validator) ValidateAny(raw map[string]any) (*entity.Entity, Flavor, error) {
	attempts := make([]*ValidationError, 0, len(Flavors))
	for _, flavor := range Flavors {
		e, err := v.Validate(raw, flavor)
		if err == nil {
			return e, flavor, nil
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return nil, flavor, err
		}
		attempts = append(attempts, ve)
	}
	return nil, Modern, &FlavorErrors{Attempts: attempts}
}

func (v *Validator) checkMeta(raw any) (string, *FieldError) {
	if raw == nil {
		return v.meta, nil
	}
	meta, ok := raw.(string)
	if !ok || meta != v.meta {
		return "", newFieldError(KindUnsupportedMetaschema, "meta",
			"got %v, only %q is supported", raw, v.meta)
	}
	return meta, nil
}
