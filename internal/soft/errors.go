package soft

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a single validation failure
type Kind string

const (
	KindMalformedIdentity      Kind = "MalformedIdentity"
	KindNamespaceMismatch      Kind = "NamespaceMismatch"
	KindInconsistentComponents Kind = "InconsistentComponents"
	KindIncompleteComponents   Kind = "IncompleteComponents"
	KindMissingIdentity        Kind = "MissingIdentity"

	KindInvalidDimensionsType  Kind = "InvalidDimensionsType"
	KindDuplicateDimensionName Kind = "DuplicateDimensionName"

	KindInvalidPropertiesType Kind = "InvalidPropertiesType"
	KindDuplicatePropertyName Kind = "DuplicatePropertyName"
	KindNoProperties          Kind = "NoProperties"
	KindInvalidPropertyField  Kind = "InvalidPropertyField"

	KindUnsupportedMetaschema Kind = "UnsupportedMetaschema"
	KindInvalidEntityField    Kind = "InvalidEntityField"
)

// ErrContract marks misuse of the engine by its caller, as opposed to bad input
var ErrContract = errors.New("soft: contract violation")

// FieldError is one violated rule, tagged with the offending field path
type FieldError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind, e.Message)
}

func newFieldError(kind Kind, field, format string, args ...any) *FieldError {
	return &FieldError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidationError aggregates every violation found in one attempt under one flavor
type ValidationError struct {
	Flavor Flavor
	Errors []*FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s) for %s entity", len(e.Errors), e.Flavor)
	for _, fe := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

// Has reports whether any violation is of the given kind
func (e *ValidationError) Has(kind Kind) bool {
	for _, fe := range e.Errors {
		if fe.Kind == kind {
			return true
		}
	}
	return false
}

// FlavorErrors is returned when no flavor accepts the input
type FlavorErrors struct {
	Attempts []*ValidationError
}

func (e *FlavorErrors) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return "entity is not valid in any flavor:\n" + strings.Join(parts, "\n")
}

// Unwrap exposes the per-flavor failures to errors.As
func (e *FlavorErrors) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a)
	}
	return out
}

// Has reports whether any attempt failed with the given kind
func (e *FlavorErrors) Has(kind Kind) bool {
	for _, a := range e.Attempts {
		if a.Has(kind) {
			return true
		}
	}
	return false
}

// HasKind reports whether err carries a violation of the given kind
func HasKind(err error, kind Kind) bool {
	var fe *FlavorErrors
	if errors.As(err, &fe) {
		return fe.Has(kind)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Has(kind)
	}
	return false
}

// Attempts returns the per-flavor failures carried by err, if any
func Attempts(err error) []*ValidationError {
	var fe *FlavorErrors
	if errors.As(err, &fe) {
		return fe.Attempts
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []*ValidationError{ve}
	}
	return nil
}
