package domain

import (
	"context"

	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/soft"
)

// ============ Repository interface ============

// ListOptions filters entity listings
type ListOptions struct {
	// SpecificNamespaces restricts the listing, "" being the core namespace; nil lists everything
	SpecificNamespaces []string
}

// EntityRepository entity document store interface
type EntityRepository interface {
	// Create stores all entities or none; ErrAlreadyExists when any identity is taken
	Create(ctx context.Context, entities []*entity.Entity) error

	// Get returns the entity with the given identity, ErrNotFound otherwise
	Get(ctx context.Context, id entity.Identity) (*entity.Entity, error)

	// Exists reports whether the identity is taken
	Exists(ctx context.Context, id entity.Identity) (bool, error)

	// List returns entities ordered by identity
	List(ctx context.Context, opts ListOptions) ([]*entity.Entity, error)

	// Namespaces returns every specific namespace holding at least one entity ("" for the core namespace)
	Namespaces(ctx context.Context) ([]string, error)

	// Count returns the number of stored entities
	Count(ctx context.Context) (int, error)
}

// ============ Usecase interface ============

// ValidationResult is the outcome of validating one raw entity
type ValidationResult struct {
	Entity *entity.Entity
	Flavor soft.Flavor
	Err    error
}

// EntityUsecase entity business logic interface
type EntityUsecase interface {
	// Get resolves a full identity string
	Get(ctx context.Context, identity string) (*entity.Entity, error)

	// List returns the entities in the given namespaces (full URLs or specific namespace paths)
	List(ctx context.Context, namespaces []string) ([]*entity.Entity, error)

	// Namespaces returns the full URL of every namespace in use, the base namespace always included
	Namespaces(ctx context.Context) ([]string, error)

	// Validate checks every raw entity without storing anything
	Validate(ctx context.Context, raws []map[string]any) []ValidationResult

	// Create validates the whole batch and stores it only if every entity is valid and new
	Create(ctx context.Context, raws []map[string]any) ([]*entity.Entity, error)
}

// Violations flattens the engine errors of item index into per-field violations
func Violations(index int, uri string, err error) []Violation {
	attempts := soft.Attempts(err)
	if len(attempts) == 0 {
		return []Violation{{Index: index, URI: uri, Message: err.Error()}}
	}

	var out []Violation
	for _, attempt := range attempts {
		for _, fe := range attempt.Errors {
			out = append(out, Violation{
				Index:   index,
				URI:     uri,
				Flavor:  attempt.Flavor.String(),
				Kind:    string(fe.Kind),
				Field:   fe.Field,
				Message: fe.Message,
			})
		}
	}
	return out
}
