package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/soft"
	"github.com/SINTEF/entities-service/pkg/metrics"
)

// entityUsecase implements domain.EntityUsecase
type entityUsecase struct {
	validator *soft.Validator
	repo      domain.EntityRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewEntityUsecase creates an EntityUsecase. m may be nil.
func NewEntityUsecase(
	validator *soft.Validator,
	repo domain.EntityRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) domain.EntityUsecase {
	return &entityUsecase{
		validator: validator,
		repo:      repo,
		metrics:   m,
		logger:    logger,
	}
}

// Get resolves a full identity string
func (u *entityUsecase) Get(ctx context.Context, identity string) (*entity.Entity, error) {
	id, err := soft.ParseIdentity(identity)
	if err != nil || !soft.InNamespace(id.Namespace, u.validator.BaseNamespace()) {
		return nil, domain.NewEntityNotFoundError(identity)
	}

	e, err := u.repo.Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewEntityNotFoundError(identity)
		}
		u.metrics.RecordStoreError("get")
		return nil, domain.NewUpstreamError("read entity", err)
	}
	return e, nil
}

// List returns the entities in the given namespaces, or every entity when none are given
func (u *entityUsecase) List(ctx context.Context, namespaces []string) ([]*entity.Entity, error) {
	opts := domain.ListOptions{}
	if len(namespaces) > 0 {
		opts.SpecificNamespaces = make([]string, 0, len(namespaces))
		for _, ns := range namespaces {
			specific, err := u.validator.ResolveNamespace(ns)
			if err != nil {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid namespace: %v", err))
			}
			opts.SpecificNamespaces = append(opts.SpecificNamespaces, specific)
		}
		opts.SpecificNamespaces = lo.Uniq(opts.SpecificNamespaces)
	}

	entities, err := u.repo.List(ctx, opts)
	if err != nil {
		u.metrics.RecordStoreError("list")
		return nil, domain.NewUpstreamError("list entities", err)
	}
	return entities, nil
}

// Namespaces returns the full URL of every namespace in use, the base namespace always first
func (u *entityUsecase) Namespaces(ctx context.Context) ([]string, error) {
	specifics, err := u.repo.Namespaces(ctx)
	if err != nil {
		u.metrics.RecordStoreError("namespaces")
		return nil, domain.NewUpstreamError("list namespaces", err)
	}

	urls := lo.Map(lo.Without(specifics, ""), func(s string, _ int) string {
		return u.validator.NamespaceURL(s)
	})
	slices.Sort(urls)
	return append([]string{u.validator.BaseNamespace()}, lo.Uniq(urls)...), nil
}

// Validate checks every raw entity independently
func (u *entityUsecase) Validate(ctx context.Context, raws []map[string]any) []domain.ValidationResult {
	results := make([]domain.ValidationResult, 0, len(raws))
	for _, raw := range raws {
		e, flavor, err := u.validator.ValidateAny(raw)
		if err != nil {
			u.metrics.RecordValidation("", false)
			results = append(results, domain.ValidationResult{Err: err})
			continue
		}
		u.metrics.RecordValidation(flavor.String(), true)
		results = append(results, domain.ValidationResult{Entity: e, Flavor: flavor})
	}
	return results
}

// Create stores the batch only if every entity is valid, unique within the batch and new to the store
func (u *entityUsecase) Create(ctx context.Context, raws []map[string]any) ([]*entity.Entity, error) {
	if len(raws) == 0 {
		return []*entity.Entity{}, nil
	}

	var violations []domain.Violation
	entities := make([]*entity.Entity, 0, len(raws))
	seen := make(map[string]int, len(raws))

	for i, res := range u.Validate(ctx, raws) {
		if res.Err != nil {
			violations = append(violations, domain.Violations(i, soft.ClaimedURI(raws[i]), res.Err)...)
			continue
		}
		uri := res.Entity.URI()
		if first, dup := seen[uri]; dup {
			violations = append(violations, domain.Violation{
				Index:   i,
				URI:     uri,
				Kind:    "DuplicateIdentity",
				Message: fmt.Sprintf("identity already used by item %d of the batch", first),
			})
			continue
		}
		seen[uri] = i
		entities = append(entities, res.Entity)
	}

	if len(violations) > 0 {
		invalid := len(lo.Uniq(lo.Map(violations, func(v domain.Violation, _ int) int { return v.Index })))
		return nil, domain.NewValidationError(
			fmt.Sprintf("%d of %d entities are invalid", invalid, len(raws)), violations)
	}

	var taken []string
	for _, e := range entities {
		exists, err := u.repo.Exists(ctx, e.Identity)
		if err != nil {
			u.metrics.RecordStoreError("exists")
			return nil, domain.NewUpstreamError("check existing entities", err)
		}
		if exists {
			taken = append(taken, e.URI())
		}
	}
	if len(taken) > 0 {
		return nil, domain.NewAlreadyExistsError("Entity", strings.Join(taken, ", "))
	}

	if err := u.repo.Create(ctx, entities); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, err
		}
		u.metrics.RecordStoreError("create")
		return nil, domain.NewUpstreamError("create entities", err)
	}

	u.metrics.RecordCreated(len(entities))
	u.logger.InfoContext(ctx, "entities created",
		"count", len(entities),
		"uris", lo.Map(entities, func(e *entity.Entity, _ int) string { return e.URI() }),
	)
	return entities, nil
}
