package datastore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	"github.com/samber/lo"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// entityRepository stores canonical entity documents in a go-datastore keyspace
type entityRepository struct {
	store ds.Batching
	base  string
	mu    sync.Mutex // serializes the exists-then-put of Create
}

// NewEntityRepository creates an EntityRepository. base is the base namespace keys are relative to.
func NewEntityRepository(store ds.Batching, base string) domain.EntityRepository {
	return &entityRepository{
		store: store,
		base:  strings.TrimRight(base, "/"),
	}
}

// Create writes every entity in one batch, or none if any identity is taken
func (r *entityRepository) Create(ctx context.Context, entities []*entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch, err := r.store.Batch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start batch: %w", err)
	}

	for _, e := range entities {
		key := entityKey(e.Identity, r.base)
		exists, err := r.store.Has(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check entity %s: %w", e.URI(), err)
		}
		if exists {
			return domain.NewAlreadyExistsError("Entity", e.URI())
		}

		data, err := encodeEntity(e)
		if err != nil {
			return fmt.Errorf("failed to encode entity %s: %w", e.URI(), err)
		}
		if err := batch.Put(ctx, key, data); err != nil {
			return fmt.Errorf("failed to stage entity %s: %w", e.URI(), err)
		}
	}

	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entities: %w", err)
	}
	return nil
}

// Get loads one entity
func (r *entityRepository) Get(ctx context.Context, id entity.Identity) (*entity.Entity, error) {
	data, err := r.store.Get(ctx, entityKey(id, r.base))
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, domain.NewNotFoundError("Entity", id.String())
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return decodeEntity(data)
}

// Exists reports whether the identity is stored
func (r *entityRepository) Exists(ctx context.Context, id entity.Identity) (bool, error) {
	exists, err := r.store.Has(ctx, entityKey(id, r.base))
	if err != nil {
		return false, fmt.Errorf("failed to check entity: %w", err)
	}
	return exists, nil
}

// List returns the entities under the requested namespaces, ordered by uri
func (r *entityRepository) List(ctx context.Context, opts domain.ListOptions) ([]*entity.Entity, error) {
	prefixes := []ds.Key{entitiesPrefix}
	if opts.SpecificNamespaces != nil {
		prefixes = lo.Map(opts.SpecificNamespaces, func(ns string, _ int) ds.Key {
			return entitiesPrefix.ChildString(namespaceSegment(ns))
		})
	}

	entities := []*entity.Entity{}
	for _, prefix := range prefixes {
		results, err := r.store.Query(ctx, query.Query{Prefix: prefix.String()})
		if err != nil {
			return nil, fmt.Errorf("failed to query entities: %w", err)
		}
		entries, err := results.Rest()
		results.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read entities: %w", err)
		}

		for _, entry := range entries {
			e, err := decodeEntity(entry.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry.Key, err)
			}
			entities = append(entities, e)
		}
	}

	slices.SortFunc(entities, func(a, b *entity.Entity) int {
		return strings.Compare(a.URI(), b.URI())
	})
	return entities, nil
}

// Namespaces returns the distinct specific namespaces in use, sorted
func (r *entityRepository) Namespaces(ctx context.Context) ([]string, error) {
	keys, err := r.keys(ctx, entitiesPrefix)
	if err != nil {
		return nil, err
	}

	var namespaces []string
	for _, key := range keys {
		// /entities/<namespace>/<version>/<name>
		parts := key.Namespaces()
		if len(parts) != 4 {
			continue
		}
		ns, err := specificFromSegment(parts[1])
		if err != nil {
			return nil, fmt.Errorf("bad namespace segment in %s: %w", key, err)
		}
		namespaces = append(namespaces, ns)
	}

	namespaces = lo.Uniq(namespaces)
	slices.Sort(namespaces)
	return namespaces, nil
}

// Count returns the number of stored entities
func (r *entityRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.keys(ctx, entitiesPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (r *entityRepository) keys(ctx context.Context, prefix ds.Key) ([]ds.Key, error) {
	results, err := r.store.Query(ctx, query.Query{Prefix: prefix.String(), KeysOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer results.Close()

	var keys []ds.Key
	for res := range results.Next() {
		if res.Error != nil {
			return nil, fmt.Errorf("failed to read keys: %w", res.Error)
		}
		keys = append(keys, ds.NewKey(res.Key))
	}
	return keys, nil
}
