package mocks

import (
	"context"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// MockEntityRepository is a mock implementation of domain.EntityRepository
type MockEntityRepository struct {
	CreateFunc     func(ctx context.Context, entities []*entity.Entity) error
	GetFunc        func(ctx context.Context, id entity.Identity) (*entity.Entity, error)
	ExistsFunc     func(ctx context.Context, id entity.Identity) (bool, error)
	ListFunc       func(ctx context.Context, opts domain.ListOptions) ([]*entity.Entity, error)
	NamespacesFunc func(ctx context.Context) ([]string, error)
	CountFunc      func(ctx context.Context) (int, error)
}

// Create mocks the Create method
func (m *MockEntityRepository) Create(ctx context.Context, entities []*entity.Entity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entities)
	}
	return nil
}

// Get mocks the Get method
func (m *MockEntityRepository) Get(ctx context.Context, id entity.Identity) (*entity.Entity, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.NewNotFoundError("Entity", id.String())
}

// Exists mocks the Exists method
func (m *MockEntityRepository) Exists(ctx context.Context, id entity.Identity) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

// List mocks the List method
func (m *MockEntityRepository) List(ctx context.Context, opts domain.ListOptions) ([]*entity.Entity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, opts)
	}
	return []*entity.Entity{}, nil
}

// Namespaces mocks the Namespaces method
func (m *MockEntityRepository) Namespaces(ctx context.Context) ([]string, error) {
	if m.NamespacesFunc != nil {
		return m.NamespacesFunc(ctx)
	}
	return []string{}, nil
}

// Count mocks the Count method
func (m *MockEntityRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}
