package mocks

import (
	"context"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// MockEntityUsecase is a mock implementation of domain.EntityUsecase
type MockEntityUsecase struct {
	GetFunc        func(ctx context.Context, identity string) (*entity.Entity, error)
	ListFunc       func(ctx context.Context, namespaces []string) ([]*entity.Entity, error)
	NamespacesFunc func(ctx context.Context) ([]string, error)
	ValidateFunc   func(ctx context.Context, raws []map[string]any) []domain.ValidationResult
	CreateFunc     func(ctx context.Context, raws []map[string]any) ([]*entity.Entity, error)
}

// Get mocks the Get method
func (m *MockEntityUsecase) Get(ctx context.Context, identity string) (*entity.Entity, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, identity)
	}
	return nil, domain.NewNotFoundError("Entity", identity)
}

// List mocks the List method
func (m *MockEntityUsecase) List(ctx context.Context, namespaces []string) ([]*entity.Entity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, namespaces)
	}
	return []*entity.Entity{}, nil
}

// Namespaces mocks the Namespaces method
func (m *MockEntityUsecase) Namespaces(ctx context.Context) ([]string, error) {
	if m.NamespacesFunc != nil {
		return m.NamespacesFunc(ctx)
	}
	return []string{}, nil
}

// Validate mocks the Validate method
func (m *MockEntityUsecase) Validate(ctx context.Context, raws []map[string]any) []domain.ValidationResult {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, raws)
	}
	return []domain.ValidationResult{}
}

// Create mocks the Create method
func (m *MockEntityUsecase) Create(ctx context.Context, raws []map[string]any) ([]*entity.Entity, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, raws)
	}
	return []*entity.Entity{}, nil
}
