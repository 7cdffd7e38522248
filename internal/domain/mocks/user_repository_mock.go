package mocks

import (
	"context"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	CreateFunc          func(ctx context.Context, username, passwordHash string) (*entity.User, error)
	GetByUsernameFunc   func(ctx context.Context, username string) (*entity.User, error)
	GetByIDFunc         func(ctx context.Context, userID string) (*entity.User, error)
	ListFunc            func(ctx context.Context, offset, limit int) ([]*entity.User, error)
	CountFunc           func(ctx context.Context) (int, error)
	DeleteFunc          func(ctx context.Context, userID string) error
	UpdateLastLoginFunc func(ctx context.Context, userID string) error
}

// Create mocks the Create method
func (m *MockUserRepository) Create(ctx context.Context, username, passwordHash string) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, username, passwordHash)
	}
	return &entity.User{ID: "mock-user-id", Username: username, PasswordHash: passwordHash}, nil
}

// GetByUsername mocks the GetByUsername method
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, domain.NewNotFoundError("User", username)
}

// GetByID mocks the GetByID method
func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID)
	}
	return nil, domain.NewNotFoundError("User", userID)
}

// List mocks the List method
func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, offset, limit)
	}
	return []*entity.User{}, nil
}

// Count mocks the Count method
func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// Delete mocks the Delete method
func (m *MockUserRepository) Delete(ctx context.Context, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID)
	}
	return nil
}

// UpdateLastLogin mocks the UpdateLastLogin method
func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, userID)
	}
	return nil
}
