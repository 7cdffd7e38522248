package domain

import (
	"context"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// ============ Repository interface ============

// UserRepository stores accounts allowed to use the admin routes
type UserRepository interface {
	// Create stores a new user; ErrAlreadyExists when the username is taken
	Create(ctx context.Context, username, passwordHash string) (*entity.User, error)

	// GetByUsername is the login lookup
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	GetByID(ctx context.Context, userID string) (*entity.User, error)

	// List returns users ordered by username
	List(ctx context.Context, offset, limit int) ([]*entity.User, error)

	Count(ctx context.Context) (int, error)

	// Delete removes the user and its username index
	Delete(ctx context.Context, userID string) error

	UpdateLastLogin(ctx context.Context, userID string) error
}

// ============ Usecase interface ============

// UserUsecase manages accounts and checks credentials
type UserUsecase interface {
	Register(ctx context.Context, username, password string) (*entity.User, error)

	// EnsureUser creates the configured bootstrap account unless it already exists
	EnsureUser(ctx context.Context, username, password string) error

	// Login verifies the credentials and returns the user
	Login(ctx context.Context, username, password string) (*entity.User, error)

	GetUser(ctx context.Context, userID string) (*entity.User, error)

	// ListUsers returns one page (1-based) and the total count
	ListUsers(ctx context.Context, page, pageSize int) ([]*entity.User, int, error)

	DeleteUser(ctx context.Context, userID string) error
}
