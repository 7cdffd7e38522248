package datastore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// userRepository keeps users at /users/<id> with a /usernames/<username> index
type userRepository struct {
	store ds.Batching
	mu    sync.Mutex
}

// NewUserRepository creates a UserRepository
func NewUserRepository(store ds.Batching) domain.UserRepository {
	return &userRepository{store: store}
}

// Create stores a new user and its username index together
func (r *userRepository) Create(ctx context.Context, username, passwordHash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken, err := r.store.Has(ctx, usernameKey(username))
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, domain.NewAlreadyExistsError("User", username)
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	data, err := sonic.Marshal(toUserRecord(user))
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	batch, err := r.store.Batch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start batch: %w", err)
	}
	if err := batch.Put(ctx, userKey(user.ID), data); err != nil {
		return nil, fmt.Errorf("failed to stage user: %w", err)
	}
	if err := batch.Put(ctx, usernameKey(username), []byte(user.ID)); err != nil {
		return nil, fmt.Errorf("failed to stage username: %w", err)
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByUsername resolves the username index
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	id, err := r.store.Get(ctx, usernameKey(username))
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, domain.NewNotFoundError("User", username)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return r.GetByID(ctx, string(id))
}

// GetByID loads a user
func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.NewNotFoundError("User", userID)
	}

	data, err := r.store.Get(ctx, userKey(userID))
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, domain.NewNotFoundError("User", userID)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	var rec userRecord
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return toUserEntity(rec), nil
}

// List returns a page of users ordered by username
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	users, err := r.all(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(users, func(a, b *entity.User) int {
		return strings.Compare(a.Username, b.Username)
	})

	if offset >= len(users) {
		return []*entity.User{}, nil
	}
	end := min(offset+limit, len(users))
	return users[offset:end], nil
}

// Count returns the number of users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	results, err := r.store.Query(ctx, query.Query{Prefix: usersPrefix.String(), KeysOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	entries, err := results.Rest()
	results.Close()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return len(entries), nil
}

// Delete removes the user and its username index
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	batch, err := r.store.Batch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start batch: %w", err)
	}
	if err := batch.Delete(ctx, userKey(user.ID)); err != nil {
		return fmt.Errorf("failed to stage delete: %w", err)
	}
	if err := batch.Delete(ctx, usernameKey(user.Username)); err != nil {
		return fmt.Errorf("failed to stage delete: %w", err)
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the login time
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now

	data, err := sonic.Marshal(toUserRecord(user))
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := r.store.Put(ctx, userKey(user.ID), data); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) all(ctx context.Context) ([]*entity.User, error) {
	results, err := r.store.Query(ctx, query.Query{Prefix: usersPrefix.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer results.Close()

	users := []*entity.User{}
	for res := range results.Next() {
		if res.Error != nil {
			return nil, fmt.Errorf("failed to list users: %w", res.Error)
		}
		var rec userRecord
		if err := sonic.Unmarshal(res.Value, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", res.Key, err)
		}
		users = append(users, toUserEntity(rec))
	}
	return users, nil
}
