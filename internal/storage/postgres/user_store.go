package postgres

import (
	"context"
	"fmt"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if id or username exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	if u == nil || u.ID == "" || u.Username == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO users (id, username, role, major_group, mid_group, sub_group, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		u.ID, u.Username, u.Role, u.MajorGroup, u.MidGroup, u.SubGroup, u.IsActive)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, role, major_group, mid_group, sub_group, is_active
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Role, &u.MajorGroup, &u.MidGroup, &u.SubGroup, &u.IsActive)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}
