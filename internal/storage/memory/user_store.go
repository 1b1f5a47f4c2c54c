package memory

import (
	"context"
	"sync"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	byUsername map[string]struct{}
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]struct{}),
	}
}

// Insert adds a new user. Returns ErrDuplicateKey if id or username already exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.ID == "" || u.Username == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byUsername[u.Username]; exists {
		return storage.ErrDuplicateKey
	}

	s.users[u.ID] = copyUser(u)
	s.byUsername[u.Username] = struct{}{}
	return nil
}

// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.MajorGroup = copyString(u.MajorGroup)
	c.MidGroup = copyString(u.MidGroup)
	c.SubGroup = copyString(u.SubGroup)
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

var _ storage.UserStore = (*UserStore)(nil)
