package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
)

func (s *Store) AddUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := find(s.users, user.ID, userKey); existing != nil {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrDuplicateID)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users = append(s.users, copyUser(user))
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := find(s.users, id, userKey)
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrNotFound)
}

func (s *Store) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := find(s.users, id, userKey)
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	req.Apply(u)
	return copyUser(u), nil
}

func (s *Store) ApproveUser(ctx context.Context, id string) (*model.User, error) {
	return s.UpdateUser(ctx, id, model.UpdateUserRequest{IsApproved: model.BoolPtr(true)})
}

// ListUsers returns every user, or only those with role when it is set.
func (s *Store) ListUsers(ctx context.Context, role model.Role) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		users = append(users, copyUser(u))
	}
	return users, nil
}
