package service

import (
	"context"
	"fmt"

	"devcampfire/internal/domain"
)

// UserService provides presence, search, and membership lookups.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// SetStatus updates the caller's presence status and last-active timestamp.
func (s *UserService) SetStatus(ctx context.Context, userID, status string) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.users.SetStatus(ctx, userID, status)
}

// Search does a prefix search on GitHub usernames.
func (s *UserService) Search(ctx context.Context, prefix string, limit int) ([]*domain.User, error) {
	if prefix == "" {
		return []*domain.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	return s.users.SearchByUsernamePrefix(ctx, prefix, limit)
}

// OnlineAmong filters the given usernames down to those currently online.
func (s *UserService) OnlineAmong(ctx context.Context, usernames []string) ([]*domain.User, error) {
	if len(usernames) == 0 {
		return []*domain.User{}, nil
	}
	found, err := s.users.ListOnlineByUsernames(ctx, usernames)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []*domain.User{}
	}
	return found, nil
}

// InAppAmong filters the given usernames down to those with a local record,
// regardless of presence.
func (s *UserService) InAppAmong(ctx context.Context, usernames []string) ([]*domain.User, error) {
	if len(usernames) == 0 {
		return []*domain.User{}, nil
	}
	found, err := s.users.ListByUsernames(ctx, usernames)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []*domain.User{}
	}
	return found, nil
}

// Exists reports whether a local record exists for the username.
func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}
