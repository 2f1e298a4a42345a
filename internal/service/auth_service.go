package service

import (
	"context"
	"fmt"

	"devcampfire/internal/domain"
	"devcampfire/internal/github"
	"devcampfire/internal/security"
)

// AuthService is the identity bridge: it maps GitHub profiles to local user
// records and issues session tokens.
type AuthService struct {
	users     domain.UserRepository
	tokens    *security.TokenService
	encryptor *security.Encryptor
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, encryptor *security.Encryptor) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		encryptor: encryptor,
	}
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// SignIn looks up or lazily creates the local user for a GitHub profile,
// refreshes profile fields from GitHub, and issues a session JWT carrying
// the encrypted OAuth token.
func (s *AuthService) SignIn(ctx context.Context, profile *github.Profile, githubToken string) (*TokenResponse, error) {
	if profile == nil || profile.Username == "" {
		return nil, fmt.Errorf("%w: github profile missing login", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByUsername(ctx, profile.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	avatar := profile.Avatar
	if user == nil {
		user = &domain.User{
			GithubUsername: profile.Username,
			Name:           profile.Name,
			Bio:            profile.Bio,
			Status:         domain.StatusOnline,
		}
		if avatar != "" {
			user.ImageURL = &avatar
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	} else {
		user.Name = profile.Name
		user.Bio = profile.Bio
		if avatar != "" {
			user.ImageURL = &avatar
		}
		user.Status = domain.StatusOnline
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	encrypted := ""
	if githubToken != "" {
		encrypted, err = s.encryptor.Encrypt(githubToken)
		if err != nil {
			return nil, fmt.Errorf("encrypt github token: %w", err)
		}
	}

	token, err := s.tokens.CreateForUser(user.GithubUsername, encrypted)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// Logout marks the user offline. Sessions are stateless JWTs, so there is
// nothing to revoke server-side.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.SetStatus(ctx, userID, domain.StatusOffline)
}
