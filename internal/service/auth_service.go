package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/gamestore/internal/backend"
	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
)

const minPasswordLength = 6

// IdentityProvider issues accounts and sessions.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, username string) (*backend.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*backend.AuthResponse, error)
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type AuthService struct {
	identity IdentityProvider
	users    repository.UserRepository
	now      func() time.Time
}

func NewAuthService(identity IdentityProvider, users repository.UserRepository) *AuthService {
	return &AuthService{identity: identity, users: users, now: time.Now}
}

// SignUp creates the identity account first and the user document second.
func (s *AuthService) SignUp(ctx context.Context, email, password, username string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	resp, err := s.identity.SignUp(ctx, email, password, username)
	if err != nil {
		return nil, identityError(err, ErrInvalidInput)
	}

	now := s.now()
	user := &domain.User{
		ID:          resp.User.ID,
		Email:       email,
		Username:    username,
		DisplayName: username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("%w: create user: %v", ErrRemote, err)
	}

	return sessionFrom(resp), nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	resp, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, identityError(err, ErrNotAuthenticated)
	}
	return sessionFrom(resp), nil
}

// identityError maps a rejected request (4xx) to rejected and everything
// else to ErrRemote.
func identityError(err error, rejected error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", rejected, apiErr.Body)
	}
	return fmt.Errorf("%w: identity provider: %v", ErrRemote, err)
}

func sessionFrom(resp *backend.AuthResponse) *Session {
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		UserID:       resp.User.ID,
	}
}
