package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication callbacks from Auth0
type AuthService struct {
	userRepo domain.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// AuthResult holds the authenticated user and whether it was just created
type AuthResult struct {
	User      *domain.User `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
}

// AuthenticateUser upserts the user row for a validated Auth0 identity.
// Existing users get their email and picture refreshed; first-time callers
// get a row created.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	auth0ID = strings.TrimSpace(auth0ID)
	if auth0ID == "" {
		return nil, domain.ErrUserNotFound
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	isNew := false
	if _, err := s.userRepo.GetByAuth0ID(auth0ID); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		isNew = true
	}

	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		return nil, err
	}

	if isNew {
		log.Info().
			Str("user_id", user.ID.String()).
			Str("email", user.Email).
			Msg("New user registered")
	}

	return &AuthResult{User: user, IsNewUser: isNew}, nil
}

// GetUserIDByAuth0ID resolves an Auth0 subject to the internal user ID.
// It satisfies the WebSocket validator's user lookup.
func (s *AuthService) GetUserIDByAuth0ID(auth0ID string) (uuid.UUID, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}
