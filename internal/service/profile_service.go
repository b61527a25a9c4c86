package service

import (
	"strings"

	"github.com/moneybook/moneybook-backend/internal/domain"
)

// ProfileService handles user profile reads and updates
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile retrieves the profile for an Auth0 identity
func (s *ProfileService) GetProfile(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// UpdateName changes the user's display name
func (s *ProfileService) UpdateName(auth0ID string, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameLength
	}
	return s.userRepo.UpdateName(auth0ID, name)
}
