package service

import (
	"strings"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
)

// ProfileService handles user profile business logic
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile retrieves the profile for an authenticated user
func (s *ProfileService) GetProfile(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// UpdateProfile updates the user's display name and/or preferred currency
func (s *ProfileService) UpdateProfile(auth0ID string, name *string, currency *string) (*domain.User, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, domain.ErrNameRequired
		}
		name = &trimmed
	}

	if currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*currency))
		if !isValidCurrencyCode(code) {
			return nil, domain.ErrInvalidCurrency
		}
		currency = &code
	}

	return s.userRepo.UpdateProfile(auth0ID, name, currency)
}

// isValidCurrencyCode checks the shape of an ISO 4217 code. The currency
// is a display preference only; no conversion happens anywhere.
func isValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
