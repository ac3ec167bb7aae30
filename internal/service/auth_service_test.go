package service

import (
	"errors"
	"testing"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestAuthenticateUser_NewUser(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewAuthService(repo)

	email := "alex@example.com"
	name := "Alex"
	result, err := service.AuthenticateUser("auth0|123", email, &name, nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !result.IsNewUser {
		t.Errorf("expected IsNewUser true")
	}
	if result.User.Email != email {
		t.Errorf("expected email %s, got %s", email, result.User.Email)
	}
	if result.User.Currency != domain.DefaultCurrency {
		t.Errorf("expected default currency, got %s", result.User.Currency)
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewAuthService(repo)

	existing := &domain.User{
		ID:       uuid.New(),
		Auth0ID:  "auth0|123",
		Email:    "alex@example.com",
		Currency: "EUR",
	}
	repo.AddUser(existing)

	result, err := service.AuthenticateUser("auth0|123", "alex@example.com", nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.IsNewUser {
		t.Errorf("expected IsNewUser false")
	}
	if result.User.ID != existing.ID {
		t.Errorf("expected existing user returned")
	}
}

func TestGetUserIDByAuth0ID(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewAuthService(repo)

	existing := &domain.User{ID: uuid.New(), Auth0ID: "auth0|123", Email: "alex@example.com"}
	repo.AddUser(existing)

	id, err := service.GetUserIDByAuth0ID("auth0|123")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if id != existing.ID {
		t.Errorf("expected %s, got %s", existing.ID, id)
	}

	if _, err := service.GetUserIDByAuth0ID("auth0|unknown"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUpdateProfile_Currency(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewProfileService(repo)

	repo.AddUser(&domain.User{ID: uuid.New(), Auth0ID: "auth0|123", Email: "alex@example.com", Currency: "USD"})

	currency := "eur"
	user, err := service.UpdateProfile("auth0|123", nil, &currency)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.Currency != "EUR" {
		t.Errorf("expected normalized EUR, got %s", user.Currency)
	}

	bad := "euros"
	if _, err := service.UpdateProfile("auth0|123", nil, &bad); !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got: %v", err)
	}
}
