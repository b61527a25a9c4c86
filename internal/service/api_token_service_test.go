package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/testutil"
)

func TestAPITokenCreate_ReturnsFullTokenOnce(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, "ci access")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.HasPrefix(created.Token, "mnbk_") {
		t.Errorf("Expected mnbk_ prefix, got %s", created.Token)
	}
	if !strings.HasPrefix(created.TokenPrefix, "mnbk_") || !strings.HasSuffix(created.TokenPrefix, "...") {
		t.Errorf("Expected truncated display prefix, got %s", created.TokenPrefix)
	}

	stored, err := repo.GetByID(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("fetching stored token: %v", err)
	}
	if stored.TokenHash == created.Token {
		t.Error("The raw token must never be stored")
	}
	if stored.TokenHash != HashToken(created.Token) {
		t.Error("Stored hash must match the issued token")
	}

	// The list view never exposes the raw token
	listed, err := svc.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(listed))
	}
	if listed[0].TokenPrefix != created.TokenPrefix {
		t.Errorf("Expected display prefix %s, got %s", created.TokenPrefix, listed[0].TokenPrefix)
	}
}

func TestAPITokenCreate_LimitPerUser(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)
	userID := uuid.New()

	for i := 0; i < maxTokensPerUser; i++ {
		if _, err := svc.Create(context.Background(), userID, "token"); err != nil {
			t.Fatalf("creating token %d: %v", i, err)
		}
	}

	_, err := svc.Create(context.Background(), userID, "one too many")
	if !errors.Is(err, domain.ErrTooManyAPITokens) {
		t.Fatalf("Expected ErrTooManyAPITokens, got %v", err)
	}
}

func TestAPITokenValidate_ResolvesOwner(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, "ci access")
	if err != nil {
		t.Fatalf("creating: %v", err)
	}

	got, err := svc.Validate(context.Background(), created.Token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.UserID != userID {
		t.Errorf("Expected owner %s, got %s", userID, got.UserID)
	}
	if got.ID != created.ID {
		t.Errorf("Expected token %s, got %s", created.ID, got.ID)
	}

	if _, err := svc.Validate(context.Background(), "mnbk_bogus"); !errors.Is(err, domain.ErrAPITokenNotFound) {
		t.Fatalf("Expected ErrAPITokenNotFound, got %v", err)
	}
}

func TestAPITokenRevoke_InvalidatesToken(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, "ci access")
	if err != nil {
		t.Fatalf("creating: %v", err)
	}
	if err := svc.Revoke(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("revoking: %v", err)
	}

	if _, err := svc.Validate(context.Background(), created.Token); !errors.Is(err, domain.ErrAPITokenNotFound) {
		t.Fatalf("Expected revoked token rejected, got %v", err)
	}
	if err := svc.Revoke(context.Background(), userID, created.ID); !errors.Is(err, domain.ErrAPITokenNotFound) {
		t.Fatalf("Expected double revoke to fail, got %v", err)
	}
}
