package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/moneybook/moneybook-backend/internal/testutil"
)

func newAPITokenHandler() *APITokenHandler {
	return NewAPITokenHandler(service.NewAPITokenService(testutil.NewMockAPITokenRepository()))
}

func TestCreateAPIToken_Success(t *testing.T) {
	e := echo.New()
	handler := newAPITokenHandler()
	userID := uuid.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/api-tokens", `{"description":"CI pipeline"}`)
	setupUserContext(c, userID)

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.CreateAPITokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !strings.HasPrefix(response.Token, "mnbk_") {
		t.Errorf("Expected token with mnbk_ prefix, got %s", response.Token)
	}
	if response.Description != "CI pipeline" {
		t.Errorf("Expected description 'CI pipeline', got %s", response.Description)
	}
	if response.Warning == "" {
		t.Error("Expected a store-it-now warning")
	}
}

func TestCreateAPIToken_DescriptionRequired(t *testing.T) {
	e := echo.New()
	handler := newAPITokenHandler()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/api-tokens", `{"description":"  "}`)
	setupUserContext(c, uuid.New())

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetAPITokens_OnlyOwnTokens(t *testing.T) {
	e := echo.New()
	tokenService := service.NewAPITokenService(testutil.NewMockAPITokenRepository())
	handler := NewAPITokenHandler(tokenService)
	alice := uuid.New()
	bob := uuid.New()

	if _, err := tokenService.Create(context.Background(), alice, "alice token"); err != nil {
		t.Fatalf("Creating alice token: %v", err)
	}
	if _, err := tokenService.Create(context.Background(), bob, "bob token"); err != nil {
		t.Fatalf("Creating bob token: %v", err)
	}

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/api-tokens", "")
	setupUserContext(c, alice)

	if err := handler.GetAPITokens(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var tokens []domain.APITokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("Failed to unmarshal tokens: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Description != "alice token" {
		t.Errorf("Expected alice's token, got %s", tokens[0].Description)
	}
}

func TestRevokeAPIToken(t *testing.T) {
	e := echo.New()
	tokenService := service.NewAPITokenService(testutil.NewMockAPITokenRepository())
	handler := NewAPITokenHandler(tokenService)
	userID := uuid.New()

	created, err := tokenService.Create(context.Background(), userID, "doomed")
	if err != nil {
		t.Fatalf("Creating token: %v", err)
	}

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/api-tokens/x", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	setupUserContext(c, userID)

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	// Revoking again should 404
	c, rec = newJSONContext(e, http.MethodDelete, "/api/v1/api-tokens/x", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	setupUserContext(c, userID)

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
