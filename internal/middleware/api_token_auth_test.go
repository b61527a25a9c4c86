package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// stubTokenValidator resolves a single known token
type stubTokenValidator struct {
	token *domain.APIToken
	raw   string
}

func (s *stubTokenValidator) Validate(ctx context.Context, token string) (*domain.APIToken, error) {
	if s.token != nil && token == s.raw {
		return s.token, nil
	}
	return nil, domain.ErrAPITokenNotFound
}

func newTestToken() *domain.APIToken {
	return &domain.APIToken{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: time.Now(),
	}
}

func runAuthenticated(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var inner echo.Context
	handler := mw(func(c echo.Context) error {
		inner = c
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	return rec, inner
}

func TestAPITokenAuth_Success(t *testing.T) {
	token := newTestToken()
	validator := &stubTokenValidator{token: token, raw: "mnbk_validtoken"}
	mw := NewAPITokenAuthMiddleware(validator).Authenticate()

	rec, inner := runAuthenticated(t, mw, "Bearer mnbk_validtoken")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if got := GetUserID(inner); got != token.UserID {
		t.Errorf("Expected user ID %s in context, got %s", token.UserID, got)
	}
	if got := GetAPITokenID(inner); got != token.ID {
		t.Errorf("Expected token ID %s in context, got %s", token.ID, got)
	}
	if !IsAPITokenAuth(inner) {
		t.Error("Expected API token auth flag in context")
	}
}

func TestAPITokenAuth_MissingHeader(t *testing.T) {
	mw := NewAPITokenAuthMiddleware(&stubTokenValidator{}).Authenticate()
	rec, _ := runAuthenticated(t, mw, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAPITokenAuth_InvalidFormat(t *testing.T) {
	mw := NewAPITokenAuthMiddleware(&stubTokenValidator{}).Authenticate()

	rec, _ := runAuthenticated(t, mw, "Token mnbk_whatever")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for non-Bearer scheme, got %d", rec.Code)
	}

	rec, _ = runAuthenticated(t, mw, "Bearer notaprefix_token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for wrong token prefix, got %d", rec.Code)
	}
}

func TestAPITokenAuth_RevokedToken(t *testing.T) {
	validator := &stubTokenValidator{} // knows no tokens
	mw := NewAPITokenAuthMiddleware(validator).Authenticate()

	rec, _ := runAuthenticated(t, mw, "Bearer mnbk_revoked")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
