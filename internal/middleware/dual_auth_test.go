package middleware

import (
	"net/http"
	"testing"
)

func TestDualAuth_RoutesAPIToken(t *testing.T) {
	token := newTestToken()
	validator := &stubTokenValidator{token: token, raw: "mnbk_validtoken"}
	dual := NewDualAuthMiddleware(nil, NewAPITokenAuthMiddleware(validator))

	rec, inner := runAuthenticated(t, dual.Authenticate(), "Bearer mnbk_validtoken")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !IsAPITokenAuth(inner) {
		t.Error("Expected API token auth flag")
	}
}

func TestDualAuth_BareAPITokenAccepted(t *testing.T) {
	token := newTestToken()
	validator := &stubTokenValidator{token: token, raw: "mnbk_validtoken"}
	dual := NewDualAuthMiddleware(nil, NewAPITokenAuthMiddleware(validator))

	// API tokens work without the Bearer prefix for simple clients
	rec, _ := runAuthenticated(t, dual.Authenticate(), "mnbk_validtoken")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
}

func TestDualAuth_MissingHeader(t *testing.T) {
	dual := NewDualAuthMiddleware(nil, NewAPITokenAuthMiddleware(&stubTokenValidator{}))
	rec, _ := runAuthenticated(t, dual.Authenticate(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestJWTOnly_RejectsAPIToken(t *testing.T) {
	token := newTestToken()
	validator := &stubTokenValidator{token: token, raw: "mnbk_validtoken"}
	dual := NewDualAuthMiddleware(nil, NewAPITokenAuthMiddleware(validator))

	rec, _ := runAuthenticated(t, dual.JWTOnly(), "Bearer mnbk_validtoken")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for API token on JWT-only route, got %d", rec.Code)
	}
}
