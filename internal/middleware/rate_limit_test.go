package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 5)
	defer rl.Stop()
	tokenID := uuid.New()

	for i := 0; i < 5; i++ {
		if !rl.Allow(tokenID) {
			t.Fatalf("Expected request %d within burst to be allowed", i)
		}
	}
	if rl.Allow(tokenID) {
		t.Error("Expected request beyond burst to be denied")
	}
}

func TestRateLimiter_TokensIndependent(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	first := uuid.New()
	second := uuid.New()

	if !rl.Allow(first) {
		t.Fatal("Expected first token's request allowed")
	}
	if rl.Allow(first) {
		t.Error("Expected first token exhausted")
	}
	if !rl.Allow(second) {
		t.Error("Expected second token unaffected")
	}
}

func TestRateLimitMiddleware_SkipsSessionAuth(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	e := echo.New()
	mw := RateLimitMiddleware(rl)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// No API token auth in context, so the limiter never engages
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200 on request %d, got %d", i, rec.Code)
		}
	}
}

func TestRateLimitMiddleware_LimitsAPITokens(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	e := echo.New()
	mw := RateLimitMiddleware(rl)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	tokenID := uuid.New()

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		ctx := context.WithValue(req.Context(), APITokenIDKey, tokenID)
		ctx = context.WithValue(ctx, IsAPITokenAuthKey, true)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on limited response")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected zero remaining, got %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
}
