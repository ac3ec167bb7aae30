package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	userID := uuid.New()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow(userID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow(userID) {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentUsers(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	user1 := uuid.New()
	user2 := uuid.New()

	// Exhaust user1's burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(user1) {
			t.Errorf("User1 request %d should be allowed", i+1)
		}
	}

	// User1 should be rate limited
	if rl.Allow(user1) {
		t.Error("User1 should be rate limited")
	}

	// User2 should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(user2) {
			t.Errorf("User2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimitMiddleware_SkipsUnauthenticated(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	// No user in context - should pass through without rate limiting
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RateLimitMiddleware(rl)(handler)(c)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitMiddleware_LimitsAuthenticatedUser(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(10, 2) // Small burst for testing
	defer rl.Stop()

	userID := uuid.New()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	newContext := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		ctx := context.WithValue(req.Context(), UserIDKey, userID)
		rec := httptest.NewRecorder()
		return e.NewContext(req.WithContext(ctx), rec), rec
	}

	// First 2 requests should succeed (burst)
	for i := 0; i < 2; i++ {
		c, rec := newContext()
		err := RateLimitMiddleware(rl)(handler)(c)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") == "" {
			t.Error("Expected rate limit headers on successful response")
		}
	}

	// 3rd request should be rejected
	c, rec := newContext()
	err := RateLimitMiddleware(rl)(handler)(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on rejected response")
	}
}
