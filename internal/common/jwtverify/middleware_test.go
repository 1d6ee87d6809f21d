package jwtverify

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inklet-app/inklet/backend/internal/common/logger"
)

const testSecret = "test-secret-that-is-long-enough-123"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "user-1",
		"usr": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func claimsEcho(t *testing.T) (http.Handler, *Claims, *bool) {
	var got Claims
	var called bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	_ = t
	return handler, &got, &called
}

func TestMiddleware_ValidToken(t *testing.T) {
	echo, got, _ := claimsEcho(t)
	handler := Middleware(testSecret, logger.NewDiscard())(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != "user-1" || got.Username != "alice" {
		t.Errorf("unexpected claims: %+v", got)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	echo, _, called := claimsEcho(t)
	handler := Middleware(testSecret, logger.NewDiscard())(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("expected the handler not to run")
	}
}

func TestMiddleware_WrongSecret(t *testing.T) {
	echo, _, called := claimsEcho(t)
	handler := Middleware(testSecret, logger.NewDiscard())(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "another-secret-that-is-long-enough", validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("expected the handler not to run")
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	echo, _, _ := claimsEcho(t)
	handler := Middleware(testSecret, logger.NewDiscard())(echo)

	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestOptional_AnonymousPassesThrough(t *testing.T) {
	echo, got, called := claimsEcho(t)
	handler := Optional(testSecret, logger.NewDiscard())(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !*called {
		t.Fatal("expected the handler to run")
	}
	if got.UserID != "" {
		t.Errorf("expected no claims, got %+v", got)
	}
}

func TestOptional_ValidTokenAttachesClaims(t *testing.T) {
	echo, got, _ := claimsEcho(t)
	handler := Optional(testSecret, logger.NewDiscard())(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != "user-1" {
		t.Errorf("expected claims attached, got %+v", got)
	}
}

func TestOptional_BadTokenIgnored(t *testing.T) {
	echo, got, called := claimsEcho(t)
	handler := Optional(testSecret, logger.NewDiscard())(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !*called {
		t.Fatal("expected the handler to run")
	}
	if got.UserID != "" {
		t.Errorf("expected no claims for a bad token, got %+v", got)
	}
}
