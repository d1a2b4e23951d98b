package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testJWTKey = []byte("test-secret-key")

func signTestToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	tokenString := signTestToken(t, testJWTKey, jwt.MapClaims{
		"user_id": float64(42),
		"email":   "admin@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var gotUserID uint
	var gotEmail string
	handler := AuthMiddleware(testJWTKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, email, err := GetUserFromContext(r)
		if err != nil {
			t.Errorf("unexpected context error: %v", err)
		}
		gotUserID = userID
		gotEmail = email
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotUserID != 42 {
		t.Errorf("expected user_id 42, got %d", gotUserID)
	}
	if gotEmail != "admin@example.com" {
		t.Errorf("expected email admin@example.com, got %s", gotEmail)
	}
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	handler := AuthMiddleware(testJWTKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/students", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareWrongKey(t *testing.T) {
	tokenString := signTestToken(t, []byte("some-other-key"), jwt.MapClaims{
		"user_id": float64(42),
		"email":   "admin@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	handler := AuthMiddleware(testJWTKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	tokenString := signTestToken(t, testJWTKey, jwt.MapClaims{
		"user_id": float64(42),
		"email":   "admin@example.com",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	handler := AuthMiddleware(testJWTKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareMissingEmail(t *testing.T) {
	tokenString := signTestToken(t, testJWTKey, jwt.MapClaims{
		"user_id": float64(42),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	handler := AuthMiddleware(testJWTKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rr := httptest.NewRecorder()

	// A signed token without an email claim must be rejected, not panic
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareMissingUserID(t *testing.T) {
	tokenString := signTestToken(t, testJWTKey, jwt.MapClaims{
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	handler := AuthMiddleware(testJWTKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}
