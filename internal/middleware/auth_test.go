package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

const testSecret = "auth-test-secret"

func signToken(t *testing.T, secret string, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testRouter() (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), testSecret)
	var seen uuid.UUID
	r := gin.New()
	r.GET("/whoami", am.RequireAuth(), func(c *gin.Context) {
		id, _ := UserID(c)
		seen = id
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	r, seen := testRouter()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID.String()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != userID {
		t.Fatalf("resolved user = %s, want %s", *seen, userID)
	}
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	r, seen := testRouter()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+signToken(t, testSecret, userID.String()), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != userID {
		t.Fatalf("resolved user = %s, want %s", *seen, userID)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r, _ := testRouter()

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"wrong secret", signToken(t, "other-secret", uuid.New().String())},
		{"non-uuid subject", signToken(t, testSecret, "alice")},
		{"empty subject", signToken(t, testSecret, "")},
		{"garbage", "not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}
