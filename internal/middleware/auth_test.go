package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/weather-history/internal/auth"
	"github.com/ukydev/weather-history/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	authService, err := auth.NewService("middleware-test-secret", time.Hour)
	require.NoError(t, err)
	return authService
}

func tokenFor(t *testing.T, authService *auth.Service, role models.Role) string {
	t.Helper()
	token, err := authService.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: "testuser",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := newAuthService(t)
	middleware := NewAuthMiddleware(authService)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/locations", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleViewer))
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "testuser", claims.Username)
			assert.Equal(t, models.RoleViewer, claims.Role)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/locations", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
		assert.Equal(t, "Unauthorized", body.Error)
		assert.Equal(t, "Authorization header required", body.Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		for _, header := range []string{"Bearer invalid-token", "invalid-token", "Basic dXNlcjpwYXNz"} {
			req := httptest.NewRequest(http.MethodGet, "/locations", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()

			middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not be called")
			})).ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		}
	})

	t.Run("public paths", func(t *testing.T) {
		for _, path := range []string{"/", "/health", "/metrics", "/auth/login", "/auth/register"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()

			handlerCalled := false
			middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})).ServeHTTP(w, req)
			assert.True(t, handlerCalled, path)
		}
	})

	t.Run("profile is not public", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		w := httptest.NewRecorder()
		middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_RequirePermission(t *testing.T) {
	middleware := NewAuthMiddleware(newAuthService(t))

	tests := []struct {
		name     string
		role     models.Role
		action   string
		expected int
	}{
		{"admin manages locations", models.RoleAdmin, models.PermManageLocations, http.StatusOK},
		{"editor ingests weather", models.RoleEditor, models.PermIngestWeather, http.StatusOK},
		{"editor cannot manage users", models.RoleEditor, models.PermManageUsers, http.StatusForbidden},
		{"viewer reads weather", models.RoleViewer, models.PermViewWeather, http.StatusOK},
		{"viewer cannot manage locations", models.RoleViewer, models.PermManageLocations, http.StatusForbidden},
		{"viewer cannot ingest", models.RoleViewer, models.PermIngestWeather, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/locations", nil)
			ctx := context.WithValue(req.Context(), UserContextKey, &models.Claims{Username: "u", Role: tt.role})
			w := httptest.NewRecorder()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			middleware.RequirePermission(tt.action)(handler).ServeHTTP(w, req.WithContext(ctx))
			assert.Equal(t, tt.expected, w.Code)
		})
	}

	t.Run("no user context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/locations", nil)
		w := httptest.NewRecorder()
		middleware.RequirePermission(models.PermViewWeather)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptional(t *testing.T) {
	blocked := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	Optional(true, blocked)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	Optional(false, blocked)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{UserID: "123", Username: "testuser", Role: models.RoleAdmin}
	ctx := context.WithValue(context.Background(), UserContextKey, claims)

	got, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
}
