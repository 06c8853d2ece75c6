package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

func protectedRouter(tokens *services.TokenService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := []gin.HandlerFunc{middleware.Auth(tokens)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": middleware.UserID(c).String(),
			"role":    middleware.Role(c),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuth_MissingToken(t *testing.T) {
	r := protectedRouter(services.NewTokenService("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing token")
}

func TestAuth_ValidAccessToken(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	r := protectedRouter(tokens)

	userID := uuid.New()
	pair, _, err := tokens.GenerateTokenPair(userID.String(), "pat@example.com", models.RolePatient)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), models.RolePatient)
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	// Refresh tokens open sessions, they do not authorize API calls.
	tokens := services.NewTokenService("test-secret")
	r := protectedRouter(tokens)

	pair, _, err := tokens.GenerateTokenPair(uuid.New().String(), "pat@example.com", models.RolePatient)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuth_GarbageToken(t *testing.T) {
	r := protectedRouter(services.NewTokenService("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	r := protectedRouter(tokens, middleware.RequireRole(models.RoleAdmin))

	pair, _, err := tokens.GenerateTokenPair(uuid.New().String(), "admin@example.com", models.RoleAdmin)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Denied(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	r := protectedRouter(tokens, middleware.RequireRole(models.RoleAdmin))

	pair, _, err := tokens.GenerateTokenPair(uuid.New().String(), "pat@example.com", models.RolePatient)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied")
}
