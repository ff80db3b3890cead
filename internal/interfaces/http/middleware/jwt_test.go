package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/infrastructure/auth"
	"github.com/rentdesk/backend/internal/infrastructure/config"
)

func jwtFixture(t *testing.T) (*auth.JWTService, string, uuid.UUID) {
	t.Helper()
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters",
		Issuer:          "rentdesk-test",
		ExpirationHours: 1,
	})
	scopeID := uuid.New()
	token, _, err := svc.GenerateToken(auth.GenerateTokenInput{
		UserID:    uuid.New(),
		Username:  "alex",
		ScopeType: "owner",
		ScopeID:   scopeID,
	})
	require.NoError(t, err)
	return svc, token, scopeID
}

func newAuthedEngine(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: svc,
		SkipPaths:  []string{"/public"},
	}))
	engine.GET("/protected", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/public", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc, token, scopeID := jwtFixture(t)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(svc))

	var scopeType, gotScopeID, userID string
	engine.GET("/protected", func(c *gin.Context) {
		scopeType = GetJWTScopeType(c)
		gotScopeID = GetJWTScopeID(c)
		userID = GetJWTUserID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", scopeType)
	assert.Equal(t, scopeID.String(), gotScopeID)
	assert.NotEmpty(t, userID)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	svc, _, _ := jwtFixture(t)
	engine := newAuthedEngine(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuthMiddleware_MalformedToken(t *testing.T) {
	svc, _, _ := jwtFixture(t)
	engine := newAuthedEngine(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_SkipPath(t *testing.T) {
	svc, _, _ := jwtFixture(t)
	engine := newAuthedEngine(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
