package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(tokens *services.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := helper.NewHTTPHelper(zerolog.Nop())

	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/whoami", AuthMiddleware(tokens, h), func(c *gin.Context) {
		actor := Actor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.POST("/review", AuthMiddleware(tokens, h), RequireRole(models.RoleEditor, h), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/open", RequireRole(models.RoleReader, h), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func issue(t *testing.T, tokens *services.TokenManager, id uint, role models.UserRole) string {
	t.Helper()
	token, err := tokens.Issue(&models.User{ID: id, Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := services.NewTokenManager("test-secret", time.Hour)
	r := newTestEngine(tokens)

	w := serve(r, http.MethodGet, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/whoami", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged := issue(t, services.NewTokenManager("other-secret", time.Hour), 1, models.RoleAdmin)
	w = serve(r, http.MethodGet, "/whoami", forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/whoami", issue(t, tokens, 9, models.RoleWriter))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":9,"role":"writer"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthMiddlewareRequiresBearerScheme(t *testing.T) {
	tokens := services.NewTokenManager("test-secret", time.Hour)
	r := newTestEngine(tokens)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", issue(t, tokens, 1, models.RoleReader))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := services.NewTokenManager("test-secret", time.Hour)
	r := newTestEngine(tokens)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/review", issue(t, tokens, 1, models.RoleWriter)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/review", issue(t, tokens, 2, models.RoleEditor)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/review", issue(t, tokens, 3, models.RoleAdmin)).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/open", "").Code)
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	r := newTestEngine(services.NewTokenManager("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
