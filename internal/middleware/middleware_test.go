package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/admin", AuthMiddleware("secret"), AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetUint(UserIDKey)})
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndAdminOnly(t *testing.T) {
	r := newRouter()

	admin, err := utils.GenerateToken(&models.User{ID: 1, Role: models.UserRoleAdmin}, "secret", time.Hour)
	require.NoError(t, err)
	driver, err := utils.GenerateToken(&models.User{ID: 2, Role: models.UserRoleDriver}, "secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+driver)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "bearer "+admin)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}

func TestRequestIDPropagates(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Len(t, serve(r, req).Header().Get(RequestIDHeader), 36)
}
