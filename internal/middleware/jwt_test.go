package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, userID, role string) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := CurrentClaims(c)
		c.JSON(http.StatusOK, gin.H{"uid": claims.UserID})
	})
	r.GET("/students/:id/major", handlers...)
	return r
}

func TestJWTMissingHeader(t *testing.T) {
	r := protectedRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/s1/major", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTInvalidToken(t *testing.T) {
	r := protectedRouter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/s1/major", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidToken(t *testing.T) {
	r := protectedRouter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/s1/major", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "s1", RoleStudent))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "s1")
}

func TestRBACAllowsRole(t *testing.T) {
	r := protectedRouter(RBAC(RoleAdmin))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/s1/major", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "admin-1", RoleAdmin))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACForbidsOtherRole(t *testing.T) {
	r := protectedRouter(RBAC(RoleAdmin))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/s1/major", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "s2", RoleStudent))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACSelfAccess(t *testing.T) {
	r := protectedRouter(RBAC(RoleAdmin, "SELF"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/s1/major", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "s1", RoleStudent))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/students/s1/major", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "s2", RoleStudent))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
