package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, sub, role string, expires time.Time) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func identityEngine(verifier TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), OptionalIdentity(verifier, nil))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		uid := GetUserID(c)
		if uid == nil {
			c.JSON(http.StatusOK, gin.H{"user": "guest", "admin": IsAdmin(c)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": uid.String(), "admin": IsAdmin(c)})
	})
	return r
}

func doWhoami(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptionalIdentity(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: testSecret})
	r := identityEngine(verifier)
	userID := uuid.New()

	t.Run("no header is a guest", func(t *testing.T) {
		w := doWhoami(r, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"guest"`)
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		w := doWhoami(r, "Bearer "+signToken(t, userID.String(), "", time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), `"admin":false`)
	})

	t.Run("admin role", func(t *testing.T) {
		w := doWhoami(r, "Bearer "+signToken(t, userID.String(), auth.RoleAdmin, time.Now().Add(time.Hour)))
		assert.Contains(t, w.Body.String(), `"admin":true`)
	})

	t.Run("expired token", func(t *testing.T) {
		w := doWhoami(r, "Bearer "+signToken(t, userID.String(), "", time.Now().Add(-time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doWhoami(r, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doWhoami(r, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("disabled verifier ignores tokens", func(t *testing.T) {
		r := identityEngine(auth.NewTokenVerifier(config.JWTConfig{}))
		w := doWhoami(r, "Bearer whatever")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"guest"`)
	})
}

func TestRequireRole(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: testSecret})
	r := identityEngine(verifier, RequireRole(auth.RoleAdmin))
	sub := uuid.NewString()

	assert.Equal(t, http.StatusUnauthorized, doWhoami(r, "").Code)
	assert.Equal(t, http.StatusForbidden, doWhoami(r, "Bearer "+signToken(t, sub, "", time.Now().Add(time.Hour))).Code)
	assert.Equal(t, http.StatusOK, doWhoami(r, "Bearer "+signToken(t, sub, auth.RoleAdmin, time.Now().Add(time.Hour))).Code)
}

func TestRequireIdentity(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: testSecret})
	r := identityEngine(verifier, RequireIdentity())

	assert.Equal(t, http.StatusUnauthorized, doWhoami(r, "").Code)
	assert.Equal(t, http.StatusOK, doWhoami(r, "Bearer "+signToken(t, uuid.NewString(), "", time.Now().Add(time.Hour))).Code)
}
