package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"claimdrop.backend/pkg/jwt"
)

func authTestRouter(jwtService *jwt.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		wallet, _ := GetUserWallet(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "wallet": wallet})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(userID, "org@example.com", "wallet111")
	require.NoError(t, err)

	r := authTestRouter(jwtService)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, userID.String(), payload["userId"])
	assert.Equal(t, "wallet111", payload["wallet"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	otherService := jwt.NewJWTService("other-secret", 15*time.Minute, 24*time.Hour)
	foreign, err := otherService.GenerateTokenPair(uuid.New(), "org@example.com", "wallet111")
	require.NoError(t, err)

	expiredService := jwt.NewJWTService("test-secret", -time.Minute, 24*time.Hour)
	expired, err := expiredService.GenerateTokenPair(uuid.New(), "org@example.com", "wallet111")
	require.NoError(t, err)

	cases := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{"missing header", "", "Authorization header is required"},
		{"not bearer", "Basic abc", "Invalid authorization format. Use: Bearer <token>"},
		{"garbage token", BearerPrefix + "not-a-jwt", "Invalid token"},
		{"wrong secret", BearerPrefix + foreign.AccessToken, "Invalid token"},
		{"expired token", BearerPrefix + expired.AccessToken, "Token has expired"},
	}

	r := authTestRouter(jwtService)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set(AuthorizationHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			assert.Equal(t, "UNAUTHORIZED", payload["reason"])
			assert.Equal(t, tc.wantMessage, payload["message"])
		})
	}
}

func TestGetUserHelpers_MissingContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	id, ok := GetUserID(c)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)

	wallet, ok := GetUserWallet(c)
	assert.False(t, ok)
	assert.Empty(t, wallet)
}
