package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"claimdrop.backend/pkg/redis"
)

func idempotencyRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	calls := 0
	r.Use(func(c *gin.Context) { c.Set(UserIDKey, userID); c.Next() })
	r.Use(IdempotencyMiddleware())
	r.POST("/claim", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})
	r.POST("/fail", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "BAD_REQUEST"})
	})
	return r
}

func TestIdempotencyMiddleware_ReplaysCachedResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	r := idempotencyRouter(uuid.New())

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/claim", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	r.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)
	require.Empty(t, first.Header().Get("X-Idempotency-Hit"))

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claim", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	r.ServeHTTP(second, req)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyMiddleware_KeysScopedPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	alice := idempotencyRouter(uuid.New())
	bob := idempotencyRouter(uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/claim", nil)
	req.Header.Set(IdempotencyHeader, "shared-key")
	alice.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Same key, different organizer; must not replay the first response.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claim", nil)
	req.Header.Set(IdempotencyHeader, "shared-key")
	bob.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("X-Idempotency-Hit"))
}

func TestIdempotencyMiddleware_FailureClearsKey(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	r := idempotencyRouter(uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/fail", nil)
	req.Header.Set(IdempotencyHeader, "key-2")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The key was released, so a retry runs the handler again.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/fail", nil)
	req.Header.Set(IdempotencyHeader, "key-2")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, w.Header().Get("X-Idempotency-Hit"))
}

func TestIdempotencyMiddleware_NoHeaderPassesThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	_ = mr

	r := idempotencyRouter(uuid.New())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/claim", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("X-Idempotency-Hit"))
	}
}

func TestIdempotencyMiddleware_HookedRedisBranches(t *testing.T) {
	origGet := redisGet
	origSet := redisSet
	origSetNX := redisSetNX
	origDel := redisDel
	t.Cleanup(func() {
		redisGet = origGet
		redisSet = origSet
		redisSetNX = origSetNX
		redisDel = origDel
	})
	redisSet = func(context.Context, string, interface{}, time.Duration) error { return nil }
	redisDel = func(context.Context, string) error { return nil }

	t.Run("in-progress conflict", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return "processing", nil }

		r := idempotencyRouter(uuid.New())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/claim", nil)
		req.Header.Set(IdempotencyHeader, "key-3")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("redis down passes through", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return "", errors.New("redis down") }

		r := idempotencyRouter(uuid.New())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/claim", nil)
		req.Header.Set(IdempotencyHeader, "key-4")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("lost setnx race returns conflict", func(t *testing.T) {
		redisGet = func(context.Context, string) (string, error) { return "", errors.New("redis: nil") }
		redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return false, nil }

		r := idempotencyRouter(uuid.New())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/claim", nil)
		req.Header.Set(IdempotencyHeader, "key-5")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusConflict, w.Code)
	})
}
