package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	rate, err := ParseCustomRate("10-2m")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rate.Limit)
	assert.Equal(t, 2*time.Minute, rate.Period)

	rate, err = ParseCustomRate("5-1h")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, rate.Period)

	rate, err = ParseCustomRate("20-10s")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, rate.Period)

	for _, bad := range []string{"", "10", "x-1m", "10-m", "10-1d", "0-1m", "10-0m", "1-2-3"} {
		_, err := ParseCustomRate(bad)
		assert.Error(t, err, bad)
	}
}

func limitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set(utils.ContextUserIDKey, u)
		}
		c.Next()
	})
	r.POST("/reservations", handler, func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func hit(r http.Handler, user string) int {
	req := httptest.NewRequest(http.MethodPost, "/reservations", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestNewRateLimiterRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	alice, bob := uuid.NewString(), uuid.NewString()
	r := limitedRouter(NewRateLimiter(rdb, "2-1m", "create_reservation"))

	assert.Equal(t, http.StatusCreated, hit(r, alice))
	assert.Equal(t, http.StatusCreated, hit(r, alice))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, alice))
	assert.Equal(t, http.StatusCreated, hit(r, bob))

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.Contains(t, keys[0], "rate_limiter:create_reservation")
}

func TestNewRateLimiterMemory(t *testing.T) {
	r := limitedRouter(NewRateLimiter(nil, "1-1m", "decide_request"))
	assert.Equal(t, http.StatusCreated, hit(r, ""))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, ""))
}

func TestCombinedRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	user := uuid.NewString()
	r := limitedRouter(CombinedRateLimiter(rdb, "create_request", "5-1m", "2-1h"))

	assert.Equal(t, http.StatusCreated, hit(r, user))
	assert.Equal(t, http.StatusCreated, hit(r, user))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, user))
}

func TestBadRateFallsBackToPassThrough(t *testing.T) {
	r := limitedRouter(NewRateLimiter(nil, "lots", "broken"))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, hit(r, ""))
	}
}
