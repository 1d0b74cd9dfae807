package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucketBurst(t *testing.T) {
	tb := NewTokenBucket(1, 3)

	// 桶初始为满，允许连续3个突发请求
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(100, 1)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	// 100/秒的速率下20毫秒足够填充1个令牌
	time.Sleep(30 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestTokenBucketCapacityCap(t *testing.T) {
	tb := NewTokenBucket(1000, 2)

	// 长时间不取令牌也不会超过桶容量
	time.Sleep(20 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestPathRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/limited", PathRateLimiter(1, 2), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	status := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		r.ServeHTTP(w, req)
		return w.Code
	}

	// 突发额度内的请求放行，超出后返回429
	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusTooManyRequests, status())
}
