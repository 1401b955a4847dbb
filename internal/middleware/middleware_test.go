package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LimitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	given := uuid.New().String()
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	router.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0.001, 2)
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	limiter.GetLimiter("10.0.0.1")
	clock = clock.Add(11 * time.Minute)
	limiter.GetLimiter("10.0.0.2")

	assert.NotContains(t, limiter.limiters, "10.0.0.1")
	assert.Contains(t, limiter.limiters, "10.0.0.2")
}

func TestIPRateLimiterSweepsOncePerIdleWindow(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	for n := 0; n < 20000; n++ {
		limiter.GetLimiter(fmt.Sprintf("10.%d.%d.%d", n>>16&0xff, n>>8&0xff, n&0xff))
	}
	assert.Zero(t, limiter.sweeps)
	assert.Len(t, limiter.limiters, 20000)

	limiter.GetLimiter("10.0.0.1")
	clock = clock.Add(9 * time.Minute)
	limiter.GetLimiter("10.9.9.9")
	clock = clock.Add(2 * time.Minute)
	limiter.GetLimiter("10.9.9.10")
	assert.Equal(t, 1, limiter.sweeps)
	assert.Len(t, limiter.limiters, 2)

	// 10.9.9.9 is idle past the window, but the last sweep is too recent
	clock = clock.Add(9 * time.Minute)
	for n := 0; n < 100; n++ {
		limiter.GetLimiter("10.0.0.1")
	}
	assert.Equal(t, 1, limiter.sweeps)
	assert.Contains(t, limiter.limiters, "10.9.9.9")

	clock = clock.Add(2 * time.Minute)
	limiter.GetLimiter("10.0.0.1")
	assert.Equal(t, 2, limiter.sweeps)
	assert.NotContains(t, limiter.limiters, "10.9.9.9")
	assert.NotContains(t, limiter.limiters, "10.9.9.10")
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
