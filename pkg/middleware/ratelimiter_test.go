package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/logger"
)

func newLimitedRouter(opts RateLimiterOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})

	engine := gin.New()
	engine.Use(errors.ErrorHandler())
	engine.Use(NewRateLimiter(log, opts).Middleware())
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
	return engine
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	opts := DefaultRateLimiterOptions()
	opts.Limit = 1
	opts.Burst = 3
	engine := newLimitedRouter(opts)

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	opts := DefaultRateLimiterOptions()
	opts.Limit = 1
	opts.Burst = 1
	engine := newLimitedRouter(opts)

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), errors.CodeRateLimited)
}

func TestRateLimiterKeysClientsSeparately(t *testing.T) {
	opts := DefaultRateLimiterOptions()
	opts.Limit = 1
	opts.Burst = 1
	opts.ExpiryDuration = time.Hour
	opts.KeyFunc = func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}
	engine := newLimitedRouter(opts)

	for _, client := range []string{"a", "b"} {
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "client %s", client)
	}
}
