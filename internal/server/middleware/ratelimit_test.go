package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbergo/guardrails/internal/server/middleware"
)

func newLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	limiter := middleware.NewRateLimiter(rps, burst, zap.NewNop())
	engine.Use(limiter.Middleware())
	engine.POST("/v1/call", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"result": "ok"})
	})
	return engine
}

func doCall(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/v1/call", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	router := newLimitedRouter(100, 5)

	rec := doCall(router)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_ThrottledRequestIsProblemNotCallResult(t *testing.T) {
	router := newLimitedRouter(0.0001, 1)

	first := doCall(router)
	require.Equal(t, http.StatusOK, first.Code)

	second := doCall(router)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Header().Get("Content-Type"), "application/problem+json")

	var problem map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &problem))
	assert.Equal(t, "Too Many Requests", problem["title"])
	assert.Equal(t, float64(http.StatusTooManyRequests), problem["status"])

	// the 429 body must not look like a value-level CallResult failure
	assert.NotContains(t, problem, "error")
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	router := newLimitedRouter(0.0001, 1)

	first := doCall(router)
	require.Equal(t, http.StatusOK, first.Code)

	// a different client keeps its own bucket
	req := httptest.NewRequest("POST", "/v1/call", nil)
	req.RemoteAddr = "198.51.100.9:40000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
