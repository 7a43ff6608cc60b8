package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

func resetHealthCache() {
	healthMutex.Lock()
	lastStatus = nil
	healthMutex.Unlock()
}

func TestHealthCheckReportsDatabaseFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resetHealthCache()
	t.Cleanup(resetHealthCache)

	router := gin.New()
	router.GET("/health", HealthCheckMiddleware(&fakePinger{err: errors.New("connection refused")}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestHealthCheckOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resetHealthCache()
	t.Cleanup(resetHealthCache)

	router := gin.New()
	router.GET("/health", HealthCheckMiddleware(&fakePinger{}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, given, w.Body.String())
}

func TestWithCORSAnswersPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/assets", func(c *gin.Context) { c.Status(http.StatusOK) })

	handler := WithCORS(router, CORSConfig{AllowedOrigins: []string{"https://inventory.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/assets", nil)
	req.Header.Set("Origin", "https://inventory.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://inventory.example", w.Header().Get("Access-Control-Allow-Origin"))
}
