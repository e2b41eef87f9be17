package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/legalnest/backend/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func serve(e *echo.Echo, method, path, ip string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":51234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	l := ratelimit.New(ratelimit.NewMemoryStore(), 2, time.Hour)
	e := echo.New()
	e.POST("/api/contact", ok, RateLimitMiddleware(l, zap.NewNop()))

	rec := serve(e, http.MethodPost, "/api/contact", "10.0.0.1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("RateLimit-Reset"))

	serve(e, http.MethodPost, "/api/contact", "10.0.0.1", nil)
	rec = serve(e, http.MethodPost, "/api/contact", "10.0.0.1", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many requests from this IP, please try again later."}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = serve(e, http.MethodPost, "/api/contact", "10.0.0.2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminTokenMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/locked", ok, AdminTokenMiddleware("s3cret"))
	e.GET("/open", ok, AdminTokenMiddleware(""))

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/locked", "10.0.0.1", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/locked", "10.0.0.1", map[string]string{AdminTokenHeader: "nope"}).Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/locked", "10.0.0.1", map[string]string{AdminTokenHeader: "s3cret"}).Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/open", "10.0.0.1", nil).Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/health", ok)

	serve(e, http.MethodGet, "/health", "10.0.0.1", nil)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/health", fields["uri"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}
