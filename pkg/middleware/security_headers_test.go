package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serveWithHeaders(config SecurityHeadersConfig, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	return serveAt("/test", config, next)
}

func serveAt(path string, config SecurityHeadersConfig, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), rec)

	err := SecurityHeaders(config)(next)(c)
	return rec, err
}

func TestSecurityHeaders_DefaultHeaders(t *testing.T) {
	rec, err := serveWithHeaders(SecurityHeadersConfig{}, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	assert.NoError(t, err)

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'none'")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "camera=()")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSecurityHeaders_CustomValues(t *testing.T) {
	rec, err := serveWithHeaders(SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "same-origin",
	}, func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	assert.NoError(t, err)

	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "same-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, DefaultSecurityHeadersConfig().PermissionsPolicy, rec.Header().Get("Permissions-Policy"))
}

func TestSecurityHeaders_HandlerError(t *testing.T) {
	boom := errors.New("handler failed")
	rec, err := serveWithHeaders(SecurityHeadersConfig{}, func(c echo.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestSecurityHeaders_SkipPathPrefix(t *testing.T) {
	config := DefaultSecurityHeadersConfig()
	config.Skipper = SkipPathPrefix("/swagger/")
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	rec, err := serveAt("/swagger/index.html", config, ok)
	assert.NoError(t, err)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

	rec, err = serveAt("/api/v1/usage", config, ok)
	assert.NoError(t, err)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}
