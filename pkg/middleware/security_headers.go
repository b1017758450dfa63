package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// apiContentSecurityPolicy forbids every fetch. Responses are JSON only.
const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// SecurityHeadersConfig configures SecurityHeaders. Blank policies take the
// values from DefaultSecurityHeadersConfig.
type SecurityHeadersConfig struct {
	// Skipper leaves matching requests untouched, e.g. the Swagger UI, which
	// needs scripts and styles the API policy forbids.
	Skipper middleware.Skipper

	ContentSecurityPolicy string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// DefaultSecurityHeadersConfig locks responses down for a JSON API
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		Skipper:               middleware.DefaultSkipper,
		ContentSecurityPolicy: apiContentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=(), payment=()",
	}
}

// SkipPathPrefix returns a Skipper matching request paths under prefix
func SkipPathPrefix(prefix string) middleware.Skipper {
	return func(c echo.Context) bool {
		return strings.HasPrefix(c.Request().URL.Path, prefix)
	}
}

// SecurityHeaders sets the CSP, referrer, permissions and nosniff headers
// before the handler runs, so error responses carry them too.
func SecurityHeaders(config SecurityHeadersConfig) echo.MiddlewareFunc {
	defaults := DefaultSecurityHeadersConfig()
	if config.Skipper == nil {
		config.Skipper = defaults.Skipper
	}
	if config.ContentSecurityPolicy == "" {
		config.ContentSecurityPolicy = defaults.ContentSecurityPolicy
	}
	if config.ReferrerPolicy == "" {
		config.ReferrerPolicy = defaults.ReferrerPolicy
	}
	if config.PermissionsPolicy == "" {
		config.PermissionsPolicy = defaults.PermissionsPolicy
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			h.Set("Referrer-Policy", config.ReferrerPolicy)
			h.Set("Permissions-Policy", config.PermissionsPolicy)
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			return next(c)
		}
	}
}
