package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// DefaultAllowedOrigins are used when no origins are configured
var DefaultAllowedOrigins = []string{
	"http://localhost:3000", // web frontend dev server
	"http://localhost:8501", // local study UI
}

// CORSConfig returns the CORS configuration used by the application.
// An empty origins list selects DefaultAllowedOrigins.
func CORSConfig(origins []string) middleware.CORSConfig {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	return middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}
}
