package middleware

import (
	"strings"

	"github.com/jordanlanch/brainbuddy/pkg/api/errors"
	"github.com/jordanlanch/brainbuddy/pkg/auth"
	"github.com/labstack/echo/v4"
)

// ContextUserID is the echo context key holding the signed-in user id
const ContextUserID = "user_id"

// SessionMiddleware requires a bearer session token and stores its user id
func SessionMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return errors.UnauthorizedError(c, "missing_token")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return errors.UnauthorizedError(c, "invalid_token_format")
			}

			claims, err := auth.ValidateSessionToken(parts[1], secret)
			if err != nil {
				return errors.UnauthorizedError(c, "invalid_token")
			}

			c.Set(ContextUserID, claims.UserID)

			return next(c)
		}
	}
}

// UserID returns the user id set by SessionMiddleware
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}
