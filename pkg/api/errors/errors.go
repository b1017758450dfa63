package errors

import (
	"log"
	"net/http"

	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a generic validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// BadRequest returns a 400 with a user-facing message
func BadRequest(c echo.Context, code, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   code,
		Message: message, // shown to the user as is
	})
}

// StorageError returns a generic storage error without exposing internal details
func StorageError(c echo.Context, err error) error {
	log.Printf("[STORAGE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "storage_error",
		Message: "Your usage data could not be read. Please try again later.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// UnauthorizedError returns a generic unauthorized error
func UnauthorizedError(c echo.Context, reason string) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   reason,
		Message: "Sign in with a nickname to continue.",
	})
}

// QuotaExceeded returns 402 when the free daily answers are used up
func QuotaExceeded(c echo.Context) error {
	return c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
		Error:   "quota_exceeded",
		Message: "You've hit today's free limit. Upgrade to Premium for unlimited answers, or come back tomorrow.",
	})
}

// UpgradeUnavailable returns 503 when payments are not configured
func UpgradeUnavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error:   "upgrade_unavailable",
		Message: "Upgrade unavailable: missing Stripe config. Ask the owner to set STRIPE_SECRET_KEY, STRIPE_PRICE_ID and PUBLIC_BASE_URL on the server.",
	})
}

// PaymentProviderError returns 502 when the payment provider failed
func PaymentProviderError(c echo.Context, err error) error {
	log.Printf("[PAYMENT ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:   "payment_provider_error",
		Message: "The payment provider could not be reached. Please try again later.",
	})
}
