package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/api/errors"
	"github.com/jordanlanch/brainbuddy/pkg/api/middleware"
	"github.com/jordanlanch/brainbuddy/pkg/billing"
	"github.com/jordanlanch/brainbuddy/pkg/entitlement"
	"github.com/jordanlanch/brainbuddy/pkg/metrics"
	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/labstack/echo/v4"
)

// Payments is the payment provider surface used by the handler
type Payments interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// PaymentVerifier confirms a returning checkout
type PaymentVerifier interface {
	VerifyAndGrantFor(ctx context.Context, sessionRef, userID string) entitlement.Result
}

// EntitlementReader looks up premium records
type EntitlementReader interface {
	Get(ctx context.Context, userID string) (*entitlement.Record, error)
}

// BillingHandler handles billing endpoints
type BillingHandler struct {
	payments     Payments
	verifier     PaymentVerifier
	entitlements EntitlementReader
	metrics      *metrics.Metrics
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(payments Payments, verifier PaymentVerifier, entitlements EntitlementReader) *BillingHandler {
	return &BillingHandler{
		payments:     payments,
		verifier:     verifier,
		entitlements: entitlements,
	}
}

// SetMetrics sets the metrics recorder.
func (h *BillingHandler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// GetStatus reports whether the signed-in user is premium
// @Summary Get premium status
// @Description Whether the user is premium, since when, and whether an upgrade can be started
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.BillingStatusResponse "Premium status"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Storage error"
// @Router /api/v1/billing/status [get]
func (h *BillingHandler) GetStatus(c echo.Context) error {
	userID := middleware.UserID(c)

	rec, err := h.entitlements.Get(c.Request().Context(), userID)
	if err != nil {
		return errors.StorageError(c, err)
	}

	resp := models.BillingStatusResponse{
		Premium:          rec != nil,
		UpgradeAvailable: rec == nil && h.payments.Configured(),
	}
	switch {
	case rec != nil:
		activated := rec.Time().UTC().Format(time.RFC3339)
		resp.ActivatedAt = &activated
		resp.Notice = "You're on Premium. Unlimited answers unlocked."
	case !resp.UpgradeAvailable:
		resp.Notice = "Upgrade unavailable: missing Stripe config."
	}

	return c.JSON(http.StatusOK, resp)
}

// CreateCheckout starts a Stripe checkout for the signed-in user
// @Summary Create Stripe checkout session
// @Description Start a subscription checkout for the premium plan
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CheckoutResponse "Checkout session created with URL"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 409 {object} models.ErrorResponse "Already premium"
// @Failure 502 {object} models.ErrorResponse "Payment provider error"
// @Failure 503 {object} models.ErrorResponse "Upgrade unavailable"
// @Router /api/v1/billing/checkout [post]
func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()

	if !h.payments.Configured() {
		return errors.UpgradeUnavailable(c)
	}

	rec, err := h.entitlements.Get(ctx, userID)
	if err != nil {
		return errors.StorageError(c, err)
	}
	if rec != nil {
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "already_premium",
			Message: "You're on Premium. Unlimited answers unlocked.",
		})
	}

	session, err := h.payments.CreateCheckoutSession(ctx, userID)
	if stderrors.Is(err, billing.ErrNotConfigured) {
		return errors.UpgradeUnavailable(c)
	}
	if err != nil {
		return errors.PaymentProviderError(c, err)
	}

	h.metrics.RecordCheckoutCreated()

	return c.JSON(http.StatusOK, session)
}

// Return verifies the checkout the user came back from. Problems are reported
// as a notice, never as an error status.
// @Summary Verify a returning checkout
// @Description Confirm the checkout with Stripe and unlock premium for the signed-in user
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param session_id query string true "Stripe checkout session id"
// @Success 200 {object} models.BillingReturnResponse "Verification outcome"
// @Failure 400 {object} models.ErrorResponse "Missing session_id"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /api/v1/billing/return [get]
func (h *BillingHandler) Return(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()

	sessionRef := c.QueryParam("session_id")
	if sessionRef == "" {
		return errors.BadRequest(c, "missing_session_id", "No checkout session to verify.")
	}

	result := h.verifier.VerifyAndGrantFor(ctx, sessionRef, userID)
	if result.Granted {
		h.metrics.RecordEntitlementGranted("return")
	}

	premium := result.Granted
	if !premium {
		rec, err := h.entitlements.Get(ctx, userID)
		if err != nil {
			return errors.StorageError(c, err)
		}
		premium = rec != nil
	}

	resp := models.BillingReturnResponse{Granted: result.Granted, Premium: premium, Notice: result.Notice}
	if result.Granted {
		resp.Notice = "Premium unlocked!"
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleWebhook handles Stripe webhook events
// @Summary Handle Stripe webhook
// @Description Process signed Stripe events. Completed checkouts unlock premium.
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe webhook signature for verification"
// @Param payload body object true "Stripe webhook event payload"
// @Success 200 {object} models.SuccessResponse "Webhook processed successfully"
// @Failure 400 {object} models.ErrorResponse "Missing or invalid signature"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Failure 503 {object} models.ErrorResponse "Webhook secret not configured"
// @Router /webhook/stripe [post]
func (h *BillingHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Failed to read request body",
		})
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "missing_signature",
		})
	}

	err = h.payments.HandleWebhook(c.Request().Context(), body, signature)
	switch {
	case stderrors.Is(err, billing.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: "webhook_not_configured",
		})
	case stderrors.Is(err, billing.ErrInvalidSignature):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "invalid_signature",
		})
	case err != nil:
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Webhook processed successfully",
	})
}
