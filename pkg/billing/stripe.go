package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jordanlanch/brainbuddy/pkg/entitlement"
	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	// ErrNotConfigured is returned when the Stripe settings needed for upgrades are missing
	ErrNotConfigured = errors.New("billing: stripe is not configured")
	// ErrInvalidSignature is returned for webhooks that fail signature verification
	ErrInvalidSignature = errors.New("billing: webhook signature verification failed")
)

// GrantRecorder is notified about entitlements granted from webhooks
type GrantRecorder interface {
	RecordEntitlementGranted(via string)
}

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	PublicBaseURL string
}

// Configured reports whether checkout sessions can be created
func (c *StripeConfig) Configured() bool {
	return c != nil && c.SecretKey != "" && c.PriceID != "" && c.PublicBaseURL != ""
}

// SuccessURL is where Stripe sends the user after paying
func (c *StripeConfig) SuccessURL() string {
	return c.PublicBaseURL + "?status=success&session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where Stripe sends the user after abandoning checkout
func (c *StripeConfig) CancelURL() string {
	return c.PublicBaseURL + "?status=cancel"
}

// Service handles Stripe billing operations
type Service struct {
	config   *StripeConfig
	verifier *entitlement.Verifier
	recorder GrantRecorder
	logger   logger.Logger

	newSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getSession func(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewService creates a new billing service
func NewService(config *StripeConfig, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	if config.SecretKey != "" {
		stripe.Key = config.SecretKey
	}

	return &Service{
		config:     config,
		logger:     log.With("component", "billing"),
		newSession: checkoutsession.New,
		getSession: checkoutsession.Get,
	}
}

// SetVerifier sets the verifier used to grant entitlements from webhooks.
func (s *Service) SetVerifier(v *entitlement.Verifier) {
	s.verifier = v
}

// SetGrantRecorder sets the recorder notified of webhook grants.
func (s *Service) SetGrantRecorder(r GrantRecorder) {
	s.recorder = r
}

// Configured reports whether the upgrade path is available
func (s *Service) Configured() bool {
	return s.config.Configured()
}

// CreateCheckoutSession starts a subscription checkout for userID. The user
// id travels as the client reference so the payment can be linked back.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutResponse, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.config.SuccessURL()),
		CancelURL:         stripe.String(s.config.CancelURL()),
		ClientReferenceID: stripe.String(userID),
		Metadata:          map[string]string{"user_id": userID},
	}
	params.Context = ctx

	sess, err := s.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("checkout session created", "user_id", userID, "session", sess.ID)

	return &models.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// RetrieveSession fetches a checkout session from Stripe
func (s *Service) RetrieveSession(ctx context.Context, sessionRef string) (*entitlement.CheckoutSession, error) {
	if s.config.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.getSession(sessionRef, params)
	if err != nil {
		return nil, err
	}

	return toCheckoutSession(sess), nil
}

// HandleWebhook processes Stripe webhook events
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.config.WebhookSecret == "" {
		return ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.config.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	s.logger.Info("stripe webhook received", "type", event.Type, "event", event.ID)

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return s.handleCheckoutCompleted(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event", "type", event.Type)
	}

	return nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if s.verifier == nil {
		return fmt.Errorf("no verifier configured for checkout %s", sess.ID)
	}

	result := s.verifier.GrantIfPaid(ctx, toCheckoutSession(&sess))
	if !result.Granted {
		s.logger.Warn("checkout completed without grant", "session", sess.ID, "notice", result.Notice)
		return nil
	}

	if s.recorder != nil {
		s.recorder.RecordEntitlementGranted("webhook")
	}
	return nil
}

func toCheckoutSession(sess *stripe.CheckoutSession) *entitlement.CheckoutSession {
	out := &entitlement.CheckoutSession{
		ID:                sess.ID,
		PaymentStatus:     string(sess.PaymentStatus),
		Status:            string(sess.Status),
		Mode:              string(sess.Mode),
		ClientReferenceID: sess.ClientReferenceID,
		Metadata:          sess.Metadata,
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out
}
