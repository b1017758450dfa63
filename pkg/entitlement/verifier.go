package entitlement

import (
	"context"
	"fmt"

	"github.com/jordanlanch/brainbuddy/pkg/logger"
)

// CheckoutSession is the part of a payment provider's checkout session that
// decides whether it represents a completed payment.
type CheckoutSession struct {
	ID                string
	PaymentStatus     string
	Status            string
	Mode              string
	SubscriptionID    string
	ClientReferenceID string
	Metadata          map[string]string
}

// Paid reports whether the session satisfies any of the acceptance predicates:
// a paid invoice, a completed checkout, or a subscription attached to a
// subscription-mode session.
func (s CheckoutSession) Paid() bool {
	switch {
	case s.PaymentStatus == "paid":
		return true
	case s.Status == "complete":
		return true
	case s.Mode == "subscription" && s.SubscriptionID != "":
		return true
	default:
		return false
	}
}

// UserID returns the user the checkout was created for
func (s CheckoutSession) UserID() string {
	if s.ClientReferenceID != "" {
		return s.ClientReferenceID
	}
	return s.Metadata["user_id"]
}

// SessionRetriever fetches a checkout session from the payment provider
type SessionRetriever interface {
	RetrieveSession(ctx context.Context, sessionRef string) (*CheckoutSession, error)
}

// Granter records an entitlement
type Granter interface {
	Grant(ctx context.Context, userID, sessionRef string) error
}

// Result is the outcome of a verification. Notice is informational text for
// the user and is set whenever nothing was granted.
type Result struct {
	Granted bool   `json:"granted"`
	UserID  string `json:"user_id,omitempty"`
	Notice  string `json:"notice,omitempty"`
}

// Verifier confirms payments with the provider and grants entitlements
type Verifier struct {
	granter  Granter
	sessions SessionRetriever
	logger   logger.Logger
}

// NewVerifier creates a verifier. sessions may be nil when payments are not configured.
func NewVerifier(granter Granter, sessions SessionRetriever, log logger.Logger) *Verifier {
	if log == nil {
		log = logger.Default()
	}
	return &Verifier{granter: granter, sessions: sessions, logger: log}
}

// VerifyAndGrant checks sessionRef with the payment provider and grants the
// entitlement to the user the checkout was created for. It never returns an
// error: provider and storage failures are reported through Result.Notice.
func (v *Verifier) VerifyAndGrant(ctx context.Context, sessionRef string) Result {
	return v.VerifyAndGrantFor(ctx, sessionRef, "")
}

// VerifyAndGrantFor is VerifyAndGrant for a signed-in user. A checkout that
// names a different user grants nothing; one that names no user is granted
// to userID.
func (v *Verifier) VerifyAndGrantFor(ctx context.Context, sessionRef, userID string) Result {
	if sessionRef == "" {
		return Result{Notice: "No checkout session to verify."}
	}
	if v.sessions == nil {
		return Result{Notice: "Payment verification is not configured."}
	}

	sess, err := v.sessions.RetrieveSession(ctx, sessionRef)
	if err != nil {
		v.logger.Warn("checkout session lookup failed", "session", sessionRef, "error", err)
		return Result{Notice: fmt.Sprintf("Payment check error: %v", err)}
	}

	return v.grant(ctx, sess, userID)
}

// GrantIfPaid grants the entitlement described by an already retrieved session
func (v *Verifier) GrantIfPaid(ctx context.Context, sess *CheckoutSession) Result {
	return v.grant(ctx, sess, "")
}

func (v *Verifier) grant(ctx context.Context, sess *CheckoutSession, expected string) Result {
	if sess == nil || !sess.Paid() {
		return Result{Notice: "Payment has not been completed yet."}
	}

	userID := sess.UserID()
	switch {
	case expected != "" && userID == "":
		userID = expected
	case expected != "" && userID != expected:
		v.logger.Warn("checkout session belongs to another user", "session", sess.ID)
		return Result{Notice: "This checkout belongs to a different account."}
	case userID == "":
		v.logger.Warn("paid checkout session carries no user id", "session", sess.ID)
		return Result{Notice: "Payment could not be linked to an account."}
	}

	if err := v.granter.Grant(ctx, userID, sess.ID); err != nil {
		v.logger.Error("failed to grant entitlement", "user_id", userID, "session", sess.ID, "error", err)
		return Result{UserID: userID, Notice: fmt.Sprintf("Payment check error: %v", err)}
	}

	v.logger.Info("premium unlocked", "user_id", userID, "session", sess.ID)
	return Result{Granted: true, UserID: userID}
}
