package models

// CheckoutResponse represents a checkout session response
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// BillingReturnResponse is the outcome of verifying a checkout on return
type BillingReturnResponse struct {
	Granted bool   `json:"granted"`
	Premium bool   `json:"premium"`
	Notice  string `json:"notice,omitempty"`
}

// BillingStatusResponse describes the premium state of the signed-in user
type BillingStatusResponse struct {
	Premium          bool    `json:"premium"`
	ActivatedAt      *string `json:"activated_at,omitempty"`
	UpgradeAvailable bool    `json:"upgrade_available"`
	Notice           string  `json:"notice,omitempty"`
}
