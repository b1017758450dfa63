// Package quota decides whether a user may run another answer request today.
package quota

import (
	"context"
	"fmt"
)

// DefaultDailyLimit is the number of free answers per day
const DefaultDailyLimit = 5

// Ledger is the usage bookkeeping the gate needs
type Ledger interface {
	GetUsed(ctx context.Context, userID, day string) (int, error)
	Increment(ctx context.Context, userID, day string) (int, error)
}

// Entitlements reports paid access
type Entitlements interface {
	IsEntitled(ctx context.Context, userID string) (bool, error)
}

// Result describes the quota state for one user and day
type Result struct {
	Allowed   bool  `json:"allowed"`
	Premium   bool  `json:"premium"`
	Used      int   `json:"used"`
	Limit     Limit `json:"limit"`
	Remaining Limit `json:"remaining"`
}

// Gate combines daily usage with entitlements
type Gate struct {
	ledger       Ledger
	entitlements Entitlements
	dailyLimit   int
}

// NewGate creates a gate. A non-positive dailyLimit falls back to DefaultDailyLimit.
func NewGate(ledger Ledger, entitlements Entitlements, dailyLimit int) *Gate {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &Gate{ledger: ledger, entitlements: entitlements, dailyLimit: dailyLimit}
}

// DailyLimit returns the configured free limit
func (g *Gate) DailyLimit() int {
	return g.dailyLimit
}

// Check computes the effective quota without consuming anything. The request
// is denied when nothing remains.
func (g *Gate) Check(ctx context.Context, userID, day string) (Result, error) {
	premium, err := g.entitlements.IsEntitled(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check entitlement: %w", err)
	}

	used, err := g.ledger.GetUsed(ctx, userID, day)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read usage: %w", err)
	}

	return g.result(premium, used), nil
}

// Status is Check under the name the usage display uses
func (g *Gate) Status(ctx context.Context, userID, day string) (Result, error) {
	return g.Check(ctx, userID, day)
}

// Consume records one delivered answer. Call it exactly once per delivery,
// after the answer exists, whichever provider produced it.
func (g *Gate) Consume(ctx context.Context, userID, day string) (Result, error) {
	used, err := g.ledger.Increment(ctx, userID, day)
	if err != nil {
		return Result{}, fmt.Errorf("failed to record usage: %w", err)
	}

	premium, err := g.entitlements.IsEntitled(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check entitlement: %w", err)
	}

	return g.result(premium, used), nil
}

func (g *Gate) result(premium bool, used int) Result {
	limit := Finite(g.dailyLimit)
	if premium {
		limit = Unlimited()
	}
	remaining := limit.Minus(used)

	return Result{
		Allowed:   remaining.Available(),
		Premium:   premium,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
	}
}
