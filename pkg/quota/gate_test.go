package quota

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jordanlanch/brainbuddy/pkg/entitlement"
	"github.com/jordanlanch/brainbuddy/pkg/identity"
	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/jordanlanch/brainbuddy/pkg/storage"
	"github.com/jordanlanch/brainbuddy/pkg/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2026-10-18"

func setupGate(t *testing.T, limit int) (*Gate, *usage.Ledger, *entitlement.Store) {
	dir := t.TempDir()
	opts := storage.Options{FailOpen: true, Logger: logger.Nop()}

	ledger := usage.NewLedger(storage.NewFileBackend(filepath.Join(dir, "usage.json")), opts)
	store := entitlement.NewStore(storage.NewFileBackend(filepath.Join(dir, "pro.json")), opts)

	return NewGate(ledger, store, limit), ledger, store
}

func TestGate_RemainingIsLimitMinusUsed(t *testing.T) {
	gate, ledger, _ := setupGate(t, 5)
	ctx := context.Background()

	for used := 0; used < 5; used++ {
		res, err := gate.Check(ctx, "user1", day)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, used, res.Used)
		assert.Equal(t, 5-used, res.Remaining.Value())

		_, err = ledger.Increment(ctx, "user1", day)
		require.NoError(t, err)
	}
}

func TestGate_DeniedAtLimitDoesNotConsume(t *testing.T) {
	gate, ledger, _ := setupGate(t, 2)
	ctx := context.Background()

	_, _ = ledger.Increment(ctx, "user1", day)
	_, _ = ledger.Increment(ctx, "user1", day)

	res, err := gate.Check(ctx, "user1", day)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining.Value())

	used, err := ledger.GetUsed(ctx, "user1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, used)
}

func TestGate_PremiumAlwaysAllowed(t *testing.T) {
	gate, ledger, store := setupGate(t, 1)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, "user1", "sess_1"))
	for i := 0; i < 50; i++ {
		_, _ = ledger.Increment(ctx, "user1", day)
	}

	res, err := gate.Check(ctx, "user1", day)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Premium)
	assert.True(t, res.Remaining.IsUnlimited())
	assert.True(t, res.Limit.IsUnlimited())
	assert.Equal(t, 50, res.Used)
}

func TestGate_ConsumeIncrementsOnce(t *testing.T) {
	gate, ledger, _ := setupGate(t, 5)
	ctx := context.Background()

	res, err := gate.Consume(ctx, "user1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Used)
	assert.Equal(t, 4, res.Remaining.Value())

	used, err := ledger.GetUsed(ctx, "user1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestGate_StatusMatchesCheckWithoutConsuming(t *testing.T) {
	gate, ledger, _ := setupGate(t, 3)
	ctx := context.Background()
	day := "2026-10-18"

	_, err := gate.Consume(ctx, "user1", day)
	require.NoError(t, err)

	status, err := gate.Status(ctx, "user1", day)
	require.NoError(t, err)
	check, err := gate.Check(ctx, "user1", day)
	require.NoError(t, err)
	assert.Equal(t, check, status)
	assert.Equal(t, 1, status.Used)
	assert.Equal(t, 2, status.Remaining.Value())

	used, err := ledger.GetUsed(ctx, "user1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

// Check and Consume are separate cycles: two requests that both pass Check at
// one remaining question are both consumed.
func TestGate_InterleavedRequestsCanOvershootByOne(t *testing.T) {
	gate, _, _ := setupGate(t, 2)
	ctx := context.Background()
	day := "2026-10-18"

	_, err := gate.Consume(ctx, "user1", day)
	require.NoError(t, err)

	first, err := gate.Check(ctx, "user1", day)
	require.NoError(t, err)
	second, err := gate.Check(ctx, "user1", day)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed)

	_, err = gate.Consume(ctx, "user1", day)
	require.NoError(t, err)
	after, err := gate.Consume(ctx, "user1", day)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Used)
	assert.False(t, after.Allowed)
	assert.Equal(t, 0, after.Remaining.Value())
}

func TestGate_DefaultLimit(t *testing.T) {
	gate, _, _ := setupGate(t, 0)
	assert.Equal(t, DefaultDailyLimit, gate.DailyLimit())
}

// A user signs in, spends the whole free quota, is denied, upgrades, and is
// allowed again without limit.
func TestGate_FreeQuotaThenUpgradeScenario(t *testing.T) {
	gate, _, store := setupGate(t, DefaultDailyLimit)
	ctx := context.Background()

	userID, err := identity.DeriveID("mattj")
	require.NoError(t, err)
	again, err := identity.DeriveID("mattj")
	require.NoError(t, err)
	require.Equal(t, userID, again)

	for i := 0; i < DefaultDailyLimit; i++ {
		res, err := gate.Check(ctx, userID, day)
		require.NoError(t, err)
		require.True(t, res.Allowed, "question %d should be allowed", i+1)

		_, err = gate.Consume(ctx, userID, day)
		require.NoError(t, err)
	}

	res, err := gate.Check(ctx, userID, day)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	require.NoError(t, store.Grant(ctx, userID, "sess_123"))

	res, err = gate.Check(ctx, userID, day)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Remaining.IsUnlimited())
}

type brokenEntitlements struct{}

func (brokenEntitlements) IsEntitled(ctx context.Context, userID string) (bool, error) {
	return false, errors.New("unreadable")
}

func TestGate_PropagatesStoreErrors(t *testing.T) {
	_, ledger, _ := setupGate(t, 5)
	gate := NewGate(ledger, brokenEntitlements{}, 5)

	_, err := gate.Check(context.Background(), "user1", day)
	assert.Error(t, err)
}

func TestLimit(t *testing.T) {
	assert.True(t, Unlimited().Minus(1_000_000).Available())
	assert.Equal(t, "unlimited", Unlimited().String())

	assert.Equal(t, 0, Finite(3).Minus(7).Value())
	assert.False(t, Finite(3).Minus(3).Available())
	assert.Equal(t, 0, Finite(-1).Value())

	data, err := json.Marshal(map[string]Limit{"a": Finite(2), "b": Unlimited()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":null}`, string(data))
}
