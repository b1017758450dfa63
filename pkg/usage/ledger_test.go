package usage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/jordanlanch/brainbuddy/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T, failOpen bool) (*Ledger, string) {
	path := filepath.Join(t.TempDir(), "usage.json")
	ledger := NewLedger(storage.NewFileBackend(path), storage.Options{FailOpen: failOpen, Logger: logger.Nop()})
	return ledger, path
}

func TestLedger_IncrementCounts(t *testing.T) {
	ledger, _ := setupLedger(t, true)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		count, err := ledger.Increment(ctx, "user1", "2026-10-18")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	used, err := ledger.GetUsed(ctx, "user1", "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 4, used)
}

func TestLedger_NewDayStartsAtZero(t *testing.T) {
	ledger, _ := setupLedger(t, true)
	ctx := context.Background()

	_, err := ledger.Increment(ctx, "user1", "2026-10-18")
	require.NoError(t, err)

	used, err := ledger.GetUsed(ctx, "user1", "2026-10-19")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestLedger_UsersAreIndependent(t *testing.T) {
	ledger, _ := setupLedger(t, true)
	ctx := context.Background()

	_, err := ledger.Increment(ctx, "user1", "2026-10-18")
	require.NoError(t, err)

	used, err := ledger.GetUsed(ctx, "user2", "2026-10-18")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestLedger_GetUsedDoesNotWrite(t *testing.T) {
	ledger, path := setupLedger(t, true)

	_, err := ledger.GetUsed(context.Background(), "user1", "2026-10-18")
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLedger_PersistsNestedDocument(t *testing.T) {
	ledger, path := setupLedger(t, true)

	_, err := ledger.Increment(context.Background(), "user1", "2026-10-18")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user1":{"2026-10-18":1}}`, string(data))
}

func TestLedger_CorruptStorageFailOpen(t *testing.T) {
	ledger, path := setupLedger(t, true)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	used, err := ledger.GetUsed(context.Background(), "user1", "2026-10-18")
	require.NoError(t, err)
	assert.Zero(t, used)

	count, err := ledger.Increment(context.Background(), "user1", "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedger_CorruptStorageFailClosed(t *testing.T) {
	ledger, path := setupLedger(t, false)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := ledger.GetUsed(context.Background(), "user1", "2026-10-18")
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestLedger_NullDayMap(t *testing.T) {
	for _, failOpen := range []bool{true, false} {
		ledger, path := setupLedger(t, failOpen)
		require.NoError(t, os.WriteFile(path, []byte(`{"abc": null}`), 0o644))
		ctx := context.Background()

		used, err := ledger.GetUsed(ctx, "abc", "2026-10-18")
		require.NoError(t, err)
		assert.Equal(t, 0, used)

		var count int
		assert.NotPanics(t, func() {
			count, err = ledger.Increment(ctx, "abc", "2026-10-18")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		history, err := ledger.History(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"2026-10-18": 1}, history)
	}
}

func TestLedger_History(t *testing.T) {
	ledger, _ := setupLedger(t, true)
	ctx := context.Background()

	_, _ = ledger.Increment(ctx, "user1", "2026-10-17")
	_, _ = ledger.Increment(ctx, "user1", "2026-10-18")
	_, _ = ledger.Increment(ctx, "user1", "2026-10-18")

	history, err := ledger.History(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2026-10-17": 1, "2026-10-18": 2}, history)
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 10, 18, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "2026-10-18", DayKey(ts))
	assert.Equal(t, "2026-10-19", DayKey(ts.Add(2*time.Minute)))
}
