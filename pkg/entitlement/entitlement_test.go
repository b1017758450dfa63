package entitlement

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/jordanlanch/brainbuddy/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "pro.json")
	store := NewStore(storage.NewFileBackend(path), storage.Options{FailOpen: true, Logger: logger.Nop()})
	return store, path
}

func TestStore_GrantAndCheck(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	entitled, err := store.IsEntitled(ctx, "user1")
	require.NoError(t, err)
	assert.False(t, entitled)

	require.NoError(t, store.Grant(ctx, "user1", "sess_123"))

	entitled, err = store.IsEntitled(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, entitled)

	other, err := store.IsEntitled(ctx, "user2")
	require.NoError(t, err)
	assert.False(t, other)
}

func TestStore_GrantIsIdempotent(t *testing.T) {
	store, path := setupStore(t)
	ctx := context.Background()

	store.now = func() time.Time { return time.Unix(1000, 0) }
	require.NoError(t, store.Grant(ctx, "user1", "sess_1"))

	store.now = func() time.Time { return time.Unix(2000, 0) }
	require.NoError(t, store.Grant(ctx, "user1", "sess_2"))

	rec, err := store.Get(ctx, "user1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "sess_2", rec.SessionRef)
	assert.Equal(t, int64(2000), rec.Time().Unix())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user1":{"ts":2000,"session":"sess_2"}}`, string(data))
}

func TestStore_GrantRequiresUser(t *testing.T) {
	store, _ := setupStore(t)
	assert.Error(t, store.Grant(context.Background(), "", "sess_1"))
}

func TestStore_CorruptReadsAsNotEntitled(t *testing.T) {
	store, path := setupStore(t)
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))

	entitled, err := store.IsEntitled(context.Background(), "user1")
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestCheckoutSession_Paid(t *testing.T) {
	tests := []struct {
		name string
		sess CheckoutSession
		want bool
	}{
		{"paid invoice", CheckoutSession{PaymentStatus: "paid"}, true},
		{"completed checkout", CheckoutSession{Status: "complete"}, true},
		{"subscription attached", CheckoutSession{Mode: "subscription", SubscriptionID: "sub_1"}, true},
		{"subscription mode without subscription", CheckoutSession{Mode: "subscription", Status: "open", PaymentStatus: "unpaid"}, false},
		{"open unpaid payment", CheckoutSession{Mode: "payment", Status: "open", PaymentStatus: "unpaid"}, false},
		{"empty", CheckoutSession{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sess.Paid())
		})
	}
}

type fakeRetriever struct {
	sess *CheckoutSession
	err  error
	refs []string
}

func (f *fakeRetriever) RetrieveSession(ctx context.Context, ref string) (*CheckoutSession, error) {
	f.refs = append(f.refs, ref)
	return f.sess, f.err
}

func TestVerifier_GrantsPaidSession(t *testing.T) {
	store, _ := setupStore(t)
	retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_1", Status: "complete", ClientReferenceID: "user1"}}
	verifier := NewVerifier(store, retriever, logger.Nop())

	res := verifier.VerifyAndGrant(context.Background(), "cs_1")

	assert.True(t, res.Granted)
	assert.Equal(t, "user1", res.UserID)
	assert.Empty(t, res.Notice)
	assert.Equal(t, []string{"cs_1"}, retriever.refs)

	rec, err := store.Get(context.Background(), "user1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "cs_1", rec.SessionRef)
}

func TestVerifier_UsesMetadataUser(t *testing.T) {
	store, _ := setupStore(t)
	retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_2", PaymentStatus: "paid", Metadata: map[string]string{"user_id": "user9"}}}

	res := NewVerifier(store, retriever, logger.Nop()).VerifyAndGrant(context.Background(), "cs_2")

	assert.True(t, res.Granted)
	assert.Equal(t, "user9", res.UserID)
}

func TestVerifier_UnpaidSessionGrantsNothing(t *testing.T) {
	store, _ := setupStore(t)
	retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_3", Status: "open", ClientReferenceID: "user1"}}

	res := NewVerifier(store, retriever, logger.Nop()).VerifyAndGrant(context.Background(), "cs_3")

	assert.False(t, res.Granted)
	assert.NotEmpty(t, res.Notice)

	entitled, err := store.IsEntitled(context.Background(), "user1")
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestVerifier_ProviderErrorBecomesNotice(t *testing.T) {
	store, _ := setupStore(t)
	retriever := &fakeRetriever{err: errors.New("stripe unreachable")}

	res := NewVerifier(store, retriever, logger.Nop()).VerifyAndGrant(context.Background(), "cs_4")

	assert.False(t, res.Granted)
	assert.Contains(t, res.Notice, "stripe unreachable")
}

func TestVerifier_MissingUserOrConfig(t *testing.T) {
	store, _ := setupStore(t)

	res := NewVerifier(store, &fakeRetriever{sess: &CheckoutSession{ID: "cs_5", Status: "complete"}}, logger.Nop()).
		VerifyAndGrant(context.Background(), "cs_5")
	assert.False(t, res.Granted)
	assert.NotEmpty(t, res.Notice)

	res = NewVerifier(store, nil, logger.Nop()).VerifyAndGrant(context.Background(), "cs_5")
	assert.False(t, res.Granted)
	assert.Contains(t, res.Notice, "not configured")

	res = NewVerifier(store, &fakeRetriever{}, logger.Nop()).VerifyAndGrant(context.Background(), "")
	assert.False(t, res.Granted)
}

type failingGranter struct{}

func (failingGranter) Grant(ctx context.Context, userID, ref string) error {
	return errors.New("disk full")
}

func TestVerifier_GrantFailureBecomesNotice(t *testing.T) {
	retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_6", Status: "complete", ClientReferenceID: "user1"}}

	res := NewVerifier(failingGranter{}, retriever, logger.Nop()).VerifyAndGrant(context.Background(), "cs_6")

	assert.False(t, res.Granted)
	assert.Contains(t, res.Notice, "disk full")
}

func TestVerifier_VerifyAndGrantFor(t *testing.T) {
	ctx := context.Background()

	t.Run("matching user", func(t *testing.T) {
		store, _ := setupStore(t)
		retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_7", PaymentStatus: "paid", ClientReferenceID: "user1"}}

		res := NewVerifier(store, retriever, logger.Nop()).VerifyAndGrantFor(ctx, "cs_7", "user1")
		assert.True(t, res.Granted)
	})

	t.Run("other user", func(t *testing.T) {
		store, _ := setupStore(t)
		retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_8", PaymentStatus: "paid", ClientReferenceID: "user2"}}

		res := NewVerifier(store, retriever, logger.Nop()).VerifyAndGrantFor(ctx, "cs_8", "user1")
		assert.False(t, res.Granted)
		assert.Contains(t, res.Notice, "different account")

		for _, id := range []string{"user1", "user2"} {
			ok, err := store.IsEntitled(ctx, id)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("unlabelled checkout goes to the signed-in user", func(t *testing.T) {
		store, _ := setupStore(t)
		retriever := &fakeRetriever{sess: &CheckoutSession{ID: "cs_9", Mode: "subscription", SubscriptionID: "sub_1"}}

		res := NewVerifier(store, retriever, logger.Nop()).VerifyAndGrantFor(ctx, "cs_9", "user1")
		assert.True(t, res.Granted)
		assert.Equal(t, "user1", res.UserID)
	})
}
