// Package entitlement records which users hold paid access. A record, once
// written, is never removed: there is no expiry or cancellation path.
package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/storage"
)

// Record describes one premium activation
type Record struct {
	// ActivatedAt is unix seconds
	ActivatedAt float64 `json:"ts"`
	SessionRef  string  `json:"session"`
}

// Time returns the activation time
func (r Record) Time() time.Time {
	sec := int64(r.ActivatedAt)
	nsec := int64((r.ActivatedAt - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Document is the persisted shape: user id -> record
type Document map[string]Record

func newDocument() Document {
	return Document{}
}

// Store keeps entitlement records
type Store struct {
	store *storage.JSONStore[Document]
	now   func() time.Time
}

// NewStore creates a store on top of backend
func NewStore(backend storage.Backend, opts storage.Options) *Store {
	return &Store{
		store: storage.NewJSONStore(backend, newDocument, opts),
		now:   time.Now,
	}
}

// IsEntitled reports whether userID holds paid access
func (s *Store) IsEntitled(ctx context.Context, userID string) (bool, error) {
	rec, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Get returns the record for userID, or nil when there is none
func (s *Store) Get(ctx context.Context, userID string) (*Record, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlements: %w", err)
	}

	rec, ok := doc[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Grant marks userID as entitled. Granting again overwrites the timestamp and
// session reference.
func (s *Store) Grant(ctx context.Context, userID, sessionRef string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	now := s.now()
	_, err := s.store.Update(ctx, func(doc Document) (Document, error) {
		doc[userID] = Record{
			ActivatedAt: float64(now.UnixNano()) / 1e9,
			SessionRef:  sessionRef,
		}
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}

	return nil
}
