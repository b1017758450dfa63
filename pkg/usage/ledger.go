// Package usage counts quota-consuming actions per user and calendar day.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/storage"
)

// DayLayout is the format of a day-key
const DayLayout = "2006-01-02"

// Document is the persisted shape: user id -> day-key -> count
type Document map[string]map[string]int

func newDocument() Document {
	return Document{}
}

// DayKey returns the day-key for t in the server's local time zone
func DayKey(t time.Time) string {
	return t.Local().Format(DayLayout)
}

// Ledger reads and increments daily usage counts
type Ledger struct {
	store *storage.JSONStore[Document]
}

// NewLedger creates a ledger on top of backend
func NewLedger(backend storage.Backend, opts storage.Options) *Ledger {
	return &Ledger{store: storage.NewJSONStore(backend, newDocument, opts)}
}

// GetUsed returns how many actions userID consumed on day. Absent entries are 0.
func (l *Ledger) GetUsed(ctx context.Context, userID, day string) (int, error) {
	doc, err := l.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load usage: %w", err)
	}

	return doc[userID][day], nil
}

// Increment adds one to the count for userID on day and returns the new count.
// The updated ledger is persisted before Increment returns.
func (l *Ledger) Increment(ctx context.Context, userID, day string) (int, error) {
	var count int

	_, err := l.store.Update(ctx, func(doc Document) (Document, error) {
		// a stored null day map decodes to nil
		if doc[userID] == nil {
			doc[userID] = make(map[string]int)
		}
		doc[userID][day]++
		count = doc[userID][day]
		return doc, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}

	return count, nil
}

// History returns every recorded day for userID
func (l *Ledger) History(ctx context.Context, userID string) (map[string]int, error) {
	doc, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	history := make(map[string]int, len(doc[userID]))
	for day, count := range doc[userID] {
		history[day] = count
	}
	return history, nil
}
