// Package storage persists small JSON documents that are always read and
// written whole. Each mutation is a full read-modify-write cycle; there is no
// cross-process locking, so concurrent writers race and the last write wins.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jordanlanch/brainbuddy/pkg/logger"
)

var (
	// ErrNotFound is returned by a Backend when the document does not exist yet
	ErrNotFound = errors.New("storage: document not found")
	// ErrCorrupt wraps documents that exist but cannot be decoded
	ErrCorrupt = errors.New("storage: document corrupt")
)

// Backend reads and writes one whole document
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	// Write must not return before the data is durable
	Write(ctx context.Context, data []byte) error
	String() string
}

// Options controls how a JSONStore treats unreadable documents
type Options struct {
	// FailOpen treats unreadable or corrupt documents as empty instead of
	// returning an error. Usage history is silently reset when this triggers.
	FailOpen bool
	Logger   logger.Logger
}

// JSONStore loads and saves a document of type T through a Backend
type JSONStore[T any] struct {
	backend  Backend
	empty    func() T
	failOpen bool
	logger   logger.Logger

	// serializes read-modify-write cycles inside this process
	mu sync.Mutex
}

// NewJSONStore creates a store. empty must return a fresh, writable zero document.
func NewJSONStore[T any](backend Backend, empty func() T, opts Options) *JSONStore[T] {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &JSONStore[T]{
		backend:  backend,
		empty:    empty,
		failOpen: opts.FailOpen,
		logger:   log.With("store", backend.String()),
	}
}

// FailOpen reports whether unreadable documents are treated as empty
func (s *JSONStore[T]) FailOpen() bool {
	return s.failOpen
}

// Load reads the current document
func (s *JSONStore[T]) Load(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Save replaces the stored document with doc
func (s *JSONStore[T]) Save(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, doc)
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (s *JSONStore[T]) Update(ctx context.Context, fn func(doc T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T

	doc, err := s.load(ctx)
	if err != nil {
		return zero, err
	}

	doc, err = fn(doc)
	if err != nil {
		return zero, err
	}

	if err := s.save(ctx, doc); err != nil {
		return zero, err
	}

	return doc, nil
}

func (s *JSONStore[T]) load(ctx context.Context) (T, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		return s.empty(), nil
	}
	if err != nil {
		return s.unreadable(fmt.Errorf("failed to read document: %w", err))
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return s.empty(), nil
	}

	doc := s.empty()
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return s.unreadable(fmt.Errorf("%w: %v", ErrCorrupt, err))
	}

	return doc, nil
}

func (s *JSONStore[T]) unreadable(err error) (T, error) {
	if s.failOpen {
		s.logger.Warn("treating unreadable document as empty", "error", err)
		return s.empty(), nil
	}

	var zero T
	return zero, err
}

func (s *JSONStore[T]) save(ctx context.Context, doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}
