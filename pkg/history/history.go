// Package history keeps the most recent finalized invoices.
//
// The log is ordered newest first, holds at most MaxEntries values and never
// admits an invoice equal to its current head. Every change is written to a
// storage.Store under Key before it becomes visible.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/logger"
	"github.com/invoice-generator/pkg/storage"
)

const (
	// MaxEntries bounds the length of the log.
	MaxEntries = 25

	// Key is the storage key the log is persisted under.
	Key = "invoiceHistory"
)

// DecodeError reports a stored payload that could not be parsed. Load
// recovers from it by starting with an empty log.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode history: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Log is the bounded, deduplicated history of submitted invoices.
type Log struct {
	store   storage.Store
	log     *slog.Logger
	entries []invoice.Invoice
}

// Open loads the log persisted in store.
func Open(ctx context.Context, store storage.Store, l *slog.Logger) (*Log, error) {
	h := &Log{store: store, log: logger.OrDiscard(l)}
	if err := h.Load(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// Load replaces the in-memory log with the persisted one. A missing or
// malformed payload yields an empty log; only store failures are returned.
func (h *Log) Load(ctx context.Context) error {
	data, err := h.store.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		h.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	entries, err := decode(data)
	if err != nil {
		h.log.WarnContext(ctx, "discarding unreadable history", "key", Key, "error", err)
		h.entries = nil
		return nil
	}
	h.entries = entries
	return nil
}

// Append admits entry unless it equals the head. It reports whether the log
// changed.
func (h *Log) Append(ctx context.Context, entry invoice.Invoice) (bool, error) {
	if head, ok := h.Head(); ok && invoice.Equal(head, entry) {
		return false, nil
	}

	n := min(len(h.entries), MaxEntries-1)
	next := make([]invoice.Invoice, 0, n+1)
	next = append(next, entry.Clone())
	next = append(next, h.entries[:n]...)

	data, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := h.store.Set(ctx, Key, data); err != nil {
		return false, fmt.Errorf("failed to persist history: %w", err)
	}

	if dropped := len(h.entries) - n; dropped > 0 {
		h.log.DebugContext(ctx, "history truncated", "dropped", dropped)
	}
	h.entries = next
	return true, nil
}

// Len returns the number of entries.
func (h *Log) Len() int {
	return len(h.entries)
}

// Head returns a copy of the most recent entry.
func (h *Log) Head() (invoice.Invoice, bool) {
	if len(h.entries) == 0 {
		return invoice.Invoice{}, false
	}
	return h.entries[0].Clone(), true
}

// Entries returns copies of all entries, newest first.
func (h *Log) Entries() []invoice.Invoice {
	out := make([]invoice.Invoice, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}

// Select returns a copy of the entry at position i for reloading into the
// editor. The log itself is not changed.
func (h *Log) Select(i int) (invoice.Invoice, error) {
	if i < 0 || i >= len(h.entries) {
		return invoice.Invoice{}, &invoice.IndexOutOfRangeError{Index: i, Len: len(h.entries)}
	}
	return h.entries[i].Clone(), nil
}

func decode(data []byte) ([]invoice.Invoice, error) {
	var entries []invoice.Invoice
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries, nil
}
