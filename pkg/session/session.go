// Package session ties the draft editor, the history log and the submission
// coordinator together behind a single lock, so events coming from
// concurrent callers are applied one at a time.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/invoice-generator/pkg/editor"
	"github.com/invoice-generator/pkg/history"
	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/logger"
	"github.com/invoice-generator/pkg/submission"
)

// Session holds the draft under edit and the history it is submitted to.
type Session struct {
	mu          sync.Mutex
	editor      *editor.Editor
	history     *history.Log
	coordinator *submission.Coordinator
	log         *slog.Logger
}

// New returns a session with an empty draft backed by h.
func New(h *history.Log, p submission.Policy, l *slog.Logger) *Session {
	l = logger.OrDiscard(l)
	return &Session{
		editor:      editor.New(),
		history:     h,
		coordinator: submission.New(h, p, l),
		log:         l,
	}
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() invoice.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Draft()
}

// Edit runs fn against the editor and returns the resulting draft.
func (s *Session) Edit(fn func(e *editor.Editor) error) (invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.editor); err != nil {
		return s.editor.Draft(), err
	}
	return s.editor.Draft(), nil
}

// Submit finalizes the current draft through exp.
func (s *Session) Submit(ctx context.Context, exp submission.Exporter) (submission.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coordinator.Submit(ctx, exp, s.editor.Draft())
}

// History returns the history entries, newest first.
func (s *Session) History() []invoice.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// LoadHistory makes a copy of history entry i the current draft. The entry
// stays in the log.
func (s *Session) LoadHistory(i int) (invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.history.Select(i)
	if err != nil {
		return invoice.Invoice{}, err
	}
	s.editor.LoadFromHistory(entry)
	s.log.Debug("draft loaded from history", "index", i)
	return s.editor.Draft(), nil
}
