// Package memory implements an in-memory history store for unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"comphub/internal/history"
	id "comphub/pkg/domain"
)

// Store is an in-memory history store. Append is all-or-nothing like the
// PostgreSQL store: when a failure is injected, nothing is recorded.
type Store struct {
	mu      sync.Mutex
	events  []history.Event
	nextSeq int64

	failAppend error
}

// New creates an empty in-memory history store.
func New() *Store {
	return &Store{nextSeq: 1}
}

// FailAppendWith makes every subsequent Append return err. Pass nil to clear.
func (s *Store) FailAppendWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAppend = err
}

// Append records the event with its diffs, or fails atomically.
func (s *Store) Append(_ context.Context, event history.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend != nil {
		return s.failAppend
	}
	for i := range event.Diffs {
		event.Diffs[i].ID = s.nextSeq
		s.nextSeq++
	}
	s.events = append(s.events, event)
	return nil
}

// ListByComp returns the comp's events, most recent first.
func (s *Store) ListByComp(_ context.Context, teamID id.TeamID, compID id.CompID) ([]history.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []history.Event
	// Walk newest-insertion-first so the stable sort breaks created_at ties
	// the same way the SQL store's secondary id ordering does.
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if e.CompID == compID && e.TeamID == teamID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Events returns everything appended so far, in insertion order. Test helper.
func (s *Store) Events() []history.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]history.Event, len(s.events))
	copy(out, s.events)
	return out
}

// LastEvent returns the most recently appended event, or false when empty.
// Test helper.
func (s *Store) LastEvent() (history.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return history.Event{}, false
	}
	return s.events[len(s.events)-1], true
}
