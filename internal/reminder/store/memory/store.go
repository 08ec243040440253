// Package memory implements an in-memory reminder store for unit tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"comphub/internal/reminder/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
)

// Store is an in-memory reminder store.
type Store struct {
	mu        sync.Mutex
	reminders map[id.ReminderID]models.Reminder

	failInsert error
	failUpdate error
}

// New creates an empty in-memory reminder store.
func New() *Store {
	return &Store{reminders: make(map[id.ReminderID]models.Reminder)}
}

// FailInsertWith makes Insert return err. Pass nil to clear.
func (s *Store) FailInsertWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInsert = err
}

// FailUpdateWith makes Update return err. Pass nil to clear.
func (s *Store) FailUpdateWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdate = err
}

func (s *Store) Insert(_ context.Context, reminder models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	if _, exists := s.reminders[reminder.ID]; exists {
		return sentinel.ErrConflict
	}
	s.reminders[reminder.ID] = reminder
	return nil
}

func (s *Store) Update(_ context.Context, reminder models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	existing, exists := s.reminders[reminder.ID]
	if !exists || existing.TeamID != reminder.TeamID {
		return sentinel.ErrNotFound
	}
	s.reminders[reminder.ID] = reminder
	return nil
}

func (s *Store) GetByID(_ context.Context, teamID id.TeamID, reminderID id.ReminderID) (models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reminder, exists := s.reminders[reminderID]
	if !exists || reminder.TeamID != teamID {
		return models.Reminder{}, sentinel.ErrNotFound
	}
	return reminder, nil
}

func (s *Store) ListByComp(_ context.Context, teamID id.TeamID, compID id.CompID) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Reminder
	for _, reminder := range s.reminders {
		if reminder.TeamID == teamID && reminder.CompID == compID {
			out = append(out, reminder)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pending() != b.Pending() {
			return a.Pending()
		}
		return a.RemindAt.Before(b.RemindAt)
	})
	return out, nil
}

func (s *Store) ListDue(_ context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Reminder
	for _, reminder := range s.reminders {
		if reminder.Pending() && !reminder.NotificationSent && !reminder.RemindAt.After(now) {
			out = append(out, reminder)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemindAt.Before(out[j].RemindAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotified(_ context.Context, reminderID id.ReminderID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reminder, exists := s.reminders[reminderID]
	if !exists || reminder.NotificationSent {
		return sentinel.ErrNotFound
	}
	reminder.NotificationSent = true
	reminder.UpdatedAt = at
	s.reminders[reminderID] = reminder
	return nil
}
