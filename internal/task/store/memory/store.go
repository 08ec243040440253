// Package memory implements an in-memory task store for unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"comphub/internal/task/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
)

// Store is an in-memory task store.
type Store struct {
	mu    sync.Mutex
	tasks map[id.TaskID]models.Task

	failInsert error
	failUpdate error
}

// New creates an empty in-memory task store.
func New() *Store {
	return &Store{tasks: make(map[id.TaskID]models.Task)}
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

func (s *Store) Insert(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	if _, exists := s.tasks[task.ID]; exists {
		return sentinel.ErrConflict
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *Store) Update(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	existing, exists := s.tasks[task.ID]
	if !exists || existing.TeamID != task.TeamID {
		return sentinel.ErrNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *Store) GetByID(_ context.Context, teamID id.TeamID, taskID id.TaskID) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, exists := s.tasks[taskID]
	if !exists || task.TeamID != teamID {
		return models.Task{}, sentinel.ErrNotFound
	}
	return task, nil
}

func (s *Store) ListByComp(_ context.Context, teamID id.TeamID, compID id.CompID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, task := range s.tasks {
		if task.TeamID == teamID && task.CompID == compID {
			out = append(out, task)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Status == models.StatusCompleted) != (b.Status == models.StatusCompleted) {
			return a.Status != models.StatusCompleted
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}
