// Package memory implements an in-memory comp store for unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"comphub/internal/comp/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
)

// Store is an in-memory comp store.
type Store struct {
	mu    sync.Mutex
	comps map[id.CompID]models.LeaseComp

	failInsert error
	failUpdate error
}

// New creates an empty in-memory comp store.
func New() *Store {
	return &Store{comps: make(map[id.CompID]models.LeaseComp)}
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

func (s *Store) Insert(_ context.Context, comp models.LeaseComp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	if _, exists := s.comps[comp.ID]; exists {
		return sentinel.ErrConflict
	}
	s.comps[comp.ID] = comp
	return nil
}

func (s *Store) Update(_ context.Context, comp models.LeaseComp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	existing, exists := s.comps[comp.ID]
	if !exists || existing.TeamID != comp.TeamID || existing.IsDeleted {
		return sentinel.ErrNotFound
	}
	s.comps[comp.ID] = comp
	return nil
}

func (s *Store) GetByID(_ context.Context, teamID id.TeamID, compID id.CompID) (models.LeaseComp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, exists := s.comps[compID]
	if !exists || comp.TeamID != teamID || comp.IsDeleted {
		return models.LeaseComp{}, sentinel.ErrNotFound
	}
	return comp, nil
}

func (s *Store) List(_ context.Context, teamID id.TeamID) ([]models.LeaseComp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LeaseComp
	for _, comp := range s.comps {
		if comp.TeamID == teamID && !comp.IsDeleted {
			out = append(out, comp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
