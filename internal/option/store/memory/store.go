// Package memory implements an in-memory option store for unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"comphub/internal/option/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
)

// Store is an in-memory option store.
type Store struct {
	mu      sync.Mutex
	options map[id.OptionID]models.Option

	failInsert error
	failUpdate error
	failDelete error
}

// New creates an empty in-memory option store.
func New() *Store {
	return &Store{options: make(map[id.OptionID]models.Option)}
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

// FailDeleteWith makes Delete return err. Pass nil to clear.
func (s *Store) FailDeleteWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete = err
}

func (s *Store) Insert(_ context.Context, opt models.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	optID := opt.OptionMeta().ID
	if _, exists := s.options[optID]; exists {
		return sentinel.ErrConflict
	}
	s.options[optID] = clone(opt)
	return nil
}

func (s *Store) Update(_ context.Context, opt models.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	meta := opt.OptionMeta()
	existing, exists := s.options[meta.ID]
	if !exists || existing.OptionMeta().TeamID != meta.TeamID || existing.Kind() != opt.Kind() {
		return sentinel.ErrNotFound
	}
	s.options[meta.ID] = clone(opt)
	return nil
}

func (s *Store) GetByID(_ context.Context, teamID id.TeamID, kind models.Kind, optionID id.OptionID) (models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opt, exists := s.options[optionID]
	if !exists || opt.OptionMeta().TeamID != teamID || opt.Kind() != kind {
		return nil, sentinel.ErrNotFound
	}
	return clone(opt), nil
}

func (s *Store) ListByComp(_ context.Context, teamID id.TeamID, compID id.CompID) ([]models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Option
	for _, opt := range s.options {
		meta := opt.OptionMeta()
		if meta.TeamID == teamID && meta.CompID == compID {
			out = append(out, clone(opt))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind() != b.Kind() {
			return kindRank(a.Kind()) < kindRank(b.Kind())
		}
		return a.OptionMeta().Number < b.OptionMeta().Number
	})
	return out, nil
}

func (s *Store) Delete(_ context.Context, teamID id.TeamID, kind models.Kind, optionID id.OptionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	opt, exists := s.options[optionID]
	if !exists || opt.OptionMeta().TeamID != teamID || opt.Kind() != kind {
		return sentinel.ErrNotFound
	}
	delete(s.options, optionID)
	return nil
}

func (s *Store) NextNumber(_ context.Context, teamID id.TeamID, compID id.CompID, kind models.Kind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, opt := range s.options {
		meta := opt.OptionMeta()
		if meta.TeamID == teamID && meta.CompID == compID && opt.Kind() == kind && meta.Number > max {
			max = meta.Number
		}
	}
	return max + 1, nil
}

func kindRank(k models.Kind) int {
	switch k {
	case models.KindRenewal:
		return 0
	case models.KindTermination:
		return 1
	case models.KindExpansion:
		return 2
	default:
		return 3
	}
}

func clone(opt models.Option) models.Option {
	switch o := opt.(type) {
	case *models.Renewal:
		c := *o
		return &c
	case *models.Termination:
		c := *o
		return &c
	case *models.Expansion:
		c := *o
		return &c
	case *models.Purchase:
		c := *o
		return &c
	default:
		return opt
	}
}
