// Package memory implements the file metadata store in memory for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"comphub/internal/file/models"
	id "comphub/pkg/domain"
	"comphub/pkg/platform/sentinel"
)

// Store keeps file rows in a map.
type Store struct {
	mu        sync.RWMutex
	files     map[id.FileID]models.File
	insertErr error
	deleteErr error
}

// New creates an empty file store.
func New() *Store {
	return &Store{files: make(map[id.FileID]models.File)}
}

// FailInsertWith makes the next Insert calls return err.
func (s *Store) FailInsertWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertErr = err
}

// FailDeleteWith makes the next Delete calls return err.
func (s *Store) FailDeleteWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

func (s *Store) Insert(_ context.Context, file models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.files[file.ID] = file
	return nil
}

func (s *Store) GetByID(_ context.Context, teamID id.TeamID, fileID id.FileID) (models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.files[fileID]
	if !ok || file.TeamID != teamID {
		return models.File{}, sentinel.ErrNotFound
	}
	return file, nil
}

func (s *Store) ListByComp(_ context.Context, teamID id.TeamID, compID id.CompID) ([]models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.File
	for _, file := range s.files {
		if file.TeamID == teamID && file.CompID == compID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Delete(_ context.Context, teamID id.TeamID, fileID id.FileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	file, ok := s.files[fileID]
	if !ok || file.TeamID != teamID {
		return sentinel.ErrNotFound
	}
	delete(s.files, fileID)
	return nil
}
