// Package memory provides an in-memory blob store for tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"comphub/pkg/platform/sentinel"
)

// Store keeps blobs in a map.
type Store struct {
	mu        sync.RWMutex
	blobs     map[string][]byte
	putErr    error
	deleteErr error
}

// New creates an empty blob store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// FailPutWith makes the next Put calls return err.
func (s *Store) FailPutWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// FailDeleteWith makes the next Delete calls return err.
func (s *Store) FailDeleteWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// Len reports how many blobs are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func (s *Store) Put(_ context.Context, path string, r io.Reader) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return 0, s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.blobs[path] = data
	return int64(len(data)), nil
}

func (s *Store) Open(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[path]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.blobs[path]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.blobs, path)
	return nil
}
