// Package memory provides an in-process ledger.Store used by tests and the
// memory backend. Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"moneytrack/internal/ledger"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func (s *Store) Read(_ context.Context, path string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.docs[path]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *Store) Write(_ context.Context, path string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = clone(value)
	return nil
}

func (s *Store) Patch(_ context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, err := ledger.Merge(s.docs[path], fields)
	if err != nil {
		return err
	}
	s.docs[path] = merged
	return nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.docs {
		if ledger.IsBelow(p, path) {
			delete(s.docs, p)
		}
	}
	return nil
}

func (s *Store) Append(_ context.Context, path string, value []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ledger.NewID()
	s.docs[ledger.Join(path, id)] = clone(value)
	return id, nil
}

func (s *Store) Children(_ context.Context, path string) ([]ledger.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ledger.Child
	for p, v := range s.docs {
		parent, id := ledger.Split(p)
		if parent == path {
			out = append(out, ledger.Child{ID: id, Value: clone(v)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) Close() error { return nil }

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
