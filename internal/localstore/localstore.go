// Package localstore persists the one piece of durable client state: the
// set of order ids this client has submitted itself. It is an allow-list,
// not a cache; live order data always comes from the ledger mirror.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// SubmittedOrders is a small persisted string set with load-once,
// save-on-mutate semantics.
type SubmittedOrders interface {
	// Add records an id and persists the set before returning.
	Add(id string) error
	// Contains reports membership.
	Contains(id string) bool
	// All returns the ids in insertion order.
	All() []string
}

// memSet is the in-memory core shared by every backend. persist is called
// under the lock after each mutation.
type memSet struct {
	mu      sync.RWMutex
	ids     []string
	members map[string]struct{}
}

func (s *memSet) init(ids []string) {
	s.members = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := s.members[id]; dup {
			continue
		}
		s.ids = append(s.ids, id)
		s.members[id] = struct{}{}
	}
}

func (s *memSet) add(id string) bool {
	if _, dup := s.members[id]; dup {
		return false
	}
	s.ids = append(s.ids, id)
	s.members[id] = struct{}{}
	return true
}

func (s *memSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[id]
	return ok
}

func (s *memSet) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// FileSet stores the set as a JSON array in a single file, the shape the
// browser build kept under its storage key.
type FileSet struct {
	memSet
	path string
}

// NewFileSet loads the set from path; a missing file is an empty set.
func NewFileSet(path string) (*FileSet, error) {
	var ids []string
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read order set: %w", err)
	default:
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, fmt.Errorf("failed to parse order set: %w", err)
		}
	}
	f := &FileSet{path: path}
	f.init(ids)
	return f, nil
}

// Add appends id and rewrites the file. The in-memory set is only updated
// once the write succeeds.
func (f *FileSet) Add(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.members[id]; dup {
		return nil
	}
	next := append(append([]string{}, f.ids...), id)
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to persist order set: %w", err)
	}
	f.add(id)
	return nil
}

// MemSet is a purely in-memory SubmittedOrders for tests.
type MemSet struct {
	memSet
}

// NewMemSet builds an in-memory set seeded with ids.
func NewMemSet(ids ...string) *MemSet {
	m := &MemSet{}
	m.init(ids)
	return m
}

// Add records id in memory.
func (m *MemSet) Add(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(id)
	return nil
}
