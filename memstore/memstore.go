// Package memstore provides an in-memory record.AttributeStore.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jacentio/vine/record"
)

// Store is an in-memory implementation of record.AttributeStore.
// It's thread-safe, and every read is consistent regardless of the
// consistentRead flag.
type Store struct {
	mu    sync.RWMutex
	items map[string]record.Attributes

	gets atomic.Int64
	puts atomic.Int64
}

var _ record.AttributeStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		items: make(map[string]record.Attributes),
	}
}

// GetAttributes returns a copy of the attributes stored for id.
func (s *Store) GetAttributes(ctx context.Context, id string, _ bool) (record.Attributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.gets.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to avoid external modifications
	return s.items[id].Clone(), nil
}

// PutAttributes merges attrs into the attributes stored for id.
func (s *Store) PutAttributes(ctx context.Context, id string, attrs record.Attributes, expected *record.Expected) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.puts.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[id]
	if expected != nil {
		if !exists {
			return record.ErrConditionFailed
		}
		if v, ok := current[expected.Name]; !ok || v != expected.Value {
			return record.ErrConditionFailed
		}
	}

	if !exists {
		current = make(record.Attributes, len(attrs))
		s.items[id] = current
	}
	for k, v := range attrs {
		current[k] = v
	}
	return nil
}

// Set replaces the attributes stored for id without any condition.
// It is intended for seeding fixtures.
func (s *Store) Set(id string, attrs record.Attributes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = attrs.Clone()
}

// Len returns the number of stored ids.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Stats reports the number of calls served.
type Stats struct {
	Gets int64
	Puts int64
}

// Stats returns the number of GetAttributes and PutAttributes calls served.
func (s *Store) Stats() Stats {
	return Stats{Gets: s.gets.Load(), Puts: s.puts.Load()}
}
