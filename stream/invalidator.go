package stream

import (
	"context"
	"sync"

	"github.com/jacentio/vine/record"
)

// Invalidator tracks the latest stored version of each record seen on the
// stream, so holders can tell when their copy is stale.
// It's safe for concurrent use.
type Invalidator struct {
	mu      sync.RWMutex
	latest  map[string]int64
	removed map[string]bool
}

// NewInvalidator creates an empty Invalidator.
func NewInvalidator() *Invalidator {
	return &Invalidator{
		latest:  make(map[string]int64),
		removed: make(map[string]bool),
	}
}

// Observe records c. It has the Listener signature. Versions only move
// forward, so redelivered changes are harmless.
func (i *Invalidator) Observe(_ context.Context, c Change) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if c.Event == EventRemove {
		i.removed[c.ID] = true
		return nil
	}
	delete(i.removed, c.ID)
	if c.NewVersion > i.latest[c.ID] {
		i.latest[c.ID] = c.NewVersion
	}
	return nil
}

// Latest returns the highest version seen for id.
func (i *Invalidator) Latest(id string) (int64, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.latest[id]
	return v, ok
}

// Removed reports whether the last change seen for id was a removal.
func (i *Invalidator) Removed(id string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.removed[id]
}

// Stale reports whether a newer version than version has been seen for id.
func (i *Invalidator) Stale(id string, version int64) bool {
	latest, ok := i.Latest(id)
	return ok && latest > version
}

// RefreshIfStale force-refreshes r when the stream has shown a newer version.
// It reports whether a refresh happened.
func (i *Invalidator) RefreshIfStale(ctx context.Context, r *record.Record) (bool, error) {
	if r.ID() == "" || !i.Stale(r.ID(), r.Version()) {
		return false, nil
	}
	if err := r.Refresh(ctx, true); err != nil {
		return false, err
	}
	return true, nil
}
