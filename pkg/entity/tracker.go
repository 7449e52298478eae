package entity

import (
	"sync"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// Tracker is the dirty flag shared by every entity of one session.
// The flag only moves from clean to dirty. Once closed, mutations fail.
type Tracker struct {
	mu     sync.Mutex
	dirty  bool
	closed bool
}

// NewTracker returns a clean, open tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkDirty records a mutation. It fails with domain.ErrSessionClosed after Close.
func (t *Tracker) MarkDirty() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrSessionClosed
	}
	t.dirty = true
	return nil
}

// Dirty reports whether any mutation happened.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// Close makes every entity bound to this tracker unusable for mutation.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// Closed reports whether Close was called.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
