package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// Archive implements ports.Archive in memory.
// Safe for concurrent use.
type Archive struct {
	mu      sync.RWMutex
	commits []domain.Commit
	byID    map[string]int
	max     int
}

// NewArchive creates an archive. A positive max keeps only the newest max commits.
func NewArchive(max int) *Archive {
	return &Archive{byID: make(map[string]int), max: max}
}

// Record stores a copy of c.
func (a *Archive) Record(ctx context.Context, c domain.Commit) error {
	if c.ID == "" {
		return errors.New("commit ID is required")
	}
	snap, err := c.Snapshot.Clone()
	if err != nil {
		return fmt.Errorf("failed to copy snapshot: %w", err)
	}
	c.Snapshot = snap
	c.Changed = slices.Clone(c.Changed)

	a.mu.Lock()
	defer a.mu.Unlock()
	if i, ok := a.byID[c.ID]; ok {
		a.commits[i] = c
		return nil
	}
	a.commits = append(a.commits, c)
	if a.max > 0 && len(a.commits) > a.max {
		a.commits = slices.Clone(a.commits[len(a.commits)-a.max:])
	}
	a.reindex()
	return nil
}

func (a *Archive) reindex() {
	clear(a.byID)
	for i, c := range a.commits {
		a.byID[c.ID] = i
	}
}

// List returns commits for game, newest first.
func (a *Archive) List(ctx context.Context, game string, limit int) ([]domain.Commit, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []domain.Commit
	for i := len(a.commits) - 1; i >= 0; i-- {
		if a.commits[i].Game == game {
			out = append(out, a.commits[i])
		}
	}
	slices.SortStableFunc(out, func(x, y domain.Commit) int {
		return y.CommittedAt.Compare(x.CommittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns the commit with the given ID.
func (a *Archive) Get(ctx context.Context, id string) (domain.Commit, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i, ok := a.byID[id]
	if !ok {
		return domain.Commit{}, fmt.Errorf("%w: %s", domain.ErrCommitNotFound, id)
	}
	return a.commits[i], nil
}
