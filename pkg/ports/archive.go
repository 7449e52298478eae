package ports

import (
	"context"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// Archive keeps an append-only history of committed snapshots.
type Archive interface {
	// Record stores a commit. The commit ID must be set.
	Record(ctx context.Context, c domain.Commit) error

	// List returns up to limit commits for game, newest first.
	// A limit of zero or less means no limit.
	List(ctx context.Context, game string, limit int) ([]domain.Commit, error)

	// Get returns one commit, or domain.ErrCommitNotFound.
	Get(ctx context.Context, id string) (domain.Commit, error)
}
