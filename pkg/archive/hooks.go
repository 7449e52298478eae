package archive

import (
	"context"
	"log/slog"

	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/google/uuid"
)

// FromEvent builds the archive record of a commit event.
func FromEvent(ev *domain.CommitEvent) domain.Commit {
	return domain.Commit{
		ID:          uuid.NewString(),
		SessionID:   ev.SessionID,
		Game:        ev.Game,
		CommittedAt: ev.Timestamp.UTC(),
		Changed:     ev.Diff.Keys(),
		Snapshot:    ev.Snapshot,
	}
}

// Hooks returns lifecycle hooks that record every commit in a.
// Recording failures are logged and never fail the session, which has
// already written to the engine.
func Hooks(a ports.Archive, logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return domain.LifecycleHooks{
		OnCommit: func(ctx context.Context, ev *domain.CommitEvent) {
			c := FromEvent(ev)
			if err := a.Record(context.WithoutCancel(ctx), c); err != nil {
				logger.Warn("Failed to archive commit",
					"session_id", ev.SessionID,
					"commit_id", c.ID,
					"err", err,
				)
				return
			}
			logger.Debug("commit archived", "session_id", ev.SessionID, "commit_id", c.ID)
		},
	}
}
