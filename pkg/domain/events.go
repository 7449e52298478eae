package domain

import (
	"context"
	"time"
)

// SessionEvent describes a session boundary.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Game      string    `json:"game"`
	Timestamp time.Time `json:"timestamp"`
	// Duration is zero on open.
	Duration time.Duration `json:"duration,omitempty"`
	// Reason is set when a session is discarded.
	Reason string `json:"reason,omitempty"`
}

// CommitEvent is fired after a dirty session has written its snapshot back.
type CommitEvent struct {
	SessionEvent
	Diff     *SnapshotDiff `json:"diff,omitempty"`
	Snapshot Snapshot      `json:"snapshot"`
}

// LifecycleHooks defines callbacks for session observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnOpen    func(context.Context, *SessionEvent)
	OnCommit  func(context.Context, *CommitEvent)
	OnDiscard func(context.Context, *SessionEvent)
	// OnClose fires on every clean close, dirty or not.
	OnClose func(context.Context, *SessionEvent)
}

// MergeHooks fans every callback out to all hook sets in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		merged.OnOpen = chain(merged.OnOpen, h.OnOpen)
		merged.OnCommit = chain(merged.OnCommit, h.OnCommit)
		merged.OnDiscard = chain(merged.OnDiscard, h.OnDiscard)
		merged.OnClose = chain(merged.OnClose, h.OnClose)
	}
	return merged
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	if first == nil {
		return next
	}
	if next == nil {
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}
