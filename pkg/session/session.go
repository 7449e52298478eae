package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/google/uuid"
)

// Model binds a typed graph to the engine snapshot format.
type Model[G any] struct {
	// Name is the engine identity the graph expects (see ports.Engine.GameName).
	Name string
	// Decode builds the graph. Every entity must report to the given tracker.
	Decode func(t *entity.Tracker, snap domain.Snapshot) (G, error)
	// Encode flattens the graph back to a snapshot.
	Encode func(g G) (domain.Snapshot, error)
}

// Session is one scoped read-modify-write cycle against an engine handle.
// It is not safe for concurrent use.
type Session[G any] struct {
	id      string
	manager *Manager
	model   Model[G]
	tracker *entity.Tracker
	graph   G
	base    domain.Snapshot
	opened  time.Time
	closed  bool
}

// Open borrows the manager's engine handle, reads the snapshot and decodes it.
// On any failure the handle is released and no session is returned.
func Open[G any](ctx context.Context, m *Manager, model Model[G]) (*Session[G], error) {
	id := uuid.NewString()
	if err := m.acquire(ctx, id); err != nil {
		return nil, err
	}

	s, err := load(ctx, m, model, id)
	if err != nil {
		m.release(ctx, id)
		m.logger.Debug("session open failed", "session_id", id, "game", model.Name, "err", err)
		return nil, err
	}

	if m.hooks.OnOpen != nil {
		m.hooks.OnOpen(ctx, s.event())
	}
	m.logger.Debug("session opened", "session_id", id, "game", model.Name)
	return s, nil
}

func load[G any](ctx context.Context, m *Manager, model Model[G], id string) (*Session[G], error) {
	name, err := m.engine.GameName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read game identity: %w", err)
	}
	if name != model.Name {
		return nil, fmt.Errorf("%w: engine runs %q, session expects %q", domain.ErrSchemaMismatch, name, model.Name)
	}

	snap, err := m.engine.ReadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	tracker := entity.NewTracker()
	graph, err := model.Decode(tracker, snap)
	if err != nil {
		tracker.Close()
		return nil, err
	}

	// The diff base goes through the same codec as the write-back, so keys
	// the codec drops or rewrites never show up as changes.
	encoded, err := model.Encode(graph)
	if err != nil {
		tracker.Close()
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	base, err := encoded.Normalize()
	if err != nil {
		tracker.Close()
		return nil, fmt.Errorf("failed to copy state: %w", err)
	}

	return &Session[G]{
		id:      id,
		manager: m,
		model:   model,
		tracker: tracker,
		graph:   graph,
		base:    base,
		opened:  time.Now(),
	}, nil
}

// ID returns the session identifier.
func (s *Session[G]) ID() string { return s.id }

// Graph returns the decoded graph.
func (s *Session[G]) Graph() G { return s.graph }

// Tracker returns the session's dirty tracker.
func (s *Session[G]) Tracker() *entity.Tracker { return s.tracker }

// Dirty reports whether any entity was mutated.
func (s *Session[G]) Dirty() bool { return s.tracker.Dirty() }

// Closed reports whether the session ended.
func (s *Session[G]) Closed() bool { return s.closed }

// Query forwards a computation request to the engine.
func (s *Session[G]) Query(ctx context.Context, name string, arg any) (any, error) {
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	return s.manager.engine.Query(ctx, name, arg)
}

// Config returns the engine configuration when the engine exposes one.
func (s *Session[G]) Config(ctx context.Context) (domain.Snapshot, error) {
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	src, ok := s.manager.engine.(ports.ConfigSource)
	if !ok {
		return nil, fmt.Errorf("%w: engine exposes no config", domain.ErrNotFound)
	}
	return src.Config(ctx)
}

// Close ends the session normally. A dirty session is encoded and written
// back with a single WriteState; a clean one writes nothing. The handle is
// released on every path. Closing twice is a no-op.
func (s *Session[G]) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}

	if !s.tracker.Dirty() {
		s.finish(ctx)
		if h := s.manager.hooks.OnClose; h != nil {
			h(ctx, s.event())
		}
		s.manager.logger.Debug("session closed clean", "session_id", s.id)
		return nil
	}

	snap, err := s.model.Encode(s.graph)
	if err != nil {
		err = fmt.Errorf("failed to encode state: %w", err)
		s.discard(ctx, err)
		return err
	}
	if err := s.manager.engine.WriteState(ctx, snap); err != nil {
		err = fmt.Errorf("failed to write state: %w", err)
		s.discard(ctx, err)
		return err
	}
	s.finish(ctx)

	after, err := snap.Normalize()
	if err != nil {
		after = snap
	}
	diff := domain.Diff(s.base, after)
	if h := s.manager.hooks.OnCommit; h != nil {
		h(ctx, &domain.CommitEvent{SessionEvent: *s.event(), Diff: diff, Snapshot: after})
	}
	if h := s.manager.hooks.OnClose; h != nil {
		h(ctx, s.event())
	}
	s.manager.logger.Info("session committed",
		"session_id", s.id,
		"game", s.model.Name,
		"changed", diff.Keys(),
	)
	return nil
}

// Discard ends the session without writing anything back.
func (s *Session[G]) Discard(ctx context.Context) {
	s.discard(ctx, errors.New("discarded by caller"))
}

func (s *Session[G]) discard(ctx context.Context, reason error) {
	if s.closed {
		return
	}
	s.finish(ctx)

	ev := s.event()
	ev.Reason = reason.Error()
	if h := s.manager.hooks.OnDiscard; h != nil {
		h(ctx, ev)
	}
	s.manager.logger.Warn("session discarded",
		"session_id", s.id,
		"game", s.model.Name,
		"dirty", s.tracker.Dirty(),
		"reason", ev.Reason,
	)
}

func (s *Session[G]) finish(ctx context.Context) {
	s.closed = true
	s.tracker.Close()
	s.manager.release(ctx, s.id)
}

func (s *Session[G]) event() *domain.SessionEvent {
	ev := &domain.SessionEvent{
		SessionID: s.id,
		Game:      s.model.Name,
		Timestamp: time.Now(),
	}
	if s.closed {
		ev.Duration = time.Since(s.opened)
	}
	return ev
}

// Run opens a session, calls fn and closes the session. If fn returns an
// error or panics, the session is discarded without writing and the error
// (or panic) propagates.
func Run[G any](ctx context.Context, m *Manager, model Model[G], fn func(*Session[G]) error) error {
	s, err := Open(ctx, m, model)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			s.discard(ctx, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	if err := fn(s); err != nil {
		s.discard(ctx, err)
		return err
	}
	return s.Close(ctx)
}
