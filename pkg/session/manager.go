package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// DefaultLockWait bounds how long Open waits for a distributed lock held elsewhere.
const DefaultLockWait = 500 * time.Millisecond

// lease records the session currently holding the engine handle.
type lease struct {
	sessionID string
	unlock    ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager lends a single engine handle to one session at a time.
type Manager struct {
	engine ports.Engine

	mu    sync.Mutex // Guards lease
	lease *lease

	locker  ports.DistributedLocker // Optional distributed locker
	lockKey  string
	lockTTL  time.Duration
	lockWait time.Duration

	hooks  domain.LifecycleHooks
	logger *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockKey sets the distributed lock key. Processes sharing an engine must agree on it.
func WithLockKey(key string) Option {
	return func(m *Manager) {
		m.lockKey = key
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLockWait sets how long Open waits for the distributed lock before
// failing with domain.ErrSessionBusy.
func WithLockWait(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lockWait = d
		}
	}
}

// WithHooks registers lifecycle callbacks. Repeated use merges the hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = domain.MergeHooks(m.hooks, hooks)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager for the given engine handle.
func NewManager(engine ports.Engine, opts ...Option) *Manager {
	m := &Manager{
		engine:   engine,
		lockKey:  "toybox:engine",
		lockTTL:  DefaultLockTTL,
		lockWait: DefaultLockWait,
		logger:   logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the managed engine handle.
func (m *Manager) Engine() ports.Engine {
	return m.engine
}

// Busy reports whether a session currently holds the handle.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lease != nil
}

// Holder returns the ID of the session holding the handle, or "".
func (m *Manager) Holder() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lease == nil {
		return ""
	}
	return m.lease.sessionID
}

// acquire lends the handle to sessionID. It fails fast with domain.ErrSessionBusy
// rather than waiting, so a nested Open on the same handle cannot deadlock.
// A distributed lock held by another process is waited for at most lockWait.
// The caller MUST call release exactly once on success.
func (m *Manager) acquire(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	if m.lease != nil {
		holder := m.lease.sessionID
		m.mu.Unlock()
		return fmt.Errorf("%w: held by session %s", domain.ErrSessionBusy, holder)
	}
	l := &lease{sessionID: sessionID}
	m.lease = l
	m.mu.Unlock()

	// Distributed Locking
	if m.locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, m.lockWait)
		unlock, err := m.locker.Lock(lockCtx, m.lockKey, m.lockTTL)
		cancel()
		if err != nil {
			m.clear(l)
			return fmt.Errorf("%w: failed to acquire distributed lock: %w", domain.ErrSessionBusy, err)
		}
		l.unlock = unlock
	}
	return nil
}

// release returns the handle. Unlock failures are logged, the lock then expires via TTL.
func (m *Manager) release(ctx context.Context, sessionID string) {
	m.mu.Lock()
	l := m.lease
	m.mu.Unlock()
	if l == nil || l.sessionID != sessionID {
		return // Should not happen if paired correctly
	}

	if l.unlock != nil {
		if err := l.unlock(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"session_id", sessionID,
				"err", err,
			)
		}
	}
	m.clear(l)
}

func (m *Manager) clear(l *lease) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lease == l {
		m.lease = nil
	}
}
