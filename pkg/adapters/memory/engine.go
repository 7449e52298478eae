package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/KDL-umass/Toybox/pkg/adapters/geometry"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

// Engine implements ports.Engine in memory. It stands in for a running
// simulation in tests and offline tooling.
// Safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	game    string
	data    []byte
	config  []byte
	queries map[string]ports.QueryFunc

	reads  int
	writes int
}

// Option configures the Engine.
type Option func(*Engine)

// WithQuery registers a query handler.
func WithQuery(name string, fn ports.QueryFunc) Option {
	return func(e *Engine) {
		e.queries[name] = fn
	}
}

// WithGridGeometry answers tile_to_world and world_to_tile for a regular grid.
func WithGridGeometry(cellW, cellH, offsetX, offsetY int) Option {
	return func(e *Engine) {
		for name, fn := range (geometry.Grid{CellW: cellW, CellH: cellH, OffsetX: offsetX, OffsetY: offsetY}).Queries() {
			e.queries[name] = fn
		}
	}
}

// WithConfig sets the configuration returned by Config.
func WithConfig(cfg domain.Snapshot) Option {
	return func(e *Engine) {
		if data, err := cfg.Marshal(); err == nil {
			e.config = data
		}
	}
}

// NewEngine creates an engine for game holding seed.
func NewEngine(game string, seed domain.Snapshot, opts ...Option) (*Engine, error) {
	data, err := seed.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode seed state: %w", err)
	}
	return NewEngineJSON(game, data, opts...)
}

// NewEngineJSON creates an engine for game from a raw JSON snapshot.
func NewEngineJSON(game string, data []byte, opts ...Option) (*Engine, error) {
	if _, err := domain.ParseSnapshot(data); err != nil {
		return nil, err
	}
	e := &Engine{
		game:    game,
		data:    append([]byte(nil), data...),
		queries: make(map[string]ports.QueryFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// GameName returns the configured game identity.
func (e *Engine) GameName(ctx context.Context) (string, error) {
	return e.game, nil
}

// ReadState decodes a fresh copy of the stored snapshot.
func (e *Engine) ReadState(ctx context.Context) (domain.Snapshot, error) {
	e.mu.Lock()
	e.reads++
	data := e.data
	e.mu.Unlock()
	return domain.ParseSnapshot(data)
}

// WriteState replaces the stored snapshot.
func (e *Engine) WriteState(ctx context.Context, snap domain.Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes++
	e.data = data
	return nil
}

// Query runs a registered query handler.
func (e *Engine) Query(ctx context.Context, name string, arg any) (any, error) {
	e.mu.RLock()
	fn, ok := e.queries[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: query %q", domain.ErrNotFound, name)
	}
	return fn(ctx, arg)
}

// Config returns the configuration set with WithConfig, or domain.ErrNotFound.
func (e *Engine) Config(ctx context.Context) (domain.Snapshot, error) {
	e.mu.RLock()
	data := e.config
	e.mu.RUnlock()
	if data == nil {
		return nil, fmt.Errorf("%w: engine has no config", domain.ErrNotFound)
	}
	return domain.ParseSnapshot(data)
}

// Reads returns the number of ReadState calls.
func (e *Engine) Reads() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reads
}

// Writes returns the number of WriteState calls.
func (e *Engine) Writes() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.writes
}

// JSON returns the stored snapshot bytes.
func (e *Engine) JSON() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]byte(nil), e.data...)
}
