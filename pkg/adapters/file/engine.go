// Package file provides an engine that keeps its snapshot in a JSON file.
// It lets tooling edit a saved game state with the same sessions used
// against a live simulation.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/KDL-umass/Toybox/pkg/adapters/geometry"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

// Engine implements ports.Engine on top of a snapshot file.
type Engine struct {
	Path string

	game       string
	configPath string
	queries    map[string]ports.QueryFunc
	mu         sync.Mutex
}

// Option configures the Engine.
type Option func(*Engine)

// WithGridGeometry answers tile_to_world and world_to_tile for a regular grid.
func WithGridGeometry(g geometry.Grid) Option {
	return func(e *Engine) {
		if !g.Valid() {
			return
		}
		for name, fn := range g.Queries() {
			e.queries[name] = fn
		}
	}
}

// WithConfigFile serves Config from a JSON file.
func WithConfigFile(path string) Option {
	return func(e *Engine) {
		e.configPath = path
	}
}

// New creates an engine for game backed by the snapshot file at path.
func New(path, game string, opts ...Option) *Engine {
	e := &Engine{
		Path:    path,
		game:    game,
		queries: make(map[string]ports.QueryFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GameName returns the configured game identity.
func (e *Engine) GameName(ctx context.Context) (string, error) {
	return e.game, nil
}

// ReadState reads and decodes the snapshot file.
func (e *Engine) ReadState(ctx context.Context) (domain.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return readSnapshot(e.Path)
}

func readSnapshot(path string) (domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return domain.DecodeSnapshot(f)
}

// WriteState persists the snapshot atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (e *Engine) WriteState(ctx context.Context, snap domain.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir := filepath.Dir(e.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}

	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(e.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // No-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(e.Path); err == nil {
		if err := os.Remove(e.Path); err != nil {
			return fmt.Errorf("failed to remove existing snapshot for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, e.Path); err != nil {
		return fmt.Errorf("failed to rename temp file to snapshot: %w", err)
	}
	return nil
}

// Query runs a registered query handler.
func (e *Engine) Query(ctx context.Context, name string, arg any) (any, error) {
	fn, ok := e.queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: query %q", domain.ErrNotFound, name)
	}
	return fn(ctx, arg)
}

// Config reads the config file, or returns domain.ErrNotFound when none is set.
func (e *Engine) Config(ctx context.Context) (domain.Snapshot, error) {
	if e.configPath == "" {
		return nil, fmt.Errorf("%w: engine has no config", domain.ErrNotFound)
	}
	return readSnapshot(e.configPath)
}
