package ports

import (
	"context"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// Query names understood by engines that expose geometry.
const (
	QueryTileToWorld = "tile_to_world"
	QueryWorldToTile = "world_to_tile"
)

// Engine is a handle on a running simulation.
type Engine interface {
	// GameName returns the identity of the simulation (e.g. "amidar").
	GameName(ctx context.Context) (string, error)

	// ReadState returns a fresh copy of the current snapshot.
	// Mutating the returned value must not affect the engine.
	ReadState(ctx context.Context) (domain.Snapshot, error)

	// WriteState replaces the simulation state with snap.
	WriteState(ctx context.Context, snap domain.Snapshot) error

	// Query asks the engine to compute something from its own state,
	// such as a coordinate conversion. Unknown names return domain.ErrNotFound.
	Query(ctx context.Context, name string, arg any) (any, error)
}

// ConfigSource is implemented by engines that expose their configuration.
type ConfigSource interface {
	Config(ctx context.Context) (domain.Snapshot, error)
}

// QueryFunc answers one named engine query.
type QueryFunc func(ctx context.Context, arg any) (any, error)
