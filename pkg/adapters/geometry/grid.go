// Package geometry provides tile/world coordinate conversion for stand-in
// engines. A real simulation answers these queries from its own geometry.
package geometry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
)

// Grid maps tile (tx, ty) to world (tx*CellW+OffsetX, ty*CellH+OffsetY).
type Grid struct {
	CellW, CellH     int
	OffsetX, OffsetY int
}

// Valid reports whether both cell sizes are positive.
func (g Grid) Valid() bool { return g.CellW > 0 && g.CellH > 0 }

// TileToWorld returns the world position of the tile's top-left corner.
func (g Grid) TileToWorld(tx, ty int) (int, int) {
	return tx*g.CellW + g.OffsetX, ty*g.CellH + g.OffsetY
}

// WorldToTile returns the tile containing the world position.
func (g Grid) WorldToTile(x, y int) (int, int) {
	return floorDiv(x-g.OffsetX, g.CellW), floorDiv(y-g.OffsetY, g.CellH)
}

// Queries returns the tile_to_world and world_to_tile handlers.
// Results are two-element arrays, matching the native engine.
func (g Grid) Queries() map[string]ports.QueryFunc {
	return map[string]ports.QueryFunc{
		ports.QueryTileToWorld: func(_ context.Context, arg any) (any, error) {
			tx, ty, err := Coords(arg, "tx", "ty")
			if err != nil {
				return nil, err
			}
			x, y := g.TileToWorld(tx, ty)
			return []any{x, y}, nil
		},
		ports.QueryWorldToTile: func(_ context.Context, arg any) (any, error) {
			x, y, err := Coords(arg, "x", "y")
			if err != nil {
				return nil, err
			}
			tx, ty := g.WorldToTile(x, y)
			return []any{tx, ty}, nil
		},
	}
}

// Coords reads two integer members of a point argument.
func Coords(arg any, kx, ky string) (int, int, error) {
	m, ok := arg.(map[string]any)
	if !ok {
		return 0, 0, fmt.Errorf("%w: point argument must be an object, got %T", domain.ErrInvalidValue, arg)
	}
	x, okx := integer(m[kx])
	y, oky := integer(m[ky])
	if !okx || !oky {
		return 0, 0, fmt.Errorf("%w: point argument needs integer %s and %s", domain.ErrInvalidValue, kx, ky)
	}
	return x, y, nil
}

func integer(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
