package amidar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/KDL-umass/Toybox/pkg/session"
)

// Default mode durations, in frames, used when neither the caller nor the
// engine config supplies one.
const (
	DefaultJumpTime  = 75
	DefaultChaseTime = 600
)

// Mode is a gameplay mode that SetMode can switch into.
type Mode string

const (
	ModeRegular Mode = "regular"
	ModeJump    Mode = "jump"
	ModeChase   Mode = "chase"
)

// Modes lists every Mode.
var Modes = []Mode{ModeJump, ModeChase, ModeRegular}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidValue, s)
}

// Intervention is an open Amidar session plus the helpers that read and edit
// it. Helpers never mark the session dirty themselves; only the setters they
// call do.
type Intervention struct {
	session   *session.Session[*Game]
	game      *Game
	rng       *rand.Rand
	jumpTime  int
	chaseTime int
}

// Option configures an Intervention.
type Option func(*Intervention)

// WithRand sets the random source used by the random helpers.
func WithRand(r *rand.Rand) Option {
	return func(iv *Intervention) {
		if r != nil {
			iv.rng = r
		}
	}
}

// WithModeDurations overrides the fallback durations used by SetMode.
// Non-positive values keep the current fallback.
func WithModeDurations(jump, chase int) Option {
	return func(iv *Intervention) {
		if jump > 0 {
			iv.jumpTime = jump
		}
		if chase > 0 {
			iv.chaseTime = chase
		}
	}
}

// Open starts an Amidar session on the manager's engine.
// The caller MUST call Close or Discard.
func Open(ctx context.Context, m *session.Manager, opts ...Option) (*Intervention, error) {
	s, err := session.Open(ctx, m, Model)
	if err != nil {
		return nil, err
	}
	return wrap(s, opts...), nil
}

// Run opens an Amidar session, calls fn and commits when fn succeeds.
// A failing or panicking fn discards every change.
func Run(ctx context.Context, m *session.Manager, fn func(*Intervention) error, opts ...Option) error {
	return session.Run(ctx, m, Model, func(s *session.Session[*Game]) error {
		return fn(wrap(s, opts...))
	})
}

func wrap(s *session.Session[*Game], opts ...Option) *Intervention {
	iv := &Intervention{
		session: s,
		game:    s.Graph(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Game returns the root of the decoded graph.
func (iv *Intervention) Game() *Game { return iv.game }

// Session returns the underlying session.
func (iv *Intervention) Session() *session.Session[*Game] { return iv.session }

// Dirty reports whether anything was changed.
func (iv *Intervention) Dirty() bool { return iv.session.Dirty() }

// Close writes the graph back when dirty and ends the session.
func (iv *Intervention) Close(ctx context.Context) error { return iv.session.Close(ctx) }

// Discard ends the session without writing.
func (iv *Intervention) Discard(ctx context.Context) { iv.session.Discard(ctx) }

// TileAt returns the tile at (tx, ty).
func (iv *Intervention) TileAt(tx, ty int) (*Tile, error) {
	return iv.game.board.Tile(tx, ty)
}

// FilterTiles returns every tile matching pred in row-major order.
func (iv *Intervention) FilterTiles(pred func(*Tile) bool) []*Tile {
	var out []*Tile
	for _, tile := range iv.game.board.All() {
		if pred == nil || pred(tile) {
			out = append(out, tile)
		}
	}
	return out
}

// RandomTile picks a uniformly random tile matching pred.
// It fails with domain.ErrNotFound when no tile matches.
func (iv *Intervention) RandomTile(pred func(*Tile) bool) (*Tile, error) {
	candidates := iv.FilterTiles(pred)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no tile matches", domain.ErrNotFound)
	}
	return candidates[iv.rng.IntN(len(candidates))], nil
}

// RandomTrackPosition returns the world position of a random walkable tile.
func (iv *Intervention) RandomTrackPosition(ctx context.Context) (WorldPoint, error) {
	tile, err := iv.RandomTile((*Tile).Walkable)
	if err != nil {
		return WorldPoint{}, err
	}
	return iv.TileToWorld(ctx, tile)
}

// TilePointOf locates tile on the board by identity.
func (iv *Intervention) TilePointOf(tile *Tile) (TilePoint, error) {
	return iv.game.board.Locate(tile)
}

// TilePointToWorld converts tile coordinates with the engine's geometry.
func (iv *Intervention) TilePointToWorld(ctx context.Context, tp TilePoint) (WorldPoint, error) {
	res, err := iv.session.Query(ctx, ports.QueryTileToWorld, tp.Encode())
	if err != nil {
		return WorldPoint{}, fmt.Errorf("tile_to_world %s: %w", tp, err)
	}
	x, y, err := pointPair(res, "x", "y")
	if err != nil {
		return WorldPoint{}, fmt.Errorf("tile_to_world %s: %w", tp, err)
	}
	return WorldPoint{X: x, Y: y}, nil
}

// TileToWorld returns the world position of a board tile.
func (iv *Intervention) TileToWorld(ctx context.Context, tile *Tile) (WorldPoint, error) {
	tp, err := iv.TilePointOf(tile)
	if err != nil {
		return WorldPoint{}, err
	}
	return iv.TilePointToWorld(ctx, tp)
}

// WorldToTilePoint converts a world position with the engine's geometry.
func (iv *Intervention) WorldToTilePoint(ctx context.Context, wp WorldPoint) (TilePoint, error) {
	res, err := iv.session.Query(ctx, ports.QueryWorldToTile, wp.Encode())
	if err != nil {
		return TilePoint{}, fmt.Errorf("world_to_tile %s: %w", wp, err)
	}
	tx, ty, err := pointPair(res, "tx", "ty")
	if err != nil {
		return TilePoint{}, fmt.Errorf("world_to_tile %s: %w", wp, err)
	}
	return TilePoint{TX: tx, TY: ty}, nil
}

// SetPlayerRandomStart moves the player to a random walkable tile whose
// Manhattan distance to every enemy is at least minEnemyDistance.
func (iv *Intervention) SetPlayerRandomStart(ctx context.Context, minEnemyDistance int) error {
	enemies := iv.game.enemies.Items()
	points := make([]TilePoint, 0, len(enemies))
	for i, e := range enemies {
		tp, err := iv.WorldToTilePoint(ctx, e.Position())
		if err != nil {
			return fmt.Errorf("enemy %d: %w", i, err)
		}
		points = append(points, tp)
	}

	tile, err := iv.RandomTile(func(t *Tile) bool {
		if !t.Walkable() {
			return false
		}
		tp, err := iv.TilePointOf(t)
		if err != nil {
			return false
		}
		for _, ep := range points {
			if tp.Manhattan(ep) < minEnemyDistance {
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	pos, err := iv.TileToWorld(ctx, tile)
	if err != nil {
		return err
	}
	return iv.game.player.SetPosition(pos)
}

// RandomDirection picks a direction from tp toward a walkable in-bounds
// neighbour. tp itself must not be Empty.
func (iv *Intervention) RandomDirection(tp TilePoint) (Direction, error) {
	tile, err := iv.TileAt(tp.TX, tp.TY)
	if err != nil {
		return "", err
	}
	if !tile.Walkable() {
		return "", fmt.Errorf("%w: tile %s is %s", domain.ErrInvalidValue, tp, tile.Tag())
	}

	var legal []Direction
	for _, d := range Directions {
		next, err := iv.TileAt(tp.Step(d).TX, tp.Step(d).TY)
		if err == nil && next.Walkable() {
			legal = append(legal, d)
		}
	}
	if len(legal) == 0 {
		return "", fmt.Errorf("%w: no walkable neighbour of %s", domain.ErrNotFound, tp)
	}
	return legal[iv.rng.IntN(len(legal))], nil
}

// RegularMode reports whether neither the jump nor the chase timer runs.
func (iv *Intervention) RegularMode() bool {
	return iv.game.jumpTimer == 0 && iv.game.chaseTimer == 0
}

// JumpMode reports whether the player is jumping, where enemies cannot kill it.
func (iv *Intervention) JumpMode() bool { return iv.game.jumpTimer > 0 }

// ChaseMode reports whether the player is chasing enemies.
func (iv *Intervention) ChaseMode() bool { return iv.game.chaseTimer > 0 }

// AnyEnemyCaught reports whether some enemy is caught.
func (iv *Intervention) AnyEnemyCaught() bool {
	for _, e := range iv.game.enemies.Items() {
		if e.Caught() {
			return true
		}
	}
	return false
}

// SetMode switches the game mode. For jump and chase a positive duration
// wins; otherwise the engine config (jump_time, chase_time) is used if the
// engine exposes one, then the configured fallback. Regular clears both timers.
func (iv *Intervention) SetMode(ctx context.Context, mode Mode, duration int) error {
	switch mode {
	case ModeJump:
		d, err := iv.modeDuration(ctx, "jump_time", duration, orDefault(iv.jumpTime, DefaultJumpTime))
		if err != nil {
			return err
		}
		return iv.game.SetJumpTimer(d)
	case ModeChase:
		d, err := iv.modeDuration(ctx, "chase_time", duration, orDefault(iv.chaseTime, DefaultChaseTime))
		if err != nil {
			return err
		}
		return iv.game.SetChaseTimer(d)
	case ModeRegular:
		if err := iv.game.SetJumpTimer(0); err != nil {
			return err
		}
		return iv.game.SetChaseTimer(0)
	}
	return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidValue, mode)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (iv *Intervention) modeDuration(ctx context.Context, key string, explicit, fallback int) (int, error) {
	if explicit > 0 {
		return explicit, nil
	}
	cfg, err := iv.session.Config(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read engine config: %w", err)
	}
	if v, ok := toInt(cfg[key]); ok && v > 0 {
		return v, nil
	}
	return fallback, nil
}

// SetEnemyProtocol changes the movement protocol of enemy i.
func (iv *Intervention) SetEnemyProtocol(i int, p Protocol, args entity.Args) error {
	e, err := iv.game.enemies.At(i)
	if err != nil {
		return err
	}
	return e.SetProtocol(p, args)
}

// SetTileTag retags the tile at tp.
func (iv *Intervention) SetTileTag(tp TilePoint, tag TileTag) error {
	tile, err := iv.TileAt(tp.TX, tp.TY)
	if err != nil {
		return err
	}
	return tile.SetTag(tag)
}

// IsTileWalkable reports whether mobs may stand on tile.
func (iv *Intervention) IsTileWalkable(tile *Tile) bool { return tile.Walkable() }

// NumEnemies returns the number of enemies.
func (iv *Intervention) NumEnemies() int { return iv.game.enemies.Len() }

// RemoveEnemy removes enemy i.
func (iv *Intervention) RemoveEnemy(i int) error { return iv.game.enemies.RemoveAt(i) }

// SetLives sets the remaining lives.
func (iv *Intervention) SetLives(n int) error { return iv.game.SetLives(n) }

// Score returns the current score.
func (iv *Intervention) Score() int { return iv.game.Score() }

// JumpsRemaining returns the jumps left.
func (iv *Intervention) JumpsRemaining() int { return iv.game.jumps }

// CountTiles counts the tiles carrying tag.
func (iv *Intervention) CountTiles(tag TileTag) int {
	n := 0
	for _, tile := range iv.game.board.All() {
		if tile.Tag() == tag {
			n++
		}
	}
	return n
}

// PaintedTiles counts painted tiles.
func (iv *Intervention) PaintedTiles() int { return iv.CountTiles(Painted) }

// UnpaintedTiles counts unpainted tiles.
func (iv *Intervention) UnpaintedTiles() int { return iv.CountTiles(Unpainted) }

// pointPair reads a query result as either {kx, ky} or [x, y].
func pointPair(v any, kx, ky string) (int, int, error) {
	switch p := v.(type) {
	case map[string]any:
		x, okx := toInt(p[kx])
		y, oky := toInt(p[ky])
		if okx && oky {
			return x, y, nil
		}
	case []any:
		if len(p) == 2 {
			x, okx := toInt(p[0])
			y, oky := toInt(p[1])
			if okx && oky {
				return x, y, nil
			}
		}
	case []int:
		if len(p) == 2 {
			return p[0], p[1], nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unexpected query result %v", domain.ErrSchemaMismatch, v)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
