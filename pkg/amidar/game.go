package amidar

import (
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
	"github.com/KDL-umass/Toybox/pkg/session"
)

// GameName is the engine identity of Amidar.
const GameName = "amidar"

var gameFields = entity.GameFields.Extend("Amidar").
	Expect("enemies", schema.List(schema.Object())).
	Expect("player", schema.Object()).
	Expect("jumps", schema.Int()).
	Expect("jump_timer", schema.Int()).
	Expect("chase_timer", schema.Int()).
	Expect("board", schema.Object()).
	Immutable("enemies").
	Equality("score", "lives", "level", "enemies", "jumps", "jump_timer", "chase_timer", "board", "player")

// Schemas lists the field declarations of every Amidar entity.
func Schemas() []*schema.Fields {
	return []*schema.Fields{
		gameFields, boardFields, tileFields, boxFields,
		enemyFields, playerFields, movementFields,
		worldPointFields, tilePointFields,
	}
}

// Game is the root of the Amidar entity graph.
type Game struct {
	entity.GameBase
	enemies    *EnemyCollection
	player     *Player
	board      *Board
	jumps      int
	jumpTimer  int
	chaseTimer int
}

type amidarWire struct {
	Jumps      int `mapstructure:"jumps"`
	JumpTimer  int `mapstructure:"jump_timer"`
	ChaseTimer int `mapstructure:"chase_timer"`
}

// Model binds the Amidar graph to a session.
var Model = session.Model[*Game]{
	Name:   GameName,
	Decode: Decode,
	Encode: func(g *Game) (domain.Snapshot, error) { return g.Snapshot() },
}

// Decode builds the whole graph from a snapshot. On failure no graph is returned.
func Decode(t *entity.Tracker, snap domain.Snapshot) (*Game, error) {
	m, err := entity.Object(gameFields, map[string]any(snap))
	if err != nil {
		return nil, err
	}
	base, err := entity.DecodeGameBase(gameFields, t, m)
	if err != nil {
		return nil, err
	}
	var w amidarWire
	if err := entity.DecodeFragment(gameFields, m, &w); err != nil {
		return nil, err
	}

	enemies, err := decodeEnemies(t, m["enemies"])
	if err != nil {
		return nil, entity.WithPath(err, "enemies")
	}
	player, err := DecodePlayer(t, m["player"])
	if err != nil {
		return nil, entity.WithPath(err, "player")
	}
	board, err := DecodeBoard(t, m["board"])
	if err != nil {
		return nil, entity.WithPath(err, "board")
	}

	g := &Game{
		GameBase:   base,
		player:     player,
		board:      board,
		jumps:      w.Jumps,
		jumpTimer:  w.JumpTimer,
		chaseTimer: w.ChaseTimer,
	}
	if err := g.SetEnemies(enemies); err != nil {
		return nil, err
	}
	g.Seal()
	return g, nil
}

// Enemies returns the enemy collection. Edit it in place; it cannot be replaced.
func (g *Game) Enemies() *EnemyCollection { return g.enemies }

// Player returns the player.
func (g *Game) Player() *Player { return g.player }

// Board returns the board.
func (g *Game) Board() *Board { return g.board }

// Jumps returns the remaining jumps.
func (g *Game) Jumps() int { return g.jumps }

// JumpTimer returns the frames left in jump mode.
func (g *Game) JumpTimer() int { return g.jumpTimer }

// ChaseTimer returns the frames left in chase mode.
func (g *Game) ChaseTimer() int { return g.chaseTimer }

// SetEnemies installs the enemy collection. Only possible while decoding.
func (g *Game) SetEnemies(enemies *EnemyCollection) error {
	return g.Mutate("enemies", func() { g.enemies = enemies })
}

// SetJumps changes the remaining jumps.
func (g *Game) SetJumps(v int) error {
	return g.Mutate("jumps", func() { g.jumps = v })
}

// SetJumpTimer changes the frames left in jump mode.
func (g *Game) SetJumpTimer(v int) error {
	return g.Mutate("jump_timer", func() { g.jumpTimer = v })
}

// SetChaseTimer changes the frames left in chase mode.
func (g *Game) SetChaseTimer(v int) error {
	return g.Mutate("chase_timer", func() { g.chaseTimer = v })
}

// Encode returns the root fragment.
func (g *Game) Encode() (any, error) {
	snap, err := g.Snapshot()
	if err != nil {
		return nil, err
	}
	return map[string]any(snap), nil
}

// Snapshot encodes the whole graph.
func (g *Game) Snapshot() (domain.Snapshot, error) {
	out := make(map[string]any, 10)
	g.EncodeInto(out)

	enemies, err := g.enemies.Encode()
	if err != nil {
		return nil, fmt.Errorf("enemies: %w", err)
	}
	player, err := g.player.Encode()
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	board, err := g.board.Encode()
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}

	out["enemies"] = enemies
	out["player"] = player
	out["board"] = board
	out["jumps"] = g.jumps
	out["jump_timer"] = g.jumpTimer
	out["chase_timer"] = g.chaseTimer
	return domain.Snapshot(out), nil
}

// Equal compares the equality keys recursively. The RNG state is ignored.
func (g *Game) Equal(other *Game) bool {
	return other != nil &&
		g.EqualBase(&other.GameBase) &&
		g.jumps == other.jumps &&
		g.jumpTimer == other.jumpTimer &&
		g.chaseTimer == other.chaseTimer &&
		g.enemies.Equal(other.enemies) &&
		g.player.Equal(other.player) &&
		g.board.Equal(other.board)
}
