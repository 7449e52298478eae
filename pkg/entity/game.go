package entity

import (
	"reflect"

	"github.com/KDL-umass/Toybox/pkg/schema"
)

// GameFields declares the keys every game root carries.
// rand is the engine's opaque RNG state; it round-trips verbatim and is not compared.
var GameFields = Declare("Game").
	Expect("score", schema.Int()).
	Expect("lives", schema.Int()).
	Expect("rand", schema.Any()).
	Expect("level", schema.Int()).
	Equality("score", "lives", "level")

// GameBase holds the fields shared by game roots. It is embedded by a
// concrete game together with an extended declaration of GameFields.
type GameBase struct {
	Base
	score int
	lives int
	level int
	rand  any
}

type gameWire struct {
	Score int `mapstructure:"score"`
	Lives int `mapstructure:"lives"`
	Level int `mapstructure:"level"`
	Rand  any `mapstructure:"rand"`
}

// DecodeGameBase fills the shared game fields from a checked fragment.
// The returned value is still in its construction phase.
func DecodeGameBase(fields *schema.Fields, t *Tracker, m map[string]any) (GameBase, error) {
	var w gameWire
	if err := DecodeFragment(fields, m, &w); err != nil {
		return GameBase{}, err
	}
	return GameBase{
		Base:  NewBase(fields, t),
		score: w.Score,
		lives: w.Lives,
		level: w.Level,
		rand:  w.Rand,
	}, nil
}

// Score returns the current score.
func (g *GameBase) Score() int { return g.score }

// Lives returns the remaining lives.
func (g *GameBase) Lives() int { return g.lives }

// Level returns the current level.
func (g *GameBase) Level() int { return g.level }

// Rand returns the engine RNG state as decoded.
func (g *GameBase) Rand() any { return g.rand }

// SetScore replaces the score.
func (g *GameBase) SetScore(v int) error {
	return g.Mutate("score", func() { g.score = v })
}

// SetLives replaces the remaining lives.
func (g *GameBase) SetLives(v int) error {
	return g.Mutate("lives", func() { g.lives = v })
}

// SetLevel replaces the level.
func (g *GameBase) SetLevel(v int) error {
	return g.Mutate("level", func() { g.level = v })
}

// EncodeInto writes the shared fields into a root fragment.
func (g *GameBase) EncodeInto(out map[string]any) {
	out["score"] = g.score
	out["lives"] = g.lives
	out["level"] = g.level
	out["rand"] = g.rand
}

// EqualBase compares the shared equality keys.
func (g *GameBase) EqualBase(other *GameBase) bool {
	return g.score == other.score && g.lives == other.lives && g.level == other.level
}

// SameRand reports whether both games carry the same RNG state.
func (g *GameBase) SameRand(other *GameBase) bool {
	return reflect.DeepEqual(g.rand, other.rand)
}
