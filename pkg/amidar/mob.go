package amidar

import (
	"reflect"
	"slices"

	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

var mobFields = entity.Declare("Mob").
	Expect("history", schema.List(schema.Int())).
	Expect("step", schema.Any()).
	Expect("position", schema.Object()).
	Expect("caught", schema.Bool()).
	Expect("speed", schema.Int()).
	Expect("ai", schema.Any()).
	Equality("history", "step", "position", "caught", "speed", "ai")

var (
	enemyFields  = mobFields.Extend("Enemy").Immutable("ai")
	playerFields = mobFields.Extend("Player")
)

// mob holds the fields shared by enemies and the player.
type mob struct {
	entity.Base
	history  []int
	step     any
	position WorldPoint
	caught   bool
	speed    int
}

type mobWire struct {
	History []int `mapstructure:"history"`
	Step    any   `mapstructure:"step"`
	Caught  bool  `mapstructure:"caught"`
	Speed   int   `mapstructure:"speed"`
}

func decodeMob(fields *schema.Fields, t *entity.Tracker, raw any) (mob, map[string]any, error) {
	m, err := entity.Object(fields, raw)
	if err != nil {
		return mob{}, nil, err
	}
	pos, err := DecodeWorldPoint(m["position"])
	if err != nil {
		return mob{}, nil, entity.WithPath(err, "position")
	}

	var w mobWire
	if err := entity.DecodeFragment(fields, m, &w); err != nil {
		return mob{}, nil, err
	}
	if w.History == nil {
		w.History = []int{}
	}
	return mob{
		Base:     entity.NewBase(fields, t),
		history:  w.History,
		step:     w.Step,
		position: pos,
		caught:   w.Caught,
		speed:    w.Speed,
	}, m, nil
}

// History returns a copy of the recent junction history.
func (m *mob) History() []int { return slices.Clone(m.history) }

// Step returns the engine's in-progress movement step, or nil.
func (m *mob) Step() any { return m.step }

// Position returns the screen position.
func (m *mob) Position() WorldPoint { return m.position }

// Caught reports whether the mob has been caught.
func (m *mob) Caught() bool { return m.caught }

// Speed returns the movement speed.
func (m *mob) Speed() int { return m.speed }

// SetHistory replaces the junction history.
func (m *mob) SetHistory(h []int) error {
	return m.Mutate("history", func() { m.history = slices.Clone(h) })
}

// SetStep replaces the movement step. Pass nil to clear it.
func (m *mob) SetStep(step any) error {
	return m.Mutate("step", func() { m.step = step })
}

// SetPosition moves the mob.
func (m *mob) SetPosition(p WorldPoint) error {
	return m.Mutate("position", func() { m.position = p })
}

// SetCaught flags the mob as caught or free.
func (m *mob) SetCaught(v bool) error {
	return m.Mutate("caught", func() { m.caught = v })
}

// SetSpeed changes the movement speed.
func (m *mob) SetSpeed(v int) error {
	return m.Mutate("speed", func() { m.speed = v })
}

func (m *mob) encodeInto(out map[string]any) {
	out["history"] = slices.Clone(m.history)
	out["step"] = m.step
	out["position"] = m.position.Encode()
	out["caught"] = m.caught
	out["speed"] = m.speed
}

func (m *mob) equalMob(other *mob) bool {
	return slices.Equal(m.history, other.history) &&
		reflect.DeepEqual(m.step, other.step) &&
		m.position == other.position &&
		m.caught == other.caught &&
		m.speed == other.speed
}

// Enemy is one of the maze's pursuers.
type Enemy struct {
	mob
	ai *MovementAI
}

// EnemyCollection is the game's enemy list.
type EnemyCollection = entity.Collection[*Enemy]

// DecodeEnemy reads an enemy fragment.
func DecodeEnemy(t *entity.Tracker, raw any) (*Enemy, error) {
	base, m, err := decodeMob(enemyFields, t, raw)
	if err != nil {
		return nil, err
	}
	ai, err := DecodeMovementAI(t, m["ai"])
	if err != nil {
		return nil, entity.WithPath(err, "ai")
	}

	e := &Enemy{mob: base}
	if err := e.SetAI(ai); err != nil {
		return nil, err
	}
	e.Seal()
	return e, nil
}

func decodeEnemies(t *entity.Tracker, raw any) (*EnemyCollection, error) {
	return entity.DecodeCollection(t, "EnemyCollection", raw, entity.Variable, DecodeEnemy)
}

// AI returns the enemy's movement strategy.
func (e *Enemy) AI() *MovementAI { return e.ai }

// SetAI installs the movement strategy. Only possible while decoding;
// afterwards use SetProtocol.
func (e *Enemy) SetAI(ai *MovementAI) error {
	return e.Mutate("ai", func() { e.ai = ai })
}

// SetProtocol switches the enemy's movement protocol.
func (e *Enemy) SetProtocol(p Protocol, args entity.Args) error {
	return e.ai.SetProtocol(p, args)
}

// Clone decodes a copy of the enemy into the same session.
// The copy is not a member of any collection until appended.
func (e *Enemy) Clone() (*Enemy, error) {
	frag, err := e.Encode()
	if err != nil {
		return nil, err
	}
	return DecodeEnemy(e.Tracker(), frag)
}

// Encode returns the enemy fragment.
func (e *Enemy) Encode() (any, error) {
	out := make(map[string]any, 6)
	e.encodeInto(out)
	ai, err := e.ai.Encode()
	if err != nil {
		return nil, err
	}
	out["ai"] = ai
	return out, nil
}

// Equal compares every field, including the movement protocol.
func (e *Enemy) Equal(other *Enemy) bool {
	return other != nil && e.equalMob(&other.mob) && e.ai.Equal(other.ai)
}

// Player is the painter. Its ai fragment is carried through untouched.
type Player struct {
	mob
	ai any
}

// DecodePlayer reads the player fragment.
func DecodePlayer(t *entity.Tracker, raw any) (*Player, error) {
	base, m, err := decodeMob(playerFields, t, raw)
	if err != nil {
		return nil, err
	}
	p := &Player{mob: base, ai: m["ai"]}
	p.Seal()
	return p, nil
}

// AI returns the raw ai fragment.
func (p *Player) AI() any { return p.ai }

// SetAI replaces the raw ai fragment.
func (p *Player) SetAI(ai any) error {
	return p.Mutate("ai", func() { p.ai = ai })
}

// Encode returns the player fragment.
func (p *Player) Encode() (any, error) {
	out := make(map[string]any, 6)
	p.encodeInto(out)
	out["ai"] = p.ai
	return out, nil
}

// Equal compares every field.
func (p *Player) Equal(other *Player) bool {
	return other != nil && p.equalMob(&other.mob) && reflect.DeepEqual(p.ai, other.ai)
}
