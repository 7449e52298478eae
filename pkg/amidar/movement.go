package amidar

import (
	"fmt"
	"reflect"

	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

// Protocol names an enemy movement strategy.
type Protocol string

const (
	LookupAI     Protocol = "EnemyLookupAI"
	PerimeterAI  Protocol = "EnemyPerimeterAI"
	AmidarMvmt   Protocol = "EnemyAmidarMvmt"
	TargetPlayer Protocol = "EnemyTargetPlayer"
	RandomMvmt   Protocol = "EnemyRandomMvmt"
)

// Protocols lists every movement protocol.
var Protocols = []Protocol{LookupAI, PerimeterAI, AmidarMvmt, TargetPlayer, RandomMvmt}

var movementSpec = entity.NewVariantSpec("MovementAI").
	Tag(string(LookupAI),
		entity.Param{Name: "next", Type: schema.StrictInt()},
		entity.Param{Name: "default_route_index", Type: schema.StrictInt()},
	).
	Tag(string(PerimeterAI),
		entity.Param{Name: "start", Type: tilePointType},
	).
	Tag(string(AmidarMvmt),
		entity.Param{Name: "vert", Type: directionParam},
		entity.Param{Name: "horiz", Type: directionParam},
		entity.Param{Name: "start_vert", Type: directionParam},
		entity.Param{Name: "start_horiz", Type: directionParam},
		entity.Param{Name: "start", Type: tilePointType},
	).
	Tag(string(TargetPlayer),
		entity.Param{Name: "start", Type: tilePointType},
		entity.Param{Name: "start_dir", Type: directionParam},
		entity.Param{Name: "vision_distance", Type: schema.StrictInt()},
		entity.Param{Name: "dir", Type: directionParam},
		entity.Param{Name: "player_seen", Type: tilePointType, Optional: true},
	).
	Tag(string(RandomMvmt),
		entity.Param{Name: "start", Type: tilePointType},
		entity.Param{Name: "start_dir", Type: directionParam},
		entity.Param{Name: "dir", Type: directionParam},
	)

var movementFields = entity.Declare("MovementAI").Equality("protocol", "params")

// Movement is the closed set of movement protocols. Each implementation
// carries exactly the parameters of its protocol.
type Movement interface {
	Protocol() Protocol
	// Args returns the parameters keyed by their snapshot names.
	Args() entity.Args
	isMovement()
}

// LookupMovement follows a precomputed route.
type LookupMovement struct {
	Next              int `mapstructure:"next"`
	DefaultRouteIndex int `mapstructure:"default_route_index"`
}

// PerimeterMovement circles the board edge.
type PerimeterMovement struct {
	Start TilePoint `mapstructure:"start"`
}

// AmidarMovement is the arcade's own zig-zag movement.
type AmidarMovement struct {
	Vert       Direction `mapstructure:"vert"`
	Horiz      Direction `mapstructure:"horiz"`
	StartVert  Direction `mapstructure:"start_vert"`
	StartHoriz Direction `mapstructure:"start_horiz"`
	Start      TilePoint `mapstructure:"start"`
}

// TargetPlayerMovement chases the player once seen.
type TargetPlayerMovement struct {
	Start          TilePoint  `mapstructure:"start"`
	StartDir       Direction  `mapstructure:"start_dir"`
	VisionDistance int        `mapstructure:"vision_distance"`
	Dir            Direction  `mapstructure:"dir"`
	PlayerSeen     *TilePoint `mapstructure:"player_seen"`
}

// RandomMovement picks a random direction at junctions.
type RandomMovement struct {
	Start    TilePoint `mapstructure:"start"`
	StartDir Direction `mapstructure:"start_dir"`
	Dir      Direction `mapstructure:"dir"`
}

func (LookupMovement) Protocol() Protocol       { return LookupAI }
func (PerimeterMovement) Protocol() Protocol    { return PerimeterAI }
func (AmidarMovement) Protocol() Protocol       { return AmidarMvmt }
func (TargetPlayerMovement) Protocol() Protocol { return TargetPlayer }
func (RandomMovement) Protocol() Protocol       { return RandomMvmt }

func (LookupMovement) isMovement()       {}
func (PerimeterMovement) isMovement()    {}
func (AmidarMovement) isMovement()       {}
func (TargetPlayerMovement) isMovement() {}
func (RandomMovement) isMovement()       {}

func (m LookupMovement) Args() entity.Args {
	return entity.Args{"next": m.Next, "default_route_index": m.DefaultRouteIndex}
}

func (m PerimeterMovement) Args() entity.Args {
	return entity.Args{"start": m.Start}
}

func (m AmidarMovement) Args() entity.Args {
	return entity.Args{
		"vert":        m.Vert,
		"horiz":       m.Horiz,
		"start_vert":  m.StartVert,
		"start_horiz": m.StartHoriz,
		"start":       m.Start,
	}
}

func (m TargetPlayerMovement) Args() entity.Args {
	args := entity.Args{
		"start":           m.Start,
		"start_dir":       m.StartDir,
		"vision_distance": m.VisionDistance,
		"dir":             m.Dir,
	}
	if m.PlayerSeen != nil {
		args["player_seen"] = *m.PlayerSeen
	}
	return args
}

func (m RandomMovement) Args() entity.Args {
	return entity.Args{"start": m.Start, "start_dir": m.StartDir, "dir": m.Dir}
}

// ValidateMovement checks a movement value against its protocol declaration.
func ValidateMovement(m Movement) error {
	if m == nil {
		return &entity.ProtocolError{Tag: "<nil>", Reason: "no movement protocol"}
	}
	return movementSpec.Validate(string(m.Protocol()), m.Args())
}

// NewMovement validates args for p and builds the matching movement value.
func NewMovement(p Protocol, args entity.Args) (Movement, error) {
	if err := movementSpec.Validate(string(p), args); err != nil {
		return nil, err
	}

	switch p {
	case LookupAI:
		return LookupMovement{
			Next:              intArg(args, "next"),
			DefaultRouteIndex: intArg(args, "default_route_index"),
		}, nil
	case PerimeterAI:
		return PerimeterMovement{Start: pointArg(args, "start")}, nil
	case AmidarMvmt:
		return AmidarMovement{
			Vert:       dirArg(args, "vert"),
			Horiz:      dirArg(args, "horiz"),
			StartVert:  dirArg(args, "start_vert"),
			StartHoriz: dirArg(args, "start_horiz"),
			Start:      pointArg(args, "start"),
		}, nil
	case TargetPlayer:
		m := TargetPlayerMovement{
			Start:          pointArg(args, "start"),
			StartDir:       dirArg(args, "start_dir"),
			VisionDistance: intArg(args, "vision_distance"),
			Dir:            dirArg(args, "dir"),
		}
		if v, ok := args["player_seen"]; ok && tilePointType.Validate(v) == nil {
			seen := pointArg(args, "player_seen")
			m.PlayerSeen = &seen
		}
		return m, nil
	case RandomMvmt:
		return RandomMovement{
			Start:    pointArg(args, "start"),
			StartDir: dirArg(args, "start_dir"),
			Dir:      dirArg(args, "dir"),
		}, nil
	}
	return nil, &entity.ProtocolError{Tag: string(p), Reason: "unknown MovementAI tag"}
}

// The arg helpers run after validation, so the assertions hold.

func intArg(args entity.Args, name string) int {
	rv := reflect.ValueOf(args[name])
	if rv.CanUint() {
		return int(rv.Uint())
	}
	return int(rv.Int())
}

func pointArg(args entity.Args, name string) TilePoint {
	switch p := args[name].(type) {
	case *TilePoint:
		return *p
	default:
		return p.(TilePoint)
	}
}

func dirArg(args entity.Args, name string) Direction {
	return args[name].(Direction)
}

// encodeArgs turns typed parameters into their snapshot form.
func encodeArgs(args entity.Args) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch p := v.(type) {
		case TilePoint:
			out[k] = p.Encode()
		case Direction:
			out[k] = string(p)
		default:
			out[k] = v
		}
	}
	return out
}

// MovementAI is an enemy's movement strategy: one protocol tag and its parameters.
type MovementAI struct {
	entity.Base
	movement Movement
}

// DecodeMovementAI reads a {protocol: {params}} fragment.
func DecodeMovementAI(t *entity.Tracker, raw any) (*MovementAI, error) {
	tag, params, err := movementSpec.Split(raw)
	if err != nil {
		return nil, err
	}

	var m Movement
	switch Protocol(tag) {
	case LookupAI:
		m, err = decodeMovement[LookupMovement](params)
	case PerimeterAI:
		m, err = decodeMovement[PerimeterMovement](params)
	case AmidarMvmt:
		m, err = decodeMovement[AmidarMovement](params)
	case TargetPlayer:
		m, err = decodeMovement[TargetPlayerMovement](params)
	case RandomMvmt:
		m, err = decodeMovement[RandomMovement](params)
	}
	if err != nil {
		return nil, entity.WithPath(err, tag)
	}
	if err := ValidateMovement(m); err != nil {
		return nil, &entity.SchemaError{Entity: "MovementAI", Path: tag, Err: err}
	}

	ai := &MovementAI{Base: entity.NewBase(movementFields, t), movement: m}
	ai.Seal()
	return ai, nil
}

func decodeMovement[M Movement](params map[string]any) (Movement, error) {
	var m M
	if err := entity.DecodeFragment(movementFields, params, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Protocol returns the active protocol tag.
func (ai *MovementAI) Protocol() Protocol { return ai.movement.Protocol() }

// Movement returns the active protocol with its parameters.
func (ai *MovementAI) Movement() Movement { return ai.movement }

// Arg returns one parameter of the active protocol.
func (ai *MovementAI) Arg(name string) (any, bool) {
	v, ok := ai.movement.Args()[name]
	return v, ok
}

// SetProtocol switches to protocol p with args. The call is atomic: on any
// validation failure the previous protocol and parameters stay in place.
func (ai *MovementAI) SetProtocol(p Protocol, args entity.Args) error {
	m, err := NewMovement(p, args)
	if err != nil {
		return err
	}
	return ai.Mutate("protocol", func() { ai.movement = m })
}

// SetMovement is SetProtocol for an already typed movement value.
func (ai *MovementAI) SetMovement(m Movement) error {
	if err := ValidateMovement(m); err != nil {
		return err
	}
	return ai.Mutate("protocol", func() { ai.movement = m })
}

// Encode returns the {protocol: {params}} fragment with only the active
// protocol's non-null parameters.
func (ai *MovementAI) Encode() (any, error) {
	if ai.movement == nil {
		return nil, fmt.Errorf("MovementAI has no protocol")
	}
	return entity.Tagged(string(ai.movement.Protocol()), encodeArgs(ai.movement.Args())), nil
}

// Equal compares protocol and parameters.
func (ai *MovementAI) Equal(other *MovementAI) bool {
	return other != nil && reflect.DeepEqual(ai.movement, other.movement)
}
