package amidar

import (
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

var worldPointFields = schema.Declare("WorldPoint").
	Expect("x", schema.Int()).
	Expect("y", schema.Int()).
	Equality("x", "y")

var tilePointFields = schema.Declare("TilePoint").
	Expect("tx", schema.Int()).
	Expect("ty", schema.Int()).
	Equality("tx", "ty")

// WorldPoint is a position in screen space.
type WorldPoint struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// DecodeWorldPoint reads a {x, y} fragment.
func DecodeWorldPoint(raw any) (WorldPoint, error) {
	var p WorldPoint
	_, err := entity.Decode(worldPointFields, raw, &p)
	return p, err
}

// Encode returns the {x, y} fragment.
func (p WorldPoint) Encode() map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

func (p WorldPoint) String() string {
	return fmt.Sprintf("WorldPoint {x: %d, y: %d}", p.X, p.Y)
}

// TilePoint is a position in tile space: column TX, row TY.
type TilePoint struct {
	TX int `mapstructure:"tx"`
	TY int `mapstructure:"ty"`
}

// DecodeTilePoint reads a {tx, ty} fragment.
func DecodeTilePoint(raw any) (TilePoint, error) {
	var p TilePoint
	_, err := entity.Decode(tilePointFields, raw, &p)
	return p, err
}

// Encode returns the {tx, ty} fragment.
func (p TilePoint) Encode() map[string]any {
	return map[string]any{"tx": p.TX, "ty": p.TY}
}

// Manhattan returns the taxicab distance to q.
func (p TilePoint) Manhattan(q TilePoint) int {
	return abs(p.TX-q.TX) + abs(p.TY-q.TY)
}

// Step returns the neighbouring tile point in direction d.
func (p TilePoint) Step(d Direction) TilePoint {
	switch d {
	case Up:
		p.TY--
	case Down:
		p.TY++
	case Left:
		p.TX--
	case Right:
		p.TX++
	}
	return p
}

func (p TilePoint) String() string {
	return fmt.Sprintf("TilePoint {tx: %d, ty: %d}", p.TX, p.TY)
}

// Direction is a movement direction.
type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

// Directions lists every direction.
var Directions = []Direction{Up, Down, Left, Right}

var directionType = schema.Enum("Direction", string(Up), string(Down), string(Left), string(Right))

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	if err := directionType.Validate(s); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
	}
	return Direction(s), nil
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return directionType.Validate(d) == nil
}

// directionParam accepts Direction values only. Plain strings are rejected.
var directionParam = schema.Custom("Direction", func(v any) error {
	d, ok := v.(Direction)
	if !ok {
		return fmt.Errorf("expected Direction, got %T", v)
	}
	return directionType.Validate(string(d))
})

// tilePointType accepts TilePoint values and non-nil pointers to them.
var tilePointType = schema.Custom("TilePoint", func(v any) error {
	switch p := v.(type) {
	case TilePoint:
		return nil
	case *TilePoint:
		if p != nil {
			return nil
		}
	}
	return fmt.Errorf("expected TilePoint, got %T", v)
})

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
