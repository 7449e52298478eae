package amidar

import (
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

var boxFields = entity.Declare("Box").
	Expect("triggers_chase", schema.Bool()).
	Expect("top_left", schema.Object()).
	Expect("bottom_right", schema.Object()).
	Expect("painted", schema.Bool()).
	Equality("triggers_chase", "top_left", "bottom_right", "painted")

// Box is a rectangular region of the maze that fills in once its border is painted.
type Box struct {
	entity.Base
	triggersChase bool
	topLeft       TilePoint
	bottomRight   TilePoint
	painted       bool
}

// BoxCollection holds the board's boxes.
type BoxCollection = entity.Collection[*Box]

type boxWire struct {
	TriggersChase bool      `mapstructure:"triggers_chase"`
	TopLeft       TilePoint `mapstructure:"top_left"`
	BottomRight   TilePoint `mapstructure:"bottom_right"`
	Painted       bool      `mapstructure:"painted"`
}

// DecodeBox reads a box fragment.
func DecodeBox(t *entity.Tracker, raw any) (*Box, error) {
	m, err := entity.Object(boxFields, raw)
	if err != nil {
		return nil, err
	}
	for _, corner := range []string{"top_left", "bottom_right"} {
		if _, err := DecodeTilePoint(m[corner]); err != nil {
			return nil, entity.WithPath(err, corner)
		}
	}

	var w boxWire
	if err := entity.DecodeFragment(boxFields, m, &w); err != nil {
		return nil, err
	}
	b := &Box{
		Base:          entity.NewBase(boxFields, t),
		triggersChase: w.TriggersChase,
		topLeft:       w.TopLeft,
		bottomRight:   w.BottomRight,
		painted:       w.Painted,
	}
	b.Seal()
	return b, nil
}

func decodeBoxes(t *entity.Tracker, raw any) (*BoxCollection, error) {
	return entity.DecodeCollection(t, "BoxCollection", raw, entity.Variable, DecodeBox)
}

// TriggersChase reports whether filling this box starts chase mode.
func (b *Box) TriggersChase() bool { return b.triggersChase }

// TopLeft returns the upper-left corner.
func (b *Box) TopLeft() TilePoint { return b.topLeft }

// BottomRight returns the lower-right corner.
func (b *Box) BottomRight() TilePoint { return b.bottomRight }

// Painted reports whether the box is filled.
func (b *Box) Painted() bool { return b.painted }

// Contains reports whether p lies inside the box, borders included.
func (b *Box) Contains(p TilePoint) bool {
	return p.TX >= b.topLeft.TX && p.TX <= b.bottomRight.TX &&
		p.TY >= b.topLeft.TY && p.TY <= b.bottomRight.TY
}

// SetTriggersChase changes whether the box starts chase mode.
func (b *Box) SetTriggersChase(v bool) error {
	return b.Mutate("triggers_chase", func() { b.triggersChase = v })
}

// SetTopLeft moves the upper-left corner.
func (b *Box) SetTopLeft(p TilePoint) error {
	return b.Mutate("top_left", func() { b.topLeft = p })
}

// SetBottomRight moves the lower-right corner.
func (b *Box) SetBottomRight(p TilePoint) error {
	return b.Mutate("bottom_right", func() { b.bottomRight = p })
}

// SetPainted fills or clears the box.
func (b *Box) SetPainted(v bool) error {
	return b.Mutate("painted", func() { b.painted = v })
}

// Encode returns the box fragment.
func (b *Box) Encode() (any, error) {
	return map[string]any{
		"triggers_chase": b.triggersChase,
		"top_left":       b.topLeft.Encode(),
		"bottom_right":   b.bottomRight.Encode(),
		"painted":        b.painted,
	}, nil
}

// Equal compares every field.
func (b *Box) Equal(other *Box) bool {
	return other != nil &&
		b.triggersChase == other.triggersChase &&
		b.topLeft == other.topLeft &&
		b.bottomRight == other.bottomRight &&
		b.painted == other.painted
}
