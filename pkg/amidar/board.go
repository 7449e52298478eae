package amidar

import (
	"fmt"
	"iter"
	"slices"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

var boardFields = entity.Declare("Board").
	Expect("boxes", schema.List(schema.Object())).
	Expect("tiles", schema.List(schema.List(schema.String()))).
	Expect("height", schema.Int()).
	Expect("chase_junctions", schema.List(schema.Int())).
	Expect("width", schema.Int()).
	Expect("junctions", schema.List(schema.Int())).
	Immutable("boxes", "tiles").
	Equality("boxes", "tiles", "height", "chase_junctions", "width", "junctions")

// Board is the maze: a fixed grid of tiles plus the boxes they enclose.
type Board struct {
	entity.Base
	boxes          *BoxCollection
	tiles          *TileGrid
	width          int
	height         int
	junctions      []int
	chaseJunctions []int
}

type boardWire struct {
	Width          int   `mapstructure:"width"`
	Height         int   `mapstructure:"height"`
	Junctions      []int `mapstructure:"junctions"`
	ChaseJunctions []int `mapstructure:"chase_junctions"`
}

// DecodeBoard reads the board fragment.
func DecodeBoard(t *entity.Tracker, raw any) (*Board, error) {
	var w boardWire
	m, err := entity.Decode(boardFields, raw, &w)
	if err != nil {
		return nil, err
	}
	boxes, err := decodeBoxes(t, m["boxes"])
	if err != nil {
		return nil, entity.WithPath(err, "boxes")
	}
	tiles, err := decodeTileGrid(t, m["tiles"])
	if err != nil {
		return nil, entity.WithPath(err, "tiles")
	}

	b := &Board{
		Base:           entity.NewBase(boardFields, t),
		width:          w.Width,
		height:         w.Height,
		junctions:      nonNil(w.Junctions),
		chaseJunctions: nonNil(w.ChaseJunctions),
	}
	if err := b.SetBoxes(boxes); err != nil {
		return nil, err
	}
	if err := b.SetTiles(tiles); err != nil {
		return nil, err
	}
	b.Seal()
	return b, nil
}

// Boxes returns the box collection.
func (b *Board) Boxes() *BoxCollection { return b.boxes }

// Tiles returns the tile grid, indexed by row then column.
func (b *Board) Tiles() *TileGrid { return b.tiles }

// Width returns the declared column count.
func (b *Board) Width() int { return b.width }

// Height returns the declared row count.
func (b *Board) Height() int { return b.height }

// Junctions returns a copy of the junction IDs.
func (b *Board) Junctions() []int { return slices.Clone(b.junctions) }

// ChaseJunctions returns a copy of the chase junction IDs.
func (b *Board) ChaseJunctions() []int { return slices.Clone(b.chaseJunctions) }

// SetBoxes installs the box collection. Only possible while decoding.
func (b *Board) SetBoxes(boxes *BoxCollection) error {
	return b.Mutate("boxes", func() { b.boxes = boxes })
}

// SetTiles installs the tile grid. Only possible while decoding.
func (b *Board) SetTiles(tiles *TileGrid) error {
	return b.Mutate("tiles", func() { b.tiles = tiles })
}

// SetJunctions replaces the junction IDs.
func (b *Board) SetJunctions(ids []int) error {
	return b.Mutate("junctions", func() { b.junctions = slices.Clone(ids) })
}

// SetChaseJunctions replaces the chase junction IDs.
func (b *Board) SetChaseJunctions(ids []int) error {
	return b.Mutate("chase_junctions", func() { b.chaseJunctions = slices.Clone(ids) })
}

// Tile returns the tile at column tx, row ty.
func (b *Board) Tile(tx, ty int) (*Tile, error) {
	row, err := b.tiles.At(ty)
	if err != nil {
		return nil, fmt.Errorf("%w: no tile at (%d, %d)", domain.ErrNotFound, tx, ty)
	}
	tile, err := row.At(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: no tile at (%d, %d)", domain.ErrNotFound, tx, ty)
	}
	return tile, nil
}

// InBounds reports whether p addresses a tile.
func (b *Board) InBounds(p TilePoint) bool {
	_, err := b.Tile(p.TX, p.TY)
	return err == nil
}

// All iterates over every tile in row-major order with its position.
func (b *Board) All() iter.Seq2[TilePoint, *Tile] {
	return func(yield func(TilePoint, *Tile) bool) {
		for ty, row := range b.tiles.Items() {
			for tx, tile := range row.Items() {
				if !yield(TilePoint{TX: tx, TY: ty}, tile) {
					return
				}
			}
		}
	}
}

// Locate returns the position of tile, matched by identity.
func (b *Board) Locate(tile *Tile) (TilePoint, error) {
	for p, t := range b.All() {
		if t == tile {
			return p, nil
		}
	}
	return TilePoint{}, fmt.Errorf("%w: tile is not on the board", domain.ErrNotFound)
}

// Encode returns the board fragment.
func (b *Board) Encode() (any, error) {
	boxes, err := b.boxes.Encode()
	if err != nil {
		return nil, err
	}
	tiles, err := b.tiles.Encode()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"boxes":           boxes,
		"tiles":           tiles,
		"width":           b.width,
		"height":          b.height,
		"junctions":       slices.Clone(b.junctions),
		"chase_junctions": slices.Clone(b.chaseJunctions),
	}, nil
}

// Equal compares every field, tiles and boxes element-wise.
func (b *Board) Equal(other *Board) bool {
	return other != nil &&
		b.width == other.width &&
		b.height == other.height &&
		slices.Equal(b.junctions, other.junctions) &&
		slices.Equal(b.chaseJunctions, other.chaseJunctions) &&
		b.boxes.Equal(other.boxes) &&
		b.tiles.Equal(other.tiles)
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
