package amidar

import (
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

// TileTag is the paint state of a maze cell.
type TileTag string

const (
	Empty       TileTag = "Empty"
	Unpainted   TileTag = "Unpainted"
	Painted     TileTag = "Painted"
	ChaseMarker TileTag = "ChaseMarker"
)

// TileTags lists every tag.
var TileTags = []TileTag{Empty, Unpainted, Painted, ChaseMarker}

var tileTagType = schema.Enum("Tile", string(Empty), string(Unpainted), string(Painted), string(ChaseMarker))

var tileFields = entity.Declare("Tile").Equality("tag")

// Tile is one maze cell. It is encoded as its bare tag string.
type Tile struct {
	entity.Base
	tag TileTag
}

// TileRow is one fixed-length row of the board.
type TileRow = entity.Collection[*Tile]

// TileGrid is the fixed-shape board of rows.
type TileGrid = entity.Collection[*TileRow]

// DecodeTile reads a tag string.
func DecodeTile(t *entity.Tracker, raw any) (*Tile, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, &entity.SchemaError{Entity: "Tile", Err: fmt.Errorf("expected tag string, got %T", raw)}
	}
	if err := tileTagType.Validate(s); err != nil {
		return nil, &entity.SchemaError{Entity: "Tile", Err: err}
	}
	tile := &Tile{Base: entity.NewBase(tileFields, t), tag: TileTag(s)}
	tile.Seal()
	return tile, nil
}

func decodeTileRow(t *entity.Tracker, raw any) (*TileRow, error) {
	return entity.DecodeCollection(t, "TileRow", raw, entity.Fixed, DecodeTile)
}

func decodeTileGrid(t *entity.Tracker, raw any) (*TileGrid, error) {
	return entity.DecodeCollection(t, "TileGrid", raw, entity.Fixed, decodeTileRow)
}

// Tag returns the tile's paint state.
func (t *Tile) Tag() TileTag { return t.tag }

// SetTag changes the paint state.
func (t *Tile) SetTag(tag TileTag) error {
	if err := tileTagType.Validate(tag); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
	}
	return t.Mutate("tag", func() { t.tag = tag })
}

// Walkable reports whether the tile is part of the track.
func (t *Tile) Walkable() bool { return t.tag != Empty }

// Encode returns the tag string.
func (t *Tile) Encode() (any, error) { return string(t.tag), nil }

// Equal compares tags.
func (t *Tile) Equal(other *Tile) bool {
	return other != nil && t.tag == other.tag
}

func (t *Tile) String() string { return string(t.tag) }
