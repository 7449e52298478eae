package entity

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counterFields = Declare("Counter").
	Expect("value", schema.Int()).
	Expect("label", schema.String()).
	Immutable("label").
	Equality("value", "label")

// counter is a minimal entity used to exercise the building blocks.
type counter struct {
	Base
	value int
	label string
}

func decodeCounter(t *Tracker, raw any) (*counter, error) {
	var w struct {
		Value int    `mapstructure:"value"`
		Label string `mapstructure:"label"`
	}
	if _, err := Decode(counterFields, raw, &w); err != nil {
		return nil, err
	}
	c := &counter{Base: NewBase(counterFields, t)}
	c.value = w.Value
	if err := c.SetLabel(w.Label); err != nil {
		return nil, err
	}
	c.Seal()
	return c, nil
}

func (c *counter) SetValue(v int) error {
	return c.Mutate("value", func() { c.value = v })
}

func (c *counter) SetLabel(v string) error {
	return c.Mutate("label", func() { c.label = v })
}

func (c *counter) Encode() (any, error) {
	return map[string]any{"value": c.value, "label": c.label}, nil
}

func (c *counter) Equal(other *counter) bool {
	return other != nil && c.value == other.value && c.label == other.label
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Dirty())

	require.NoError(t, tr.MarkDirty())
	require.NoError(t, tr.MarkDirty())
	assert.True(t, tr.Dirty())

	tr.Close()
	assert.True(t, tr.Closed())
	assert.ErrorIs(t, tr.MarkDirty(), domain.ErrSessionClosed)
}

func TestBase_ConstructionPhase(t *testing.T) {
	tr := NewTracker()
	c, err := decodeCounter(tr, map[string]any{"value": json.Number("3"), "label": "a"})
	require.NoError(t, err)

	assert.False(t, c.Building())
	assert.False(t, tr.Dirty(), "decoding must not mark the tracker")
	assert.Equal(t, 3, c.value)
	assert.Equal(t, "a", c.label)
}

func TestBase_Mutate(t *testing.T) {
	tr := NewTracker()
	c, err := decodeCounter(tr, map[string]any{"value": 1, "label": "a"})
	require.NoError(t, err)

	t.Run("mutable field marks dirty", func(t *testing.T) {
		require.NoError(t, c.SetValue(2))
		assert.Equal(t, 2, c.value)
		assert.True(t, tr.Dirty())
	})

	t.Run("immutable field fails", func(t *testing.T) {
		err := c.SetLabel("b")
		assert.ErrorIs(t, err, domain.ErrConstructionViolation)
		assert.Equal(t, "a", c.label)

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "Counter", fe.Entity)
		assert.Equal(t, "label", fe.Field)
	})

	t.Run("session and construction flag are frozen", func(t *testing.T) {
		assert.ErrorIs(t, c.SetTracker(NewTracker()), domain.ErrConstructionViolation)
		assert.ErrorIs(t, c.SetTracker(tr), domain.ErrConstructionViolation)
		assert.ErrorIs(t, c.SetBuilding(true), domain.ErrConstructionViolation)
		assert.ErrorIs(t, c.SetBuilding(false), domain.ErrConstructionViolation)
		assert.Same(t, tr, c.Tracker())
	})

	t.Run("closed session rejects mutation", func(t *testing.T) {
		tr.Close()
		err := c.SetValue(9)
		assert.ErrorIs(t, err, domain.ErrSessionClosed)
		assert.Equal(t, 2, c.value)
	})
}

func TestBase_SetBuildingSeals(t *testing.T) {
	b := NewBase(counterFields, NewTracker())
	require.NoError(t, b.SetTracker(NewTracker()))
	require.NoError(t, b.SetBuilding(true))
	assert.True(t, b.Building())
	require.NoError(t, b.SetBuilding(false))
	assert.False(t, b.Building())
}

func TestDeclare_FreezesBaseKeys(t *testing.T) {
	f := Declare("Thing")
	assert.True(t, f.IsImmutable(KeySession))
	assert.True(t, f.IsImmutable(KeyInInit))
}

func TestDecode_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"not an object", []any{1}},
		{"missing key", map[string]any{"value": 1}},
		{"wrong type", map[string]any{"value": "one", "label": "a"}},
		{"fractional number", map[string]any{"value": json.Number("1.5"), "label": "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCounter(NewTracker(), tt.raw)
			assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

			var se *SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestWithPath(t *testing.T) {
	err := WithPath(&SchemaError{Entity: "Tile", Err: assert.AnError}, "[2]")
	err = WithPath(err, "[1]")
	err = WithPath(err, "tiles")
	err = WithPath(err, "board")

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "board.tiles[1][2]", se.Path)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, assert.AnError, WithPath(assert.AnError, "x"))
}

func counterList(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{"value": i, "label": fmt.Sprintf("c%d", i)}
	}
	return out
}

func TestGameBase(t *testing.T) {
	fields := GameFields.Extend("TestGame")
	tr := NewTracker()

	g, err := DecodeGameBase(fields, tr, map[string]any{
		"score": json.Number("10"), "lives": 3, "level": 1, "rand": map[string]any{"state": []any{1, 2}},
	})
	require.NoError(t, err)
	g.Seal()

	assert.Equal(t, 10, g.Score())
	assert.Equal(t, 3, g.Lives())
	assert.Equal(t, 1, g.Level())

	require.NoError(t, g.SetLives(5))
	assert.True(t, tr.Dirty())

	out := map[string]any{}
	g.EncodeInto(out)
	assert.Equal(t, 5, out["lives"])
	assert.Equal(t, map[string]any{"state": []any{1, 2}}, out["rand"])

	other := g
	assert.True(t, g.EqualBase(&other))
	assert.True(t, g.SameRand(&other))
}
