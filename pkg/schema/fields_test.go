package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_Check(t *testing.T) {
	fields := Declare("Box").
		Expect("painted", Bool()).
		Expect("top_left", Object()).
		Immutable("session")

	t.Run("complete fragment", func(t *testing.T) {
		err := fields.Check(map[string]any{"painted": true, "top_left": map[string]any{}, "extra": 1})
		assert.NoError(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		err := fields.Check(map[string]any{"painted": true})
		require.Error(t, err)
		assert.Equal(t, []string{"top_left"}, MissingKeys(err))
	})

	t.Run("wrong type", func(t *testing.T) {
		err := fields.Check(map[string]any{"painted": "yes", "top_left": map[string]any{}})
		require.Error(t, err)

		errs := ValidationErrors(err)
		require.Len(t, errs, 1)
		var ve *ValidationError
		require.ErrorAs(t, errs[0], &ve)
		assert.Equal(t, "painted", ve.Key)
		assert.Empty(t, MissingKeys(err))
	})
}

func TestFields_Extend(t *testing.T) {
	base := Declare("Game").
		Expect("score", Int()).
		Immutable("session").
		Equality("score")

	derived := base.Extend("Amidar").
		Expect("jumps", Int()).
		Immutable("enemies").
		Equality("score", "jumps")

	assert.Equal(t, "Amidar", derived.Entity())
	assert.Equal(t, []string{"score", "jumps"}, derived.ExpectedKeys())
	assert.Equal(t, []string{"session", "enemies"}, derived.ImmutableKeys())
	assert.Equal(t, []string{"score", "jumps"}, derived.EqualityKeys())
	assert.True(t, derived.IsImmutable("enemies"))

	// The parent is untouched.
	assert.Equal(t, []string{"score"}, base.ExpectedKeys())
	assert.False(t, base.IsImmutable("enemies"))
	assert.Equal(t, []string{"score"}, base.EqualityKeys())
}

func TestFields_MarshalJSON(t *testing.T) {
	fields := Declare("TilePoint").Expect("tx", Int()).Expect("ty", Int()).Equality("tx", "ty")

	data, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"entity": "TilePoint",
		"expected": {"tx": "int", "ty": "int"},
		"immutable": null,
		"equality": ["tx", "ty"]
	}`, string(data))
}
