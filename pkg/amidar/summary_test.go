package amidar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	g, tracker := decodeFixture(t)

	s := Summarize(g)
	assert.Equal(t, 3, s.Lives)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 4, s.Jumps)
	assert.Equal(t, ModeRegular, s.Mode)
	assert.Equal(t, WorldPoint{X: 8, Y: 0}, s.Player)
	assert.Equal(t, 5, s.Width)
	assert.Equal(t, 5, s.Painted)
	assert.Equal(t, 10, s.Unpainted)
	require.Len(t, s.Enemies, 5)
	assert.Equal(t, TargetPlayer, s.Enemies[3].Protocol)
	assert.Equal(t, 6, s.Enemies[3].Speed)
	assert.False(t, tracker.Dirty(), "summarizing must not mutate")
}

func TestCurrentMode(t *testing.T) {
	g, _ := decodeFixture(t)

	require.NoError(t, g.SetJumpTimer(5))
	assert.Equal(t, ModeJump, g.CurrentMode())

	require.NoError(t, g.SetChaseTimer(5))
	assert.Equal(t, ModeChase, g.CurrentMode())
}
