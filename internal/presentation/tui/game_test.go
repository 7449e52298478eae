package tui

import (
	"bytes"
	"os"
	"testing"

	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadGame(t *testing.T) *amidar.Game {
	t.Helper()
	data, err := os.ReadFile("../../../pkg/amidar/testdata/start.json")
	require.NoError(t, err)
	snap, err := domain.ParseSnapshot(data)
	require.NoError(t, err)
	g, err := amidar.Decode(entity.NewTracker(), snap)
	require.NoError(t, err)
	return g
}

func TestBoard(t *testing.T) {
	want := "#####\n" +
		".   .\n" +
		".   *\n" +
		".   .\n" +
		"....."
	assert.Equal(t, want, Board(loadGame(t)))
}

func TestGameMarkdown(t *testing.T) {
	g := loadGame(t)
	md := GameMarkdown(amidar.Summarize(g), Board(g))

	assert.Contains(t, md, "| 0 | 3 | 1 | 4 | regular | 0 | 0 |")
	assert.Contains(t, md, "| 3 | EnemyTargetPlayer | (16, 16) | 6 | false |")
	assert.Contains(t, md, "```\n#####\n")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "v0.1.0")
}
