package tui

import (
	"fmt"
	"strings"

	"github.com/KDL-umass/Toybox/pkg/amidar"
)

var glyphs = map[amidar.TileTag]rune{
	amidar.Empty:       ' ',
	amidar.Unpainted:   '.',
	amidar.Painted:     '#',
	amidar.ChaseMarker: '*',
}

// Board draws the tile grid, one row per line.
func Board(g *amidar.Game) string {
	b := g.Board()
	var sb strings.Builder
	row := -1
	for tp, tile := range b.All() {
		if tp.TY != row {
			if row >= 0 {
				sb.WriteByte('\n')
			}
			row = tp.TY
		}
		r, ok := glyphs[tile.Tag()]
		if !ok {
			r = '?'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// GameMarkdown renders a summary and its board as markdown.
func GameMarkdown(s amidar.Summary, board string) string {
	var sb strings.Builder
	sb.WriteString("# Amidar\n\n")
	sb.WriteString("| score | lives | level | jumps | mode | jump timer | chase timer |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %s | %d | %d |\n\n",
		s.Score, s.Lives, s.Level, s.Jumps, s.Mode, s.JumpTimer, s.ChaseTimer)

	fmt.Fprintf(&sb, "Player at (%d, %d). Board %dx%d, %d painted, %d unpainted.\n\n",
		s.Player.X, s.Player.Y, s.Width, s.Height, s.Painted, s.Unpainted)

	sb.WriteString("## Enemies\n\n")
	if len(s.Enemies) == 0 {
		sb.WriteString("_none_\n\n")
	} else {
		sb.WriteString("| # | protocol | position | speed | caught |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, e := range s.Enemies {
			fmt.Fprintf(&sb, "| %d | %s | (%d, %d) | %d | %t |\n",
				e.Index, e.Protocol, e.Position.X, e.Position.Y, e.Speed, e.Caught)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Board\n\n```\n")
	sb.WriteString(board)
	sb.WriteString("\n```\n")
	return sb.String()
}
