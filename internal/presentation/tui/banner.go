package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Toybox banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{" _____           _               ", "#fbbf24"},
		{"|_   _|___ _ _ _| |_ ___ _ _     ", "#f59e0b"},
		{"  | | | . | | | . | . |_'_|    ", "#f97316"},
		{"  |_| |___|_  |___|___|_,_|    ", "#ef4444"},
		{"          |___|                ", "#dc2626"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
