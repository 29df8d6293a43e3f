package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Canvas ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`   ____                          `, "#38bdf8"},
		{`  / ___|__ _ _ ____   ____ _ ___ `, "#22d3ee"},
		{` | |   / _' | '_ \ \ / / _' / __|`, "#2dd4bf"},
		{` | |__| (_| | | | \ V / (_| \__ \`, "#34d399"},
		{`  \____\__,_|_| |_|\_/ \__,_|___/`, "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
