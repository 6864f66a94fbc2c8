package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the weft banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                 __ _   `, "#818cf8"},
		{` __      _____  / _| |_ `, "#a78bfa"},
		{` \ \ /\ / / _ \| |_| __|`, "#c084fc"},
		{`  \ V  V /  __/|  _| |_ `, "#e879f9"},
		{`   \_/\_/ \___||_|  \__|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colours a result status for the terminal.
func Status(s string, ok bool) string {
	p := termenv.ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return termenv.String(s).Foreground(p.Color(color)).Bold().String()
}
