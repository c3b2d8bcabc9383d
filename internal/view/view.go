// Package view renders live scan results to the terminal. Three renderers
// share one boundary: a full-screen table, a clear-and-reprint ANSI table,
// and plain log lines for non-interactive output.
package view

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kestrelsec/wifiscout/internal/snapshot"
)

// Renderer receives the current snapshot once per poll cycle. Close releases
// any terminal state the renderer holds and is called once scanning ends.
type Renderer interface {
	Render(records []snapshot.AccessPoint)
	Close()
}

// ForTerminal picks the renderer for this run: the full-screen table when
// requested, the ANSI table when stdout is a terminal, plain log lines
// otherwise.
func ForTerminal(fullScreen bool) (Renderer, error) {
	if fullScreen {
		return NewTUI()
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return NewANSITable(os.Stdout), nil
	}
	return NewPlainLogger(), nil
}

// trunc shortens s to at most max runes so one long SSID cannot wreck the
// table layout.
func trunc(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
