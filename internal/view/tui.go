package view

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/kestrelsec/wifiscout/internal/snapshot"
)

// TUI owns the whole terminal and redraws a fixed-column table per cycle.
type TUI struct {
	screen tcell.Screen
}

// NewTUI initializes a full-screen view on the real terminal.
func NewTUI() (*TUI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return NewTUIWithScreen(s), nil
}

// NewTUIWithScreen wraps an already-initialized screen; tests pass a
// simulation screen here.
func NewTUIWithScreen(s tcell.Screen) *TUI {
	s.Clear()
	t := &TUI{screen: s}
	go t.pollEvents()
	return t
}

// pollEvents watches for keys while the screen is in raw mode. Raw mode
// swallows the terminal's CTRL+C, so the quit keys are re-delivered as the
// standard interrupt signal; cancellation then flows through the same path
// as an external SIGINT.
func (t *TUI) pollEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				if p, err := os.FindProcess(os.Getpid()); err == nil {
					_ = p.Signal(os.Interrupt)
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

const tuiRowFormat = "%-20s %-30s %-5s %-9s %-6s %-5s"

func (t *TUI) Render(records []snapshot.AccessPoint) {
	s := t.screen
	s.Clear()

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)

	t.drawText(0, 0, titleStyle, "Live Wi-Fi Scan Results")
	t.drawText(0, 2, headerStyle, fmt.Sprintf(tuiRowFormat, "BSSID", "SSID", "CH", "Privacy", "Auth", "PWR"))

	_, h := s.Size()
	row := 3
	for _, ap := range records {
		if row >= h-1 {
			break
		}
		t.drawText(0, row, tcell.StyleDefault, fmt.Sprintf(tuiRowFormat,
			ap.BSSID, trunc(ap.SSID, 30), ap.Channel, ap.Privacy, ap.Auth, ap.Power))
		row++
	}
	if len(records) == 0 {
		t.drawText(0, row, tcell.StyleDefault, "Waiting for beacons...")
	}

	t.drawText(0, h-1, statusStyle, fmt.Sprintf("%d access points | CTRL+C or q to stop", len(records)))
	s.Show()
}

func (t *TUI) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

// Close restores the terminal; the event goroutine unblocks and exits once
// the screen is finalized.
func (t *TUI) Close() {
	t.screen.Fini()
}
