package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/kestrelsec/wifiscout/internal/snapshot"
)

// clearScreen moves the cursor home after wiping the terminal.
const clearScreen = "\033[2J\033[H"

// ANSITable clears the terminal and reprints an aligned table each cycle,
// the way watch-style CLIs do.
type ANSITable struct {
	w io.Writer
}

// NewANSITable returns an ANSITable writing to w.
func NewANSITable(w io.Writer) *ANSITable {
	return &ANSITable{w: w}
}

func (t *ANSITable) Render(records []snapshot.AccessPoint) {
	fmt.Fprint(t.w, clearScreen)
	color.New(color.FgCyan, color.Bold).Fprintln(t.w, "Live Wi-Fi Scan Results")
	fmt.Fprintln(t.w)

	tw := tabwriter.NewWriter(t.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BSSID\tSSID\tCH\tPrivacy\tAuth\tPWR")
	fmt.Fprintln(tw, "-----\t----\t--\t-------\t----\t---")
	for _, ap := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ap.BSSID, trunc(ap.SSID, 28), ap.Channel, ap.Privacy, ap.Auth, ap.Power)
	}
	tw.Flush()

	fmt.Fprintln(t.w)
	if len(records) == 0 {
		fmt.Fprintln(t.w, "Waiting for beacons...")
	}
	color.New(color.Faint).Fprintln(t.w, "Press CTRL+C to stop & generate report.")
}

func (t *ANSITable) Close() {}
