// Package snapshot parses the CSV snapshots the capture tool rewrites while
// it runs, extracting the access-point table and ignoring the station table
// that follows it.
package snapshot

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
)

// AccessPoint is one row of the AP table in a capture snapshot. Fields are
// carried as trimmed strings exactly as the capture tool emitted them;
// channel and power may be non-numeric for out-of-band values.
type AccessPoint struct {
	BSSID   string
	SSID    string
	Channel string
	Privacy string
	Cipher  string
	Auth    string
	Power   string
}

// HiddenSSID is substituted for access points that do not disclose a name.
const HiddenSSID = "Hidden"

// Fixed column positions in the capture tool's AP table.
const (
	colBSSID   = 0
	colChannel = 3
	colPrivacy = 5
	colCipher  = 6
	colAuth    = 7
	colPower   = 8
	colSSID    = 13

	// minFields is the narrowest row still carrying an ESSID column.
	minFields = 14
)

// Parse reads the snapshot at path and returns the access points it lists,
// in file order. Parse is total: a missing file, an unreadable file, or a
// file truncated mid-rewrite degrades to fewer or zero records, never an
// error. The AP table starts after the row whose first field is "BSSID" and
// ends at the row whose first field is "Station MAC".
func Parse(path string) []AccessPoint {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) []AccessPoint {
	reader := csv.NewReader(r)
	// The tool writes variable-width, unquoted rows; accept them as-is and
	// sort out malformed ones per row.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var aps []AccessPoint
	inAPTable := false
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// One mangled row does not spoil the snapshot.
				continue
			}
			// Transient read failure mid-rewrite: keep what we have.
			break
		}

		first := strings.TrimSpace(row[0])
		if first == "" && len(row) == 1 {
			continue
		}
		if first == "BSSID" {
			inAPTable = true
			continue
		}
		if first == "Station MAC" {
			break
		}
		if !inAPTable || len(row) < minFields {
			continue
		}

		ssid := strings.TrimSpace(row[colSSID])
		if ssid == "" {
			ssid = HiddenSSID
		}
		aps = append(aps, AccessPoint{
			BSSID:   strings.TrimSpace(row[colBSSID]),
			SSID:    ssid,
			Channel: strings.TrimSpace(row[colChannel]),
			Privacy: strings.TrimSpace(row[colPrivacy]),
			Cipher:  strings.TrimSpace(row[colCipher]),
			Auth:    strings.TrimSpace(row[colAuth]),
			Power:   strings.TrimSpace(row[colPower]),
		})
	}
	return aps
}
