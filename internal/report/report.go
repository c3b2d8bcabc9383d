// Package report renders the final survey workbook from parsed access-point
// records: a table of everything seen plus summary charts.
package report

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kestrelsec/wifiscout/internal/snapshot"
)

const (
	apSheet      = "Access Points"
	summarySheet = "Summary"
)

var apHeader = []string{"BSSID", "SSID", "CH", "Privacy", "Cipher", "Auth", "PWR"}

// Generator writes the XLSX survey report.
type Generator struct {
	filename string
}

// New returns a Generator that writes workbooks named filename into each
// run's output directory.
func New(filename string) *Generator {
	return &Generator{filename: filename}
}

// Generate renders records into <outputDir>/<filename>: one sheet listing
// every access point, stamped with the interface and scan time, and one
// summary sheet with a channel-distribution column chart and an
// encryption-type pie chart.
func (g *Generator) Generate(records []snapshot.AccessPoint, outputDir, iface string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", apSheet); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := writeAccessPoints(f, records, iface); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := writeSummary(f, records); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	path := filepath.Join(outputDir, g.filename)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	log.Printf("[report] report saved: %s", path)
	return nil
}

func writeAccessPoints(f *excelize.File, records []snapshot.AccessPoint, iface string) error {
	meta := fmt.Sprintf("Interface: %s  |  Scan time: %s", iface, time.Now().Format("02-01-2006 03:04 PM"))
	if err := f.SetCellValue(apSheet, "A1", meta); err != nil {
		return err
	}

	for i, h := range apHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(apSheet, cell, h); err != nil {
			return err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F5496"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(apSheet, "A3", "G3", headerStyle); err != nil {
		return err
	}

	for i, ap := range records {
		values := []string{ap.BSSID, ap.SSID, ap.Channel, ap.Privacy, ap.Cipher, ap.Auth, ap.Power}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+4)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(apSheet, cell, v); err != nil {
				return err
			}
		}
	}

	colWidths := []struct {
		col   string
		width float64
	}{
		{"A", 20}, {"B", 30}, {"C", 6}, {"D", 10}, {"E", 10}, {"F", 10}, {"G", 6},
	}
	for _, cw := range colWidths {
		if err := f.SetColWidth(apSheet, cw.col, cw.col, cw.width); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, records []snapshot.AccessPoint) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	channels := channelCounts(records)
	privacy := privacyCounts(records)

	if err := f.SetCellValue(summarySheet, "A1", "Channel"); err != nil {
		return err
	}
	if err := f.SetCellValue(summarySheet, "B1", "Count"); err != nil {
		return err
	}
	for i, cc := range channels {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+2), cc.Channel); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), cc.Count); err != nil {
			return err
		}
	}

	if err := f.SetCellValue(summarySheet, "D1", "Privacy"); err != nil {
		return err
	}
	if err := f.SetCellValue(summarySheet, "E1", "Count"); err != nil {
		return err
	}
	for i, pc := range privacy {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("D%d", i+2), pc.Privacy); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("E%d", i+2), pc.Count); err != nil {
			return err
		}
	}

	// Charts only make sense with data behind them; all-non-numeric channels
	// yield no histogram, same as an empty privacy column.
	if len(channels) > 0 {
		chart := &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       summarySheet + "!$B$1",
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", summarySheet, len(channels)+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", summarySheet, len(channels)+1),
			}},
			Title:     []excelize.RichTextRun{{Text: "Channel Distribution"}},
			Legend:    excelize.ChartLegend{Position: "none"},
			Dimension: excelize.ChartDimension{Width: 480, Height: 280},
		}
		if err := f.AddChart(summarySheet, "G2", chart); err != nil {
			return err
		}
	}
	if len(privacy) > 0 {
		chart := &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       "Encryption Types",
				Categories: fmt.Sprintf("%s!$D$2:$D$%d", summarySheet, len(privacy)+1),
				Values:     fmt.Sprintf("%s!$E$2:$E$%d", summarySheet, len(privacy)+1),
			}},
			Title:     []excelize.RichTextRun{{Text: "Encryption Types (Privacy)"}},
			PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
			Dimension: excelize.ChartDimension{Width: 480, Height: 280},
		}
		if err := f.AddChart(summarySheet, "G17", chart); err != nil {
			return err
		}
	}
	return nil
}

type channelCount struct {
	Channel int
	Count   int
}

// channelCounts tallies records per channel, skipping values the capture
// tool left non-numeric.
func channelCounts(records []snapshot.AccessPoint) []channelCount {
	counts := map[int]int{}
	for _, ap := range records {
		ch, err := strconv.Atoi(ap.Channel)
		if err != nil {
			continue
		}
		counts[ch]++
	}
	out := make([]channelCount, 0, len(counts))
	for ch, n := range counts {
		out = append(out, channelCount{Channel: ch, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

type privacyCount struct {
	Privacy string
	Count   int
}

func privacyCounts(records []snapshot.AccessPoint) []privacyCount {
	counts := map[string]int{}
	for _, ap := range records {
		p := ap.Privacy
		if p == "" {
			p = "Unknown"
		}
		counts[p]++
	}
	out := make([]privacyCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, privacyCount{Privacy: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Privacy < out[j].Privacy })
	return out
}
