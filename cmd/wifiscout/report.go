package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kestrelsec/wifiscout/internal/report"
	"github.com/kestrelsec/wifiscout/internal/snapshot"
)

var (
	reportOutputDir string
	reportIface     string
)

var reportCmd = &cobra.Command{
	Use:   "report <capture-csv>",
	Short: "Regenerate the XLSX report from a capture CSV",
	Long: `Re-parses a preserved capture snapshot (the scan-01.csv a run leaves in its
output directory) and writes the survey workbook again, for when report
generation failed or the workbook was deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutputDir, "output-dir", "o", "", "Directory for the workbook (default: the CSV's directory)")
	reportCmd.Flags().StringVar(&reportIface, "interface", "", "Interface label stamped into the report")
}

func runReport(cmd *cobra.Command, args []string) error {
	csvPath := args[0]
	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("read capture csv: %w", err)
	}

	records := snapshot.Parse(csvPath)
	if len(records) == 0 {
		return fmt.Errorf("no access points found in %s", csvPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outDir := reportOutputDir
	if outDir == "" {
		outDir = filepath.Dir(csvPath)
	}
	iface := reportIface
	if iface == "" {
		iface = "unknown"
	}

	if err := report.New(cfg.Report.Filename).Generate(records, outDir, iface); err != nil {
		return err
	}
	fmt.Printf("Report for %d access points written to %s\n",
		len(records), filepath.Join(outDir, cfg.Report.Filename))
	return nil
}
