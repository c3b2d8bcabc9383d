package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kestrelsec/wifiscout/config"
	"github.com/kestrelsec/wifiscout/internal/capture"
	"github.com/kestrelsec/wifiscout/internal/demo"
	"github.com/kestrelsec/wifiscout/internal/report"
	"github.com/kestrelsec/wifiscout/internal/scan"
	"github.com/kestrelsec/wifiscout/internal/snapshot"
	"github.com/kestrelsec/wifiscout/internal/version"
	"github.com/kestrelsec/wifiscout/internal/view"
	"github.com/kestrelsec/wifiscout/internal/wireless"
)

var (
	flagConfig    string
	flagInterface string
	flagInterval  int
	flagOutputDir string
	flagBands     []string
	flagTUI       bool
	flagDemo      bool
	flagNoReport  bool
)

var rootCmd = &cobra.Command{
	Use:   "wifiscout",
	Short: "Monitor-mode Wi-Fi survey tool",
	Long: `wifiscout switches a wireless interface into monitor mode, runs airodump-ng
against it, shows discovered access points live, and writes an XLSX survey
report when the scan is stopped with CTRL+C. The interface is returned to
managed mode on the way out.`,
	SilenceUsage: true,
	RunE:         runScan,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the JSON config file")
	rootCmd.Flags().StringVarP(&flagInterface, "interface", "i", "", "Wireless interface to scan on (default: auto-detect)")
	rootCmd.Flags().IntVar(&flagInterval, "interval", 0, "Seconds between live-view refreshes")
	rootCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "", "Base directory for scan output")
	rootCmd.Flags().StringArrayVar(&flagBands, "band", nil, "Band passed to the capture tool (repeatable; combinations of a, b, g)")
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false, "Full-screen live table")
	rootCmd.Flags().BoolVar(&flagDemo, "demo", false, "Scan synthetic data; needs no root and no wireless hardware")
	rootCmd.Flags().BoolVar(&flagNoReport, "no-report", false, "Skip the XLSX report on shutdown")
	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.Version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wifiscout version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

// configPaths are tried in order when --config is not given. No config file
// anywhere is fine; every setting has a default.
var configPaths = []string{
	"/etc/wifiscout/config.json",
	"config.json",
}

func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.LoadConfig(flagConfig)
	}
	for _, path := range configPaths {
		if cfg, err := config.LoadConfig(path); err == nil {
			return cfg, nil
		}
	}
	return config.Default(), nil
}

// applyFlags overlays explicitly-set command-line flags onto the loaded
// config, then re-validates the result.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("interface") {
		cfg.Scan.Interface = flagInterface
	}
	if cmd.Flags().Changed("interval") {
		cfg.Scan.IntervalSeconds = flagInterval
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Scan.OutputDir = flagOutputDir
	}
	if cmd.Flags().Changed("band") {
		cfg.Scan.Bands = flagBands
	}
	return cfg.ValidateAndSetDefaults()
}

// setupLogging routes the standard logger. While the full-screen view owns
// the terminal, stdout log lines would corrupt it, so they go to the rotating
// file only, or nowhere when no file is configured.
func setupLogging(cfg *config.Config) error {
	var writers []io.Writer
	if !flagTUI {
		writers = append(writers, os.Stdout)
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxAge:     cfg.Logging.LogRetentionDays,
			MaxBackups: 3,
			Compress:   true,
		})
	}
	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	if !flagDemo && os.Geteuid() != 0 {
		return errors.New("scanning drives ip/iw/airodump-ng and needs root; rerun with sudo or use --demo")
	}

	var (
		wifi     scan.InterfaceController
		capturer scan.Capturer
	)
	if flagDemo {
		wifi = demo.Controller{}
		demoCap := demo.NewCapturer()
		capturer = scan.CaptureFunc(func(iface, outputPrefix string) (scan.Session, error) {
			return demoCap.Start(iface, outputPrefix)
		})
	} else {
		wifi = wireless.NewController()
		supervisor := capture.New(capture.Config{
			Tool:   cfg.Scan.CaptureTool,
			Bands:  cfg.Scan.Bands,
			Settle: time.Duration(cfg.Scan.SettleSeconds) * time.Second,
		})
		capturer = scan.CaptureFunc(func(iface, outputPrefix string) (scan.Session, error) {
			return supervisor.Start(iface, outputPrefix)
		})
	}

	renderer, err := view.ForTerminal(flagTUI)
	if err != nil {
		return fmt.Errorf("open live view: %w", err)
	}

	var reporter scan.Reporter = report.New(cfg.Report.Filename)
	if flagNoReport {
		reporter = noReporter{}
	}

	coordinator := scan.New(scan.Config{
		Interface:  cfg.Scan.Interface,
		Interval:   time.Duration(cfg.Scan.IntervalSeconds) * time.Second,
		OutputBase: cfg.Scan.OutputDir,
	}, wifi, capturer, renderer, reporter)

	// The handler goroutine only ever flips the coordinator's running flag;
	// all cleanup happens on the Run path once the flag is observed.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			coordinator.Interrupt()
		}
	}()

	return coordinator.Run()
}

// noReporter satisfies the reporter boundary when --no-report is set.
type noReporter struct{}

func (noReporter) Generate(records []snapshot.AccessPoint, outputDir, iface string) error {
	log.Printf("[report] report disabled, skipping %d access points", len(records))
	return nil
}
