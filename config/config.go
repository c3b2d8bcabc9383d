package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Config represents the application configuration
type Config struct {
	// Logging configuration
	Logging struct {
		// Level is the minimum log level to output (debug, info, warn, error)
		Level string `json:"level"`
		// File is the path to the log file. If empty, logs to stdout only
		File string `json:"file"`
		// MaxSizeMB is the maximum size of the log file before rotation
		MaxSizeMB int `json:"max_size_mb"`
		// LogRetentionDays is how long rotated log files are kept
		LogRetentionDays int `json:"log_retention_days"`
	} `json:"logging"`

	// Scan configuration
	Scan struct {
		// OutputDir is the base directory; each run creates a dated subdirectory under it
		OutputDir string `json:"output_dir"`
		// IntervalSeconds is how often the snapshot file is re-read
		IntervalSeconds int `json:"interval_seconds"`
		// SettleSeconds is how long to wait after launching the capture tool
		SettleSeconds int `json:"settle_seconds"`
		// Bands passed to the capture tool as --band arguments (combinations of a, b, g)
		Bands []string `json:"bands"`
		// Interface pins the scan to a specific wireless interface; empty means auto-detect
		Interface string `json:"interface"`
		// CaptureTool is the capture binary to invoke
		CaptureTool string `json:"capture_tool"`
	} `json:"scan"`

	// Report configuration
	Report struct {
		// Filename of the workbook written into the run's output directory
		Filename string `json:"filename"`
	} `json:"report"`
}

// LoadConfig loads configuration from a JSON file and applies defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.json"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	if err := config.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a configuration with every field at its default value,
// for runs with no config file on disk.
func Default() *Config {
	var config Config
	// Defaults never fail validation.
	_ = config.ValidateAndSetDefaults()
	return &config
}

// ValidateAndSetDefaults fills unset fields with defaults and rejects values
// that would be unsafe to hand to external commands. Safe to call more than
// once, e.g. after flag overrides have been applied.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.LogRetentionDays == 0 {
		c.Logging.LogRetentionDays = 14
	}
	if c.Scan.OutputDir == "" {
		c.Scan.OutputDir = "scans"
	}
	if c.Scan.IntervalSeconds == 0 {
		c.Scan.IntervalSeconds = 3
	}
	if c.Scan.SettleSeconds == 0 {
		c.Scan.SettleSeconds = 2
	}
	if len(c.Scan.Bands) == 0 {
		c.Scan.Bands = []string{"bg"}
	}
	if c.Scan.CaptureTool == "" {
		c.Scan.CaptureTool = "airodump-ng"
	}
	if c.Report.Filename == "" {
		c.Report.Filename = "wifi_report.xlsx"
	}

	if c.Scan.Interface != "" {
		if err := validateInterfaceName(c.Scan.Interface); err != nil {
			return fmt.Errorf("invalid interface %q: %w", c.Scan.Interface, err)
		}
	}
	for _, band := range c.Scan.Bands {
		if err := validateBand(band); err != nil {
			return err
		}
	}
	return nil
}

// interfaceNamePattern matches the characters allowed in a network interface
// name. Anything else is rejected before the name reaches a command line.
var interfaceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func validateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("interface name too long: %d characters (max 255)", len(name))
	}
	if !interfaceNamePattern.MatchString(name) {
		return fmt.Errorf("interface name contains invalid characters: %q", name)
	}
	return nil
}

// validateBand accepts the band combinations airodump-ng understands: one to
// three of the letters a, b, g, e.g. "bg" or "abg".
func validateBand(band string) error {
	if band == "" || len(band) > 3 {
		return fmt.Errorf("invalid band %q: want a combination of a, b, g", band)
	}
	if strings.Trim(band, "abg") != "" {
		return fmt.Errorf("invalid band %q: want a combination of a, b, g", band)
	}
	return nil
}
