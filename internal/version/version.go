// Package version holds the build version stamped into release binaries.
package version

// Version is set at build time via -ldflags "-X github.com/kestrelsec/wifiscout/internal/version.Version=...".
var Version = "0.1.0-dev"
