package view

import (
	"log"

	"github.com/kestrelsec/wifiscout/internal/snapshot"
)

// PlainLogger emits one summary log line per poll cycle, for piped or
// headless runs where screen control sequences would be noise.
type PlainLogger struct{}

func NewPlainLogger() *PlainLogger {
	return &PlainLogger{}
}

func (p *PlainLogger) Render(records []snapshot.AccessPoint) {
	log.Printf("[view] %d access points in view", len(records))
}

func (p *PlainLogger) Close() {}
