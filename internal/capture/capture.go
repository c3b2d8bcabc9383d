// Package capture supervises the external capture tool that writes periodic
// CSV snapshots of observed access points.
package capture

import (
	"fmt"
	"io"
	"log"
	"os/exec"
	"syscall"
	"time"
)

// Config holds the capture tool invocation settings.
type Config struct {
	// Tool is the capture binary to invoke.
	Tool string
	// Bands are forwarded as repeated --band arguments.
	Bands []string
	// Settle is how long Start blocks after launch so the tool has time to
	// create its first snapshot file.
	Settle time.Duration
}

// Supervisor launches and terminates the capture tool.
type Supervisor struct {
	config Config
}

// New returns a Supervisor for the given tool configuration.
func New(cfg Config) *Supervisor {
	return &Supervisor{config: cfg}
}

// Session is one running capture process group. Exactly one Session is live
// at a time; the scan coordinator owns it from Start until Stop.
type Session struct {
	cmd    *exec.Cmd
	pgid   int
	prefix string
}

// Start launches the capture tool in its own session, which gives it a fresh
// process group so Stop can terminate the tool and any helper children
// atomically. The tool is told to write CSV output at outputPrefix while
// listening on iface. Start blocks for the settle delay after launch; it
// does not verify the snapshot file appeared, the parser tolerates its
// absence. A launch failure (missing binary, permission denied) is returned
// as-is; there is no retry.
func (s *Supervisor) Start(iface, outputPrefix string) (*Session, error) {
	cmd := exec.Command(s.config.Tool, s.args(iface, outputPrefix)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	log.Printf("[capture] starting %s on %s, output prefix %s", s.config.Tool, iface, outputPrefix)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", s.config.Tool, err)
	}

	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		// Setsid made the child its own group leader, so its pid is the pgid.
		pgid = cmd.Process.Pid
	}

	time.Sleep(s.config.Settle)
	return &Session{cmd: cmd, pgid: pgid, prefix: outputPrefix}, nil
}

func (s *Supervisor) args(iface, outputPrefix string) []string {
	args := []string{"-w", outputPrefix, "--output-format", "csv"}
	for _, band := range s.config.Bands {
		args = append(args, "--band", band)
	}
	return append(args, iface)
}

// CSVPath returns the snapshot file the capture tool maintains for this
// session: the output prefix plus the tool's fixed "-01.csv" suffix.
func (s *Session) CSVPath() string {
	return s.prefix + "-01.csv"
}

// Stop sends SIGTERM to the whole capture process group. Safe to call
// repeatedly and after the process has exited on its own; failures are
// logged and swallowed because Stop runs during shutdown, where an error
// must not block the remaining cleanup steps.
func (s *Session) Stop() {
	if s == nil || s.cmd == nil {
		return
	}
	log.Printf("[capture] stopping capture process group %d", s.pgid)
	if err := syscall.Kill(-s.pgid, syscall.SIGTERM); err != nil {
		log.Printf("[capture] stop capture: %v", err)
	}
	// Reap the child so it does not linger as a zombie for the rest of the
	// run. The tool exits promptly on SIGTERM.
	_ = s.cmd.Wait()
	s.cmd = nil
}
