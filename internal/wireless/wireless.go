// Package wireless discovers wireless interfaces and switches them between
// managed and monitor operating modes via the host's ip/iw tooling.
package wireless

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strings"
)

// Mode is a wireless interface operating mode as reported by iw.
type Mode string

const (
	ModeManaged Mode = "managed"
	ModeMonitor Mode = "monitor"
	ModeUnknown Mode = "unknown"
)

// Interface is a wireless interface and the mode it was last observed in.
type Interface struct {
	Name string
	Mode Mode
}

// ErrNoInterface is returned by Select when the host has no wireless interface.
var ErrNoInterface = errors.New("no wireless interface found")

// Cmd is a single external command ready to run.
type Cmd interface {
	Run() error
	Output() ([]byte, error)
}

// CmdRunner abstracts command construction so tests can intercept the
// ip/iw/iwconfig invocations instead of mutating host networking state.
type CmdRunner interface {
	Command(name string, arg ...string) Cmd
}

type realCmd struct {
	cmd *exec.Cmd
}

func (r *realCmd) Run() error { return r.cmd.Run() }

func (r *realCmd) Output() ([]byte, error) { return r.cmd.Output() }

type realCmdRunner struct{}

func (realCmdRunner) Command(name string, arg ...string) Cmd {
	return &realCmd{cmd: exec.Command(name, arg...)}
}

// Controller drives interface discovery and mode changes.
type Controller struct {
	runner CmdRunner
}

// NewController returns a Controller that shells out to the host tools.
func NewController() *Controller {
	return &Controller{runner: realCmdRunner{}}
}

// NewControllerWithRunner allows tests to inject a command runner.
func NewControllerWithRunner(runner CmdRunner) *Controller {
	return &Controller{runner: runner}
}

// Select picks the interface to scan on. Preference order: an interface
// already in monitor mode, then the first interface iw reports, then the
// first interface the legacy iwconfig fallback reports.
func (c *Controller) Select() (Interface, error) {
	ifaces := c.iwInterfaces()
	for _, ifc := range ifaces {
		if ifc.Mode == ModeMonitor {
			return ifc, nil
		}
	}
	if len(ifaces) > 0 {
		return ifaces[0], nil
	}
	if legacy := c.iwconfigInterfaces(); len(legacy) > 0 {
		return legacy[0], nil
	}
	return Interface{}, ErrNoInterface
}

// List enumerates wireless interfaces with their current modes.
func (c *Controller) List() ([]Interface, error) {
	if ifaces := c.iwInterfaces(); len(ifaces) > 0 {
		return ifaces, nil
	}
	if legacy := c.iwconfigInterfaces(); len(legacy) > 0 {
		return legacy, nil
	}
	return nil, ErrNoInterface
}

// CurrentMode probes iw for the interface's present operating mode.
func (c *Controller) CurrentMode(name string) Mode {
	for _, ifc := range c.iwInterfaces() {
		if ifc.Name == name {
			return ifc.Mode
		}
	}
	return ModeUnknown
}

// EnterMonitor switches the interface into monitor mode. Idempotent: when the
// interface already reports monitor mode no commands are issued. The mode
// change itself is attempted with the modern syntax first and the legacy
// "set monitor none" syntax as a fallback; the interface is brought back up
// either way.
func (c *Controller) EnterMonitor(ifc Interface) (Interface, error) {
	if c.CurrentMode(ifc.Name) == ModeMonitor {
		log.Printf("[wireless] %s already in monitor mode", ifc.Name)
		ifc.Mode = ModeMonitor
		return ifc, nil
	}

	log.Printf("[wireless] enabling monitor mode on %s", ifc.Name)
	c.run("ip", "link", "set", ifc.Name, "down")
	err := c.runner.Command("iw", "dev", ifc.Name, "set", "type", "monitor").Run()
	if err != nil {
		err = c.runner.Command("iw", "dev", ifc.Name, "set", "monitor", "none").Run()
	}
	c.run("ip", "link", "set", ifc.Name, "up")
	if err != nil {
		return ifc, fmt.Errorf("set monitor mode on %s: %w", ifc.Name, err)
	}

	log.Printf("[wireless] monitor mode enabled on %s", ifc.Name)
	ifc.Mode = ModeMonitor
	return ifc, nil
}

// RestoreManaged puts the interface back into managed mode. Best-effort: this
// runs during shutdown, so every failure is logged and swallowed rather than
// propagated.
func (c *Controller) RestoreManaged(ifc Interface) {
	log.Printf("[wireless] restoring managed mode on %s", ifc.Name)
	c.run("ip", "link", "set", ifc.Name, "down")
	c.run("iw", "dev", ifc.Name, "set", "type", "managed")
	c.run("ip", "link", "set", ifc.Name, "up")
	log.Printf("[wireless] managed mode restored on %s", ifc.Name)
}

// run executes a command whose failure is tolerable, logging instead of
// returning the error.
func (c *Controller) run(name string, arg ...string) {
	if err := c.runner.Command(name, arg...).Run(); err != nil {
		log.Printf("[wireless] %s %s failed: %v", name, strings.Join(arg, " "), err)
	}
}

func (c *Controller) iwInterfaces() []Interface {
	out, err := c.runner.Command("iw", "dev").Output()
	if err != nil {
		return nil
	}
	return parseIWDev(string(out))
}

func (c *Controller) iwconfigInterfaces() []Interface {
	out, err := c.runner.Command("iwconfig").Output()
	if err != nil {
		return nil
	}
	return parseIWConfig(string(out))
}

var iwInterfacePattern = regexp.MustCompile(`^Interface\s+(\S+)`)

// parseIWDev extracts interface names and modes from "iw dev" output, which
// lists one indented block per interface:
//
//	phy#0
//		Interface wlan0
//			...
//			type managed
func parseIWDev(out string) []Interface {
	var ifaces []Interface
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := iwInterfacePattern.FindStringSubmatch(line); m != nil {
			ifaces = append(ifaces, Interface{Name: m[1], Mode: ModeUnknown})
			continue
		}
		if len(ifaces) == 0 {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "type "); ok {
			ifaces[len(ifaces)-1].Mode = parseMode(rest)
		}
	}
	return ifaces
}

// parseIWConfig extracts interface names from iwconfig output. Only lines
// that start a new interface block and mention wireless extensions count;
// modes are not derived from this legacy source.
func parseIWConfig(out string) []Interface {
	var ifaces []Interface
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if !strings.Contains(line, "IEEE 802.11") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			ifaces = append(ifaces, Interface{Name: fields[0], Mode: ModeUnknown})
		}
	}
	return ifaces
}

func parseMode(s string) Mode {
	switch strings.TrimSpace(s) {
	case "managed":
		return ModeManaged
	case "monitor":
		return ModeMonitor
	default:
		return ModeUnknown
	}
}
