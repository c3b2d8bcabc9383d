package wireless

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeHost emulates the host's ip/iw/iwconfig tooling behind the CmdRunner
// seam. It tracks per-interface modes so mode changes issued through Run are
// visible to later "iw dev" probes, and records every command line issued.
type fakeHost struct {
	modes        map[string]Mode
	order        []string
	iwErr        error
	iwconfig     []string
	failPrimary  bool
	failFallback bool
	commands     []string
}

func newFakeHost(name string, mode Mode) *fakeHost {
	return &fakeHost{
		modes: map[string]Mode{name: mode},
		order: []string{name},
	}
}

func (h *fakeHost) Command(name string, arg ...string) Cmd {
	return &fakeCmd{h: h, line: strings.TrimSpace(name + " " + strings.Join(arg, " "))}
}

// modeChanges counts the commands that mutate interface state, as opposed to
// read-only probes.
func (h *fakeHost) modeChanges() int {
	n := 0
	for _, cmd := range h.commands {
		if strings.HasPrefix(cmd, "ip link set") || strings.Contains(cmd, " set ") {
			n++
		}
	}
	return n
}

type fakeCmd struct {
	h    *fakeHost
	line string
}

func (c *fakeCmd) Run() error {
	h := c.h
	h.commands = append(h.commands, c.line)
	fields := strings.Fields(c.line)
	switch {
	case strings.HasPrefix(c.line, "ip link set"):
		return nil
	case strings.HasSuffix(c.line, "set type monitor"):
		if h.failPrimary {
			return errors.New("command failed: exit status 241")
		}
		h.modes[fields[2]] = ModeMonitor
		return nil
	case strings.HasSuffix(c.line, "set monitor none"):
		if h.failFallback {
			return errors.New("command failed: exit status 1")
		}
		h.modes[fields[2]] = ModeMonitor
		return nil
	case strings.HasSuffix(c.line, "set type managed"):
		h.modes[fields[2]] = ModeManaged
		return nil
	}
	return nil
}

func (c *fakeCmd) Output() ([]byte, error) {
	h := c.h
	h.commands = append(h.commands, c.line)
	switch c.line {
	case "iw dev":
		if h.iwErr != nil {
			return nil, h.iwErr
		}
		var b strings.Builder
		b.WriteString("phy#0\n")
		for _, name := range h.order {
			fmt.Fprintf(&b, "\tInterface %s\n\t\tifindex 3\n\t\ttype %s\n", name, h.modes[name])
		}
		return []byte(b.String()), nil
	case "iwconfig":
		if len(h.iwconfig) == 0 {
			return nil, errors.New("exit status 255")
		}
		var b strings.Builder
		for _, name := range h.iwconfig {
			fmt.Fprintf(&b, "%s    IEEE 802.11  ESSID:off/any\n          Mode:Managed  Access Point: Not-Associated\n\n", name)
		}
		return []byte(b.String()), nil
	}
	return nil, nil
}

// TestSelect_PrefersMonitorInterface verifies that an interface already in
// monitor mode wins over earlier interfaces in the enumeration.
func TestSelect_PrefersMonitorInterface(t *testing.T) {
	h := &fakeHost{
		modes: map[string]Mode{"wlan0": ModeManaged, "wlan1mon": ModeMonitor},
		order: []string{"wlan0", "wlan1mon"},
	}
	c := NewControllerWithRunner(h)

	ifc, err := c.Select()
	if err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	if ifc.Name != "wlan1mon" || ifc.Mode != ModeMonitor {
		t.Errorf("Select() = %+v, expected wlan1mon in monitor mode", ifc)
	}
}

func TestSelect_FirstInterfaceOtherwise(t *testing.T) {
	h := &fakeHost{
		modes: map[string]Mode{"wlan0": ModeManaged, "wlan1": ModeManaged},
		order: []string{"wlan0", "wlan1"},
	}
	c := NewControllerWithRunner(h)

	ifc, err := c.Select()
	if err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	if ifc.Name != "wlan0" {
		t.Errorf("Select() = %q, expected first interface wlan0", ifc.Name)
	}
}

// TestSelect_IWConfigFallback verifies the legacy iwconfig path is only used
// when iw reports nothing.
func TestSelect_IWConfigFallback(t *testing.T) {
	h := &fakeHost{
		modes:    map[string]Mode{},
		iwErr:    errors.New("iw: command not found"),
		iwconfig: []string{"wlp3s0"},
	}
	c := NewControllerWithRunner(h)

	ifc, err := c.Select()
	if err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	if ifc.Name != "wlp3s0" {
		t.Errorf("Select() = %q, expected iwconfig fallback wlp3s0", ifc.Name)
	}
}

func TestSelect_NoInterface(t *testing.T) {
	h := &fakeHost{modes: map[string]Mode{}}
	c := NewControllerWithRunner(h)

	_, err := c.Select()
	if !errors.Is(err, ErrNoInterface) {
		t.Errorf("Select() error = %v, expected ErrNoInterface", err)
	}
}

// TestEnterMonitor_Idempotent verifies that a second EnterMonitor on an
// interface already in monitor mode issues no further mode-change commands.
func TestEnterMonitor_Idempotent(t *testing.T) {
	h := newFakeHost("wlan0", ModeManaged)
	c := NewControllerWithRunner(h)

	ifc, err := c.EnterMonitor(Interface{Name: "wlan0", Mode: ModeManaged})
	if err != nil {
		t.Fatalf("EnterMonitor() unexpected error: %v", err)
	}
	if ifc.Mode != ModeMonitor {
		t.Fatalf("EnterMonitor() mode = %v, expected monitor", ifc.Mode)
	}

	changes := h.modeChanges()
	ifc, err = c.EnterMonitor(ifc)
	if err != nil {
		t.Fatalf("second EnterMonitor() unexpected error: %v", err)
	}
	if ifc.Mode != ModeMonitor {
		t.Errorf("second EnterMonitor() mode = %v, expected monitor", ifc.Mode)
	}
	if got := h.modeChanges(); got != changes {
		t.Errorf("second EnterMonitor() issued %d extra mode-change commands: %v", got-changes, h.commands)
	}
}

// TestMonitorRoundTrip verifies that EnterMonitor followed by RestoreManaged
// returns a managed interface to managed mode.
func TestMonitorRoundTrip(t *testing.T) {
	h := newFakeHost("wlan0", ModeManaged)
	c := NewControllerWithRunner(h)

	ifc, err := c.Select()
	if err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	ifc, err = c.EnterMonitor(ifc)
	if err != nil {
		t.Fatalf("EnterMonitor() unexpected error: %v", err)
	}
	if h.modes["wlan0"] != ModeMonitor {
		t.Fatalf("host mode after EnterMonitor = %v, expected monitor", h.modes["wlan0"])
	}

	c.RestoreManaged(ifc)
	if h.modes["wlan0"] != ModeManaged {
		t.Errorf("host mode after RestoreManaged = %v, expected managed", h.modes["wlan0"])
	}
	if got := c.CurrentMode("wlan0"); got != ModeManaged {
		t.Errorf("CurrentMode() = %v, expected managed", got)
	}
}

// TestEnterMonitor_FallbackSyntax verifies the legacy mode-set syntax runs
// only after the primary syntax fails, and that the interface still comes
// back up.
func TestEnterMonitor_FallbackSyntax(t *testing.T) {
	h := newFakeHost("wlan0", ModeManaged)
	h.failPrimary = true
	c := NewControllerWithRunner(h)

	ifc, err := c.EnterMonitor(Interface{Name: "wlan0", Mode: ModeManaged})
	if err != nil {
		t.Fatalf("EnterMonitor() unexpected error: %v", err)
	}
	if ifc.Mode != ModeMonitor {
		t.Errorf("EnterMonitor() mode = %v, expected monitor via fallback", ifc.Mode)
	}

	joined := strings.Join(h.commands, "\n")
	primary := strings.Index(joined, "set type monitor")
	fallback := strings.Index(joined, "set monitor none")
	if primary == -1 || fallback == -1 || fallback < primary {
		t.Errorf("expected primary syntax before fallback, commands:\n%s", joined)
	}
	if h.commands[len(h.commands)-1] != "ip link set wlan0 up" {
		t.Errorf("expected interface brought back up last, commands:\n%s", joined)
	}
}

func TestEnterMonitor_BothSyntaxesFail(t *testing.T) {
	h := newFakeHost("wlan0", ModeManaged)
	h.failPrimary = true
	h.failFallback = true
	c := NewControllerWithRunner(h)

	_, err := c.EnterMonitor(Interface{Name: "wlan0", Mode: ModeManaged})
	if err == nil {
		t.Fatal("EnterMonitor() expected error when both syntaxes fail")
	}
	if h.commands[len(h.commands)-1] != "ip link set wlan0 up" {
		t.Errorf("interface must be brought back up even on failure, commands: %v", h.commands)
	}
}

func TestParseIWDev(t *testing.T) {
	out := `phy#1
	Interface wlan1
		ifindex 4
		wdev 0x100000001
		addr aa:bb:cc:dd:ee:01
		type monitor
		channel 6 (2437 MHz), width: 20 MHz (no HT), center1: 2437 MHz
phy#0
	Interface wlan0
		ifindex 3
		wdev 0x1
		addr aa:bb:cc:dd:ee:00
		ssid HomeNet
		type managed
`
	ifaces := parseIWDev(out)
	if len(ifaces) != 2 {
		t.Fatalf("parseIWDev() returned %d interfaces, expected 2: %+v", len(ifaces), ifaces)
	}
	if ifaces[0].Name != "wlan1" || ifaces[0].Mode != ModeMonitor {
		t.Errorf("parseIWDev()[0] = %+v, expected wlan1/monitor", ifaces[0])
	}
	if ifaces[1].Name != "wlan0" || ifaces[1].Mode != ModeManaged {
		t.Errorf("parseIWDev()[1] = %+v, expected wlan0/managed", ifaces[1])
	}
}

func TestParseIWConfig(t *testing.T) {
	out := `lo        no wireless extensions.

eth0      no wireless extensions.

wlan0     IEEE 802.11  ESSID:off/any
          Mode:Managed  Access Point: Not-Associated   Tx-Power=20 dBm
          Retry short limit:7   RTS thr:off   Fragment thr:off
`
	ifaces := parseIWConfig(out)
	if len(ifaces) != 1 || ifaces[0].Name != "wlan0" {
		t.Fatalf("parseIWConfig() = %+v, expected only wlan0", ifaces)
	}
}
