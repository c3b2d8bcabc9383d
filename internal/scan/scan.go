// Package scan coordinates one scan run end to end: it prepares a wireless
// interface, supervises the external capture tool, renders parsed snapshots
// at a fixed interval, and on interrupt tears everything down and writes the
// final report.
package scan

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/kestrelsec/wifiscout/internal/snapshot"
	"github.com/kestrelsec/wifiscout/internal/wireless"
)

// capturePrefix is the basename handed to the capture tool; the tool appends
// "-01.csv" to it for the snapshot file.
const capturePrefix = "scan"

// Session is a handle on one running capture.
type Session interface {
	// CSVPath is the snapshot file the capture maintains.
	CSVPath() string
	// Stop terminates the capture. Idempotent and best-effort.
	Stop()
}

// Capturer launches the external capture tool and hands back a stoppable
// session.
type Capturer interface {
	Start(iface, outputPrefix string) (Session, error)
}

// CaptureFunc adapts a function to the Capturer interface.
type CaptureFunc func(iface, outputPrefix string) (Session, error)

// Start calls f.
func (f CaptureFunc) Start(iface, outputPrefix string) (Session, error) {
	return f(iface, outputPrefix)
}

// InterfaceController drives wireless interface discovery and mode changes.
type InterfaceController interface {
	Select() (wireless.Interface, error)
	EnterMonitor(ifc wireless.Interface) (wireless.Interface, error)
	RestoreManaged(ifc wireless.Interface)
}

// Renderer displays the current set of access points once per poll cycle.
type Renderer interface {
	Render(records []snapshot.AccessPoint)
	Close()
}

// Reporter turns the final set of records into an on-disk report.
type Reporter interface {
	Generate(records []snapshot.AccessPoint, outputDir, iface string) error
}

// Phase is a coarse lifecycle marker for a scan run.
type Phase int32

const (
	PhaseInitializing Phase = iota
	PhaseScanning
	PhaseShuttingDown
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseScanning:
		return "scanning"
	case PhaseShuttingDown:
		return "shutting-down"
	case PhaseFinalized:
		return "finalized"
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

// Config controls one scan run.
type Config struct {
	// Interface pins the scan to a specific interface; empty means let the
	// controller pick one.
	Interface string
	// Interval is the delay between snapshot polls.
	Interval time.Duration
	// OutputBase is the directory under which dated scan directories are
	// created.
	OutputBase string
}

// Coordinator owns the scan lifecycle. All run state lives in its fields;
// the only piece touched from outside the Run goroutine is the running flag,
// which Interrupt flips.
type Coordinator struct {
	cfg      Config
	wifi     InterfaceController
	capturer Capturer
	view     Renderer
	reporter Reporter

	running atomic.Bool
	phase   atomic.Int32

	iface          wireless.Interface
	outputDir      string
	session        Session
	monitorEntered bool
}

// New wires a Coordinator from its collaborators. The returned Coordinator
// is good for a single Run.
func New(cfg Config, wifi InterfaceController, capturer Capturer, view Renderer, reporter Reporter) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		wifi:     wifi,
		capturer: capturer,
		view:     view,
		reporter: reporter,
	}
	c.running.Store(true)
	return c
}

// Phase reports the coordinator's current lifecycle phase.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// Interrupt asks the coordinator to stop after the current poll cycle. Safe
// to call from a signal handler goroutine, and more than once.
func (c *Coordinator) Interrupt() {
	if c.running.CompareAndSwap(true, false) {
		log.Printf("[scan] Stopping scan. Generating report.")
	}
}

// Run drives one scan end to end and blocks until it has finalized. The
// returned error is the initialization failure that prevented scanning, or
// the collected failures of the shutdown steps.
func (c *Coordinator) Run() error {
	if err := c.initialize(); err != nil {
		c.abort()
		return err
	}

	c.phase.Store(int32(PhaseScanning))
	log.Printf("[scan] Scanning on %s. Results will be saved in: %s", c.iface.Name, c.outputDir)
	c.loop()

	return c.shutdown()
}

func (c *Coordinator) initialize() error {
	dir := outputDir(c.cfg.OutputBase, time.Now())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	c.outputDir = dir

	ifc := wireless.Interface{Name: c.cfg.Interface, Mode: wireless.ModeUnknown}
	if ifc.Name == "" {
		var err error
		ifc, err = c.wifi.Select()
		if err != nil {
			return err
		}
	}
	c.iface = ifc
	log.Printf("[scan] Using interface %s", ifc.Name)

	entered, err := c.wifi.EnterMonitor(ifc)
	if err != nil {
		return err
	}
	c.iface = entered
	c.monitorEntered = true

	session, err := c.capturer.Start(entered.Name, filepath.Join(dir, capturePrefix))
	if err != nil {
		return err
	}
	c.session = session
	return nil
}

// loop polls the snapshot file and renders it until the running flag drops.
// An interrupt is observed at the top of the next cycle, so stop latency is
// bounded by one interval.
func (c *Coordinator) loop() {
	csvPath := c.session.CSVPath()
	for c.running.Load() {
		c.view.Render(snapshot.Parse(csvPath))
		time.Sleep(c.cfg.Interval)
	}
}

// shutdown runs the teardown sequence: close the view, stop the capture,
// parse the final snapshot, report if anything was seen, restore the
// interface. Each step runs regardless of earlier failures so a broken
// report can never leave the interface stuck in monitor mode.
func (c *Coordinator) shutdown() error {
	c.phase.Store(int32(PhaseShuttingDown))

	c.view.Close()
	c.session.Stop()

	var failures []error
	records := snapshot.Parse(c.session.CSVPath())
	if len(records) == 0 {
		log.Printf("[scan] No access points captured; report skipped.")
	} else if err := c.report(records); err != nil {
		failures = append(failures, err)
		log.Printf("[scan] Failed to generate report: %v", err)
	} else {
		log.Printf("[scan] Report for %d access points written to %s", len(records), c.outputDir)
	}

	if c.monitorEntered {
		c.wifi.RestoreManaged(c.iface)
	}
	if len(failures) > 0 {
		log.Printf("[scan] %d shutdown step(s) failed", len(failures))
	}

	c.phase.Store(int32(PhaseFinalized))
	log.Printf("[scan] Done.")
	return errors.Join(failures...)
}

// abort releases whatever initialize acquired before failing. Monitor mode
// is restored whenever it was entered, no matter which later step failed.
func (c *Coordinator) abort() {
	c.phase.Store(int32(PhaseShuttingDown))
	c.view.Close()
	if c.session != nil {
		c.session.Stop()
	}
	if c.monitorEntered {
		c.wifi.RestoreManaged(c.iface)
	}
	c.phase.Store(int32(PhaseFinalized))
}

// report generates the final report inside a recover boundary: interface
// restoration must still run even if the reporter panics.
func (c *Coordinator) report(records []snapshot.AccessPoint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report generation panicked: %v", r)
		}
	}()
	return c.reporter.Generate(records, c.outputDir, c.iface.Name)
}

// outputDir returns base/<date>/<time> for a scan started at now.
func outputDir(base string, now time.Time) string {
	return filepath.Join(base, now.Format("02-01-2006"), now.Format("03:04 PM"))
}
