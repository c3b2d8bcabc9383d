// Package demo provides synthetic stand-ins for the wireless controller and
// the capture supervisor, so the whole pipeline — parser, live view, report,
// shutdown ordering — can run without root or wireless hardware.
package demo

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kestrelsec/wifiscout/internal/wireless"
)

// InterfaceName is the pretend interface a demo run reports.
const InterfaceName = "demo0"

// Controller satisfies the scan coordinator's interface-controller boundary
// without touching host networking state.
type Controller struct{}

func (Controller) Select() (wireless.Interface, error) {
	return wireless.Interface{Name: InterfaceName, Mode: wireless.ModeManaged}, nil
}

func (Controller) EnterMonitor(ifc wireless.Interface) (wireless.Interface, error) {
	log.Printf("[demo] pretending to enable monitor mode on %s", ifc.Name)
	ifc.Mode = wireless.ModeMonitor
	return ifc, nil
}

func (Controller) RestoreManaged(ifc wireless.Interface) {
	log.Printf("[demo] pretending to restore managed mode on %s", ifc.Name)
}

// Capturer mimics the external capture tool: it rewrites an airodump-shaped
// CSV snapshot on a fixed cadence from its own goroutine, communicating with
// the scan loop through the filesystem exactly like the real tool.
type Capturer struct {
	// WriteInterval is how often the snapshot file is rewritten.
	WriteInterval time.Duration
}

// NewCapturer returns a Capturer with the real tool's write cadence.
func NewCapturer() *Capturer {
	return &Capturer{WriteInterval: time.Second}
}

// Start writes the first snapshot under outputPrefix and begins rewriting it
// until the session is stopped. More of the synthetic pool becomes visible
// with every rewrite, so the live view has something to show growing.
func (c *Capturer) Start(iface, outputPrefix string) (*Session, error) {
	s := &Session{
		csvPath: outputPrefix + "-01.csv",
		started: time.Now(),
		done:    make(chan struct{}),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.writeSnapshot(1); err != nil {
		return nil, fmt.Errorf("write demo snapshot: %w", err)
	}
	log.Printf("[demo] synthetic capture started on %s, output prefix %s", iface, outputPrefix)
	s.wg.Add(1)
	go s.run(c.WriteInterval)
	return s, nil
}

// Session is one running synthetic capture.
type Session struct {
	csvPath string
	started time.Time
	done    chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once
	rng     *rand.Rand
	writes  int
}

// CSVPath returns the snapshot file the session maintains.
func (s *Session) CSVPath() string { return s.csvPath }

// Stop ends the writer goroutine and leaves the last snapshot on disk for
// the final parse. Safe to call more than once.
func (s *Session) Stop() {
	s.stop.Do(func() {
		close(s.done)
		s.wg.Wait()
		log.Printf("[demo] synthetic capture stopped")
	})
}

func (s *Session) run(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	visible := 1
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if visible < len(demoPool) {
				visible++
			}
			if err := s.writeSnapshot(visible); err != nil {
				log.Printf("[demo] snapshot write failed: %v", err)
			}
		}
	}
}

type demoAP struct {
	bssid   string
	ssid    string
	channel string
	privacy string
	cipher  string
	auth    string
	power   int
}

// demoPool is the fixed set of synthetic networks, strongest first. The
// third entry withholds its name to exercise the Hidden substitution.
var demoPool = []demoAP{
	{"A4:2B:8C:11:E5:F0", "HomeNet", "6", "WPA2", "CCMP", "PSK", -38},
	{"B0:C7:45:3A:91:DE", "CoffeeShop Guest", "1", "OPN", "", "", -52},
	{"C8:3A:35:FF:02:11", "", "11", "WPA2", "CCMP", "PSK", -47},
	{"10:68:3F:6B:33:C7", "It Hurts When IP", "36", "WPA3", "CCMP", "SAE", -58},
	{"D4:01:C3:7E:A8:55", "PineappleExpress", "3", "WPA2", "CCMP", "PSK", -64},
	{"28:C6:8E:CE:47:9B", "linksys", "11", "WEP", "WEP", "", -73},
	{"00:09:0F:44:55:66", "Attic-5G", "149", "WPA2", "CCMP", "PSK", -79},
	{"AC:67:06:DD:EE:01", "DO-NOT-CONNECT", "6", "OPN", "", "", -84},
}

const timeLayout = "2006-01-02 15:04:05"

// writeSnapshot rewrites the whole file in the capture tool's two-table
// layout: AP table first, then the station table the parser ignores.
func (s *Session) writeSnapshot(visible int) error {
	now := time.Now()
	first := s.started.Format(timeLayout)
	last := now.Format(timeLayout)

	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString("BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key\r\n")
	for i, ap := range demoPool[:visible] {
		power := ap.power + s.rng.Intn(7) - 3
		beacons := (s.writes+1)*12 - i*3
		fmt.Fprintf(&b, "%s, %s, %s, %3s,  54, %s, %s, %s, %4d, %5d,    0,   0.  0.  0.  0, %3d, %s, \r\n",
			ap.bssid, first, last, ap.channel, ap.privacy, ap.cipher, ap.auth,
			power, beacons, len(ap.ssid), ap.ssid)
	}
	b.WriteString("\r\n")
	b.WriteString("Station MAC, First time seen, Last time seen, Power, # packets, BSSID, Probed ESSIDs\r\n")
	fmt.Fprintf(&b, "3C:71:BF:0D:2A:91, %s, %s, -60, %5d, %s, %s\r\n",
		first, last, 40+s.writes*4, demoPool[0].bssid, demoPool[0].ssid)
	b.WriteString("\r\n")

	s.writes++
	return os.WriteFile(s.csvPath, []byte(b.String()), 0644)
}
