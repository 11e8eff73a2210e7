package midiout

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// PreferredPatterns are picked before any other output when no explicit
// pattern is configured.
var PreferredPatterns = []string{"FluidSynth", "TiMidity", "Synth"}

// ExcludedPatterns are never connected automatically.
var ExcludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

// RescanInterval is how often Tick looks at the port list.
const RescanInterval = time.Second

// Port is the slice of a MIDI output the watcher needs.
type Port interface {
	Open() error
	Close() error
	String() string
	Send(msg []byte) error
}

// PortWatcher keeps a Driver attached to the best available output. It
// reconnects when the port disappears and a suitable one shows up again.
type PortWatcher struct {
	mu           sync.Mutex
	list         func() ([]Port, error)
	closeDrv     func() error
	driver       *Driver
	pattern      string
	port         Port
	selectedName string
	lastRescanAt time.Time
	now          func() time.Time
	log          *slog.Logger
}

// NewPortWatcher opens the rtmidi driver and returns a watcher feeding d.
// pattern, when non-empty, must match the port name (case-insensitive
// substring). log may be nil.
func NewPortWatcher(d *Driver, pattern string, log *slog.Logger) (*PortWatcher, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	w := newPortWatcher(d, pattern, log, outsOf(drv))
	w.closeDrv = drv.Close
	return w, nil
}

func newPortWatcher(d *Driver, pattern string, log *slog.Logger, list func() ([]Port, error)) *PortWatcher {
	if log == nil {
		log = slog.Default()
	}
	return &PortWatcher{
		list:    list,
		driver:  d,
		pattern: pattern,
		now:     time.Now,
		log:     log,
	}
}

func outsOf(drv drivers.Driver) func() ([]Port, error) {
	return func() ([]Port, error) {
		outs, err := drv.Outs()
		if err != nil {
			return nil, err
		}
		ports := make([]Port, 0, len(outs))
		for _, o := range outs {
			ports = append(ports, o)
		}
		return ports, nil
	}
}

// ListPorts returns the names of all MIDI outputs, excluded ones included.
func ListPorts() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	defer drv.Close()

	outs, err := drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("midi: list outputs: %w", err)
	}
	names := make([]string, 0, len(outs))
	for _, o := range outs {
		names = append(names, o.String())
	}
	return names, nil
}

// Connect scans immediately and returns ErrNoPort when nothing could be
// opened.
func (w *PortWatcher) Connect() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRescanAt = time.Time{}
	w.rescan()
	if w.port == nil {
		return ErrNoPort
	}
	return nil
}

// Connected returns the name of the open port.
func (w *PortWatcher) Connected() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedName, w.port != nil
}

// Tick should be called regularly from the main loop. It rescans at most
// once per RescanInterval.
func (w *PortWatcher) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rescan()
}

// Close detaches the driver and releases the port and rtmidi driver.
func (w *PortWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closePort()
	if w.closeDrv != nil {
		_ = w.closeDrv()
		w.closeDrv = nil
	}
}

func (w *PortWatcher) rescan() {
	now := w.now()
	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < RescanInterval {
		return
	}
	w.lastRescanAt = now

	ports := w.candidates()
	if w.port != nil {
		for _, p := range ports {
			if p.String() == w.selectedName {
				return
			}
		}
		w.log.Warn("midi: port disappeared", "port", w.selectedName)
		w.closePort()
		w.lastRescanAt = time.Time{}
		return
	}

	p, ok := w.pick(ports)
	if !ok {
		return
	}
	if err := w.open(p); err != nil {
		w.log.Error("midi: connect failed", "port", p.String(), "err", err)
	}
}

func (w *PortWatcher) candidates() []Port {
	all, err := w.list()
	if err != nil {
		w.log.Error("midi: list outputs failed", "err", err)
		return nil
	}
	var ports []Port
	var names []string
	for _, p := range all {
		name := p.String()
		if matchesAny(name, ExcludedPatterns) {
			w.log.Debug("midi: output excluded", "port", name)
			continue
		}
		ports = append(ports, p)
		names = append(names, name)
	}
	w.log.Debug("midi: outputs found", "count", len(names), "ports", strings.Join(names, ", "))
	return ports
}

func (w *PortWatcher) pick(ports []Port) (Port, bool) {
	if w.pattern != "" {
		for _, p := range ports {
			if containsCI(p.String(), w.pattern) {
				return p, true
			}
		}
		return nil, false
	}
	for _, pat := range PreferredPatterns {
		for _, p := range ports {
			if containsCI(p.String(), pat) {
				return p, true
			}
		}
	}
	if len(ports) > 0 {
		return ports[0], true
	}
	return nil, false
}

func (w *PortWatcher) open(p Port) error {
	if err := p.Open(); err != nil {
		return fmt.Errorf("open %q: %w", p.String(), err)
	}
	w.port = p
	w.selectedName = p.String()
	w.driver.SetSink(p)
	if err := w.driver.Init(); err != nil {
		w.log.Warn("midi: program setup failed", "port", w.selectedName, "err", err)
	}
	w.log.Info("midi: connected", "port", w.selectedName)
	return nil
}

func (w *PortWatcher) closePort() {
	if w.port == nil {
		return
	}
	w.driver.SetSink(nil)
	_ = w.port.Close()
	w.port = nil
	w.selectedName = ""
}

func matchesAny(name string, patterns []string) bool {
	for _, pat := range patterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
