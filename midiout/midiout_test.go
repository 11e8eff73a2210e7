package midiout

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cwbudde/chordharp/notes"
)

type recordingSink struct {
	msgs [][]byte
	err  error
}

func (s *recordingSink) Send(msg []byte) error {
	s.msgs = append(s.msgs, append([]byte(nil), msg...))
	return s.err
}

func TestSplitVelocityZeroMutesBoth(t *testing.T) {
	p := SplitVelocity(60, 0)
	if p != (VelocityPair{}) {
		t.Fatalf("zero volume: got=%+v want=zero", p)
	}
}

func TestSplitVelocityRangeEnds(t *testing.T) {
	low := SplitVelocity(0, 100)
	if low.Main != 50 || low.Bass != 100 {
		t.Fatalf("low note: got=%+v want={50 100}", low)
	}
	high := SplitVelocity(127, 100)
	if high.Main != 100 || high.Bass != 0 {
		t.Fatalf("high note: got=%+v want={100 0}", high)
	}
}

func TestSplitVelocityNeverExceedsMidiRange(t *testing.T) {
	for n := 0; n <= 127; n++ {
		for v := notes.NoteVolume(1); v <= 127; v++ {
			p := SplitVelocity(notes.MidiNote(n), v)
			if p.Main > 127 || p.Bass > 127 {
				t.Fatalf("note %d vol %d: got=%+v", n, v, p)
			}
			// The two layers together stay within 1.5x the requested
			// velocity, plus one step of rounding per layer.
			if sum := int(p.Main) + int(p.Bass); sum > 2*int(v) || float64(sum) > 1.5*float64(v)+1 {
				t.Fatalf("note %d vol %d: combined velocity %d too loud", n, v, sum)
			}
			if p.Main == 0 && p.Bass == 0 {
				t.Fatalf("note %d vol %d: both channels silent", n, v)
			}
		}
	}
}

func TestPlayNoteSendsBassRearticulation(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(sink)
	if err := d.PlayNote(50, 90); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	pair := SplitVelocity(50, 90)
	want := [][]byte{
		{0x90 | MainChannel, 50, pair.Main},
		{0x80 | BassChannel, 50, 0},
		{0x90 | BassChannel, 50, pair.Bass},
	}
	assertMessages(t, sink.msgs, want)
}

func TestPlayNoteHighSkipsBass(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(sink)
	if err := d.PlayNote(90, 100); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	assertMessages(t, sink.msgs, [][]byte{{0x90 | MainChannel, 90, 100}})
}

func TestStopNoteReleasesBothChannels(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(sink)
	if err := d.StopNote(64); err != nil {
		t.Fatalf("StopNote: %v", err)
	}
	assertMessages(t, sink.msgs, [][]byte{
		{0x80 | MainChannel, 64, 0},
		{0x80 | BassChannel, 64, 0},
	})
}

func TestMicroClick(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(sink)
	if err := d.Micro(); err != nil {
		t.Fatalf("Micro: %v", err)
	}
	assertMessages(t, sink.msgs, [][]byte{
		{0x90 | MicroChannel, byte(MicroNote), MicroVelocity},
		{0x80 | MicroChannel, byte(MicroNote), 0},
	})
}

func TestInitSelectsPrograms(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(sink)
	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	assertMessages(t, sink.msgs, [][]byte{
		{0xC0 | MainChannel, MainProgram},
		{0xC0 | BassChannel, BassProgram},
		{0xC0 | MicroChannel, MicroProgram},
	})
}

func TestDisconnectedDriverIsSilent(t *testing.T) {
	d := NewDriver(nil)
	if d.Available() {
		t.Fatalf("Available: got=true want=false")
	}
	if err := d.PlayNote(60, 100); err != nil {
		t.Fatalf("PlayNote without sink: %v", err)
	}
}

func TestSendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	d := NewDriver(&recordingSink{err: boom})
	err := d.StopNote(60)
	if !errors.Is(err, boom) {
		t.Fatalf("StopNote error: got=%v want wrapping %v", err, boom)
	}
}

func assertMessages(t *testing.T, got, want [][]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("message count: got=%d want=%d (%x)", len(got), len(want), got)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("message %d: got=%x want=%x", i, got[i], want[i])
		}
	}
}

type fakePort struct {
	name   string
	open   bool
	sent   int
	closed int
}

func (p *fakePort) Open() error {
	p.open = true
	return nil
}

func (p *fakePort) Close() error {
	p.open = false
	p.closed++
	return nil
}

func (p *fakePort) String() string { return p.name }

func (p *fakePort) Send([]byte) error {
	p.sent++
	return nil
}

type portFixture struct {
	ports []Port
	now   time.Time
}

func newTestWatcher(f *portFixture, pattern string) (*PortWatcher, *Driver) {
	d := NewDriver(nil)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := newPortWatcher(d, pattern, log, func() ([]Port, error) { return f.ports, nil })
	w.now = func() time.Time { return f.now }
	return w, d
}

func TestWatcherPrefersSynthAndSkipsThrough(t *testing.T) {
	through := &fakePort{name: "Midi Through Port-0"}
	other := &fakePort{name: "USB Keyboard"}
	synth := &fakePort{name: "FLUID Synth (1234)"}
	f := &portFixture{ports: []Port{through, other, synth}, now: time.Unix(100, 0)}
	w, d := newTestWatcher(f, "")

	if err := w.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	name, ok := w.Connected()
	if !ok || name != synth.name {
		t.Fatalf("connected: got=%q,%v want=%q", name, ok, synth.name)
	}
	if !d.Available() {
		t.Fatalf("driver not attached")
	}
	// Program changes go out on connect.
	if synth.sent != 3 {
		t.Fatalf("init messages: got=%d want=3", synth.sent)
	}
}

func TestWatcherPatternWins(t *testing.T) {
	a := &fakePort{name: "FLUID Synth"}
	b := &fakePort{name: "Hardware Out"}
	f := &portFixture{ports: []Port{a, b}, now: time.Unix(100, 0)}
	w, _ := newTestWatcher(f, "hardware")

	if err := w.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if name, _ := w.Connected(); name != b.name {
		t.Fatalf("connected: got=%q want=%q", name, b.name)
	}
}

func TestWatcherNoPort(t *testing.T) {
	f := &portFixture{ports: []Port{&fakePort{name: "Midi Through"}}, now: time.Unix(100, 0)}
	w, _ := newTestWatcher(f, "")
	if err := w.Connect(); !errors.Is(err, ErrNoPort) {
		t.Fatalf("Connect: got=%v want=%v", err, ErrNoPort)
	}
}

func TestWatcherHotPlug(t *testing.T) {
	p := &fakePort{name: "USB Synth"}
	f := &portFixture{ports: []Port{p}, now: time.Unix(100, 0)}
	w, d := newTestWatcher(f, "")
	if err := w.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Unplugged, but the next scan is not due yet.
	f.ports = nil
	f.now = f.now.Add(RescanInterval / 2)
	w.Tick()
	if _, ok := w.Connected(); !ok {
		t.Fatalf("dropped before rescan interval")
	}

	f.now = f.now.Add(RescanInterval)
	w.Tick()
	if _, ok := w.Connected(); ok {
		t.Fatalf("still connected after unplug")
	}
	if d.Available() || p.closed != 1 {
		t.Fatalf("after unplug: available=%v closed=%d", d.Available(), p.closed)
	}

	// Replugged: the disappearance forces an immediate rescan.
	f.ports = []Port{p}
	w.Tick()
	if name, ok := w.Connected(); !ok || name != p.name {
		t.Fatalf("replug: got=%q,%v", name, ok)
	}
}
