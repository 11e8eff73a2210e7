// Package midiout sends the instrument's notes to a MIDI output as two
// layered channels (a main voice and a bass voice whose balance follows
// pitch) plus a percussion channel for damped-string clicks.
package midiout

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/chordharp/notes"
)

// ErrNoPort is returned when no usable MIDI output port exists.
var ErrNoPort = errors.New("midiout: no output port")

// Sink accepts raw MIDI messages. A gomidi drivers.Out satisfies it.
type Sink interface {
	Send(msg []byte) error
}

const (
	MainChannel  uint8 = 0
	BassChannel  uint8 = 2
	MicroChannel uint8 = 3

	MainProgram  uint8 = 25 // steel string guitar
	BassProgram  uint8 = 26
	MicroProgram uint8 = 115 // wood block

	MicroNote     notes.MidiNote = 20
	MicroVelocity uint8          = 50

	// Below MainBassBottom the bass channel plays at full velocity, above
	// MainBassTop it is silent.
	MainBassBottom notes.MidiNote = 35
	MainBassTop    notes.MidiNote = 80
)

// VelocityPair holds the velocities sent to the main and bass channels for
// one note. Zero means the channel is not played.
type VelocityPair struct {
	Main uint8
	Bass uint8
}

// SplitVelocity crossfades v between the two channels. The bass fades out
// linearly over MainBassBottom..MainBassTop while the main channel fades in
// over twice that span, starting at half velocity.
func SplitVelocity(n notes.MidiNote, v notes.NoteVolume) VelocityPair {
	if v == 0 {
		return VelocityPair{}
	}
	mainFactor := notes.Clamp(n.Sub(MainBassBottom).Ratio(MainBassTop.Sub(MainBassBottom)), 0, 1)
	bassFactor := 1 - mainFactor
	mainFactor = 1 - 0.5*(1-mainFactor)

	return VelocityPair{
		Main: scaleVelocity(v, mainFactor),
		Bass: scaleVelocity(v, bassFactor),
	}
}

func scaleVelocity(v notes.NoteVolume, f float32) uint8 {
	x := math.Round(float64(v) * float64(f))
	if x <= 0 {
		return 0
	}
	return uint8(notes.Clamp(x, 1, 127))
}

// Driver renders note effects as MIDI messages. While no sink is attached
// every call is a silent no-op, so a frontend keeps working when the port
// goes away.
type Driver struct {
	mu   sync.Mutex
	out  Sink
	main uint8
	bass uint8
}

// NewDriver returns a driver on the default channels. out may be nil.
func NewDriver(out Sink) *Driver {
	return &Driver{out: out, main: MainChannel, bass: BassChannel}
}

// SetSink swaps the output. Passing nil disconnects.
func (d *Driver) SetSink(out Sink) {
	d.mu.Lock()
	d.out = out
	d.mu.Unlock()
}

// Available reports whether a sink is attached.
func (d *Driver) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out != nil
}

// Init selects the instrument programs on all three channels.
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(
		d.send(midi.ProgramChange(d.main, MainProgram)),
		d.send(midi.ProgramChange(d.bass, BassProgram)),
		d.send(midi.ProgramChange(MicroChannel, MicroProgram)),
	)
}

// PlayNote sounds n on both channels at the split velocities. The bass
// channel is released first so a repeated note re-articulates.
func (d *Driver) PlayNote(n notes.MidiNote, v notes.NoteVolume) error {
	pair := SplitVelocity(n, v)

	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	if pair.Main > 0 {
		errs = append(errs, d.noteOn(d.main, n, pair.Main))
	}
	if pair.Bass > 0 {
		errs = append(errs,
			d.send(midi.NoteOff(d.bass, uint8(n))),
			d.noteOn(d.bass, n, pair.Bass))
	}
	return errors.Join(errs...)
}

// StopNote releases n on both channels.
func (d *Driver) StopNote(n notes.MidiNote) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(
		d.send(midi.NoteOff(d.main, uint8(n))),
		d.send(midi.NoteOff(d.bass, uint8(n))),
	)
}

// Micro plays the short damped-string click.
func (d *Driver) Micro() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(
		d.noteOn(MicroChannel, MicroNote, MicroVelocity),
		d.send(midi.NoteOff(MicroChannel, uint8(MicroNote))),
	)
}

func (d *Driver) noteOn(ch uint8, n notes.MidiNote, vel uint8) error {
	if vel == 0 {
		return d.send(midi.NoteOff(ch, uint8(n)))
	}
	return d.send(midi.NoteOn(ch, uint8(n), vel))
}

func (d *Driver) send(msg midi.Message) error {
	if d.out == nil {
		return nil
	}
	if err := d.out.Send(msg); err != nil {
		return fmt.Errorf("midiout: send %v: %w", msg, err)
	}
	return nil
}
