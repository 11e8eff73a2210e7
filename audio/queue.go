// Package audio moves note messages from the UI thread to a synthesizer
// running on the audio thread, and binds that synthesizer to a device.
//
// The UI side owns a Sender and pushes Msg values; exactly one Receiver
// drains them, either inside a device callback (Stream) or inside a render
// call made by the UI itself (Polled).
package audio

import (
	"errors"
	"sync"

	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/synth"
)

var (
	// ErrChannelClosed is returned by sends after the channel was closed or
	// replaced.
	ErrChannelClosed = errors.New("audio: channel closed")
	// ErrQueueFull is returned when the audio thread has fallen behind.
	ErrQueueFull = errors.New("audio: queue full")
	// ErrNoOutput is returned when no audio device could be opened.
	ErrNoOutput = errors.New("audio: no output")
)

// DefaultQueueSize bounds the number of undrained messages.
const DefaultQueueSize = 1024

// MsgKind identifies a Msg.
type MsgKind uint8

const (
	MsgNoteOn MsgKind = iota
	MsgNoteOff
	MsgSetSampleRate
	MsgSetA4Tuning
	MsgAllNotesOff
	MsgSetTone
)

// Msg is one instruction for the synthesizer.
type Msg struct {
	Kind   MsgKind
	Note   notes.MidiNote
	Volume notes.NoteVolume
	// Value carries the sample rate, tuning or tone cutoff in Hz.
	Value int
}

func (m Msg) apply(s *synth.Synth) {
	switch m.Kind {
	case MsgNoteOn:
		s.NoteOn(m.Note, m.Volume)
	case MsgNoteOff:
		s.NoteOff(m.Note)
	case MsgSetSampleRate:
		if m.Value > 0 {
			s.SetSampleRate(m.Value)
		}
	case MsgSetA4Tuning:
		s.SetTuning(m.Value)
	case MsgAllNotesOff:
		s.AllNotesOff()
	case MsgSetTone:
		s.SetTone(float32(m.Value))
	}
}

type queue struct {
	mu     sync.RWMutex
	ch     chan Msg
	closed bool
}

// Sender is the UI side of a channel. It is safe for concurrent use and may
// be shared freely.
type Sender struct {
	q *queue
}

// Receiver is the audio side of a channel. Only one goroutine may drain it.
type Receiver struct {
	q *queue
}

// NewChannel returns a connected sender and receiver holding at most size
// undrained messages.
func NewChannel(size int) (*Sender, *Receiver) {
	if size < 1 {
		size = DefaultQueueSize
	}
	q := &queue{ch: make(chan Msg, size)}
	return &Sender{q: q}, &Receiver{q: q}
}

// Send enqueues m without blocking.
func (s *Sender) Send(m Msg) error {
	s.q.mu.RLock()
	defer s.q.mu.RUnlock()
	if s.q.closed {
		return ErrChannelClosed
	}
	select {
	case s.q.ch <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close disconnects the channel. Messages already queued can still be
// drained.
func (s *Sender) Close() {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	if !s.q.closed {
		s.q.closed = true
		close(s.q.ch)
	}
}

// Closed reports whether Close was called.
func (s *Sender) Closed() bool {
	s.q.mu.RLock()
	defer s.q.mu.RUnlock()
	return s.q.closed
}

// sendNote is Send for note traffic. A closed channel means audio has
// ended, so the note is dropped without an error.
func (s *Sender) sendNote(m Msg) error {
	if err := s.Send(m); !errors.Is(err, ErrChannelClosed) {
		return err
	}
	return nil
}

// PlayNote queues a note-on.
func (s *Sender) PlayNote(n notes.MidiNote, v notes.NoteVolume) error {
	return s.sendNote(Msg{Kind: MsgNoteOn, Note: n, Volume: v})
}

// StopNote queues a note-off.
func (s *Sender) StopNote(n notes.MidiNote) error {
	return s.sendNote(Msg{Kind: MsgNoteOff, Note: n})
}

// Micro is a no-op; the synthesizer has no click voice.
func (s *Sender) Micro() error { return nil }

// SetSampleRate tells the synthesizer the device rate.
func (s *Sender) SetSampleRate(hz int) error {
	return s.Send(Msg{Kind: MsgSetSampleRate, Value: hz})
}

// SetTuning sets the A4 reference; the synthesizer clamps it.
func (s *Sender) SetTuning(a4Hz int) error {
	return s.Send(Msg{Kind: MsgSetA4Tuning, Value: a4Hz})
}

// SetTone sets the output low-pass cutoff; 0 disables it.
func (s *Sender) SetTone(cutoffHz int) error {
	return s.Send(Msg{Kind: MsgSetTone, Value: cutoffHz})
}

// AllNotesOff releases every sounding voice.
func (s *Sender) AllNotesOff() error {
	return s.Send(Msg{Kind: MsgAllNotesOff})
}

// Drain applies every pending message to s and returns how many were
// applied. It never blocks.
func (r *Receiver) Drain(s *synth.Synth) int {
	n := 0
	for {
		select {
		case m, ok := <-r.q.ch:
			if !ok {
				return n
			}
			m.apply(s)
			n++
		default:
			return n
		}
	}
}
