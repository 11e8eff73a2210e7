package session

import (
	"errors"

	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/notes"
)

// NoteSink is an output the effects of a session are sent to: the MIDI
// driver or the synthesizer's message queue.
type NoteSink interface {
	PlayNote(n notes.MidiNote, v notes.NoteVolume) error
	StopNote(n notes.MidiNote) error
	// Micro sends the short click used for strums across damped strings.
	// Sinks without one return nil.
	Micro() error
}

// Dispatch sends effects to sink, offset by base. Stops are sent before
// plays so a retriggered note is released before it starts again. Notes
// that land outside the MIDI range are skipped. Every note is attempted;
// the errors are joined.
func Dispatch(e engine.Effects, sink NoteSink, base notes.Transpose) error {
	if sink == nil {
		return nil
	}
	var errs []error
	for _, n := range e.StopNotes {
		m, ok := base.Midi(n)
		if !ok {
			continue
		}
		if err := sink.StopNote(m); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range e.PlayNotes {
		m, ok := base.Midi(p.Note)
		if !ok {
			continue
		}
		if err := sink.PlayNote(m, p.Volume); err != nil {
			errs = append(errs, err)
		}
	}
	for i := 0; i < e.DampedStrums; i++ {
		if err := sink.Micro(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
