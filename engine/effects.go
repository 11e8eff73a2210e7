package engine

import "github.com/cwbudde/chordharp/notes"

// Default velocities.
const (
	StrumVolume notes.NoteVolume = 70
	PulseVolume notes.NoteVolume = 50
)

// NoteOn asks the output to start a note.
type NoteOn struct {
	Note   notes.UnmidiNote
	Volume notes.NoteVolume
}

// Effects is everything the outside world must do after an event. Stops are
// always dispatched before plays.
type Effects struct {
	PlayNotes []NoteOn
	StopNotes []notes.UnmidiNote
	Redraw    bool
	ChangeKey *notes.Transpose
	// Pulse is set when a pulse action was received. It has no audible
	// effect yet.
	Pulse bool
	// DampedStrums counts crossings that passed only non-chord strings.
	DampedStrums int
}

// Merge folds o into e: redraw and pulse are OR-ed, the first key change
// wins and note lists are appended in order.
func (e *Effects) Merge(o Effects) {
	e.Redraw = e.Redraw || o.Redraw
	e.Pulse = e.Pulse || o.Pulse
	if e.ChangeKey == nil {
		e.ChangeKey = o.ChangeKey
	}
	e.StopNotes = append(e.StopNotes, o.StopNotes...)
	e.PlayNotes = append(e.PlayNotes, o.PlayNotes...)
	e.DampedStrums += o.DampedStrums
}

// Empty reports whether the effects carry nothing to do.
func (e *Effects) Empty() bool {
	return !e.Redraw && !e.Pulse && e.ChangeKey == nil && len(e.StopNotes) == 0 &&
		len(e.PlayNotes) == 0 && e.DampedStrums == 0
}
