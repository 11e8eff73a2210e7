package session

import (
	"sort"
	"testing"
	"time"

	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/touch"
)

func linearPositions(n int) []float32 {
	p := make([]float32, n)
	for i := range p {
		p[i] = float32(i)
	}
	return p
}

func down(id touch.PointerID, x float32) UiEvent {
	return TouchEvent(touch.Event{ID: id, Phase: touch.PhaseDown, X: x, YNorm: 0.25, Pressure: 1})
}

func move(id touch.PointerID, x float32) UiEvent {
	return TouchEvent(touch.Event{ID: id, Phase: touch.PhaseMove, X: x, YNorm: 0.25, Pressure: 1})
}

func key(state engine.KeyState, r rune) UiEvent {
	return KeyEvent(state, input.Char(r))
}

func upEvent(id touch.PointerID) touch.Event {
	return touch.Event{ID: id, Phase: touch.PhaseUp, YNorm: 0.25}
}

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1000, 0)} }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func sortedNotes(ns []notes.UnmidiNote) []notes.UnmidiNote {
	out := append([]notes.UnmidiNote(nil), ns...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func requireSameState(t *testing.T, a, b *UiSession) {
	t.Helper()
	ca, oka := a.State().ActiveChord()
	cb, okb := b.State().ActiveChord()
	if ca != cb || oka != okb {
		t.Fatalf("active chord: got=%v want=%v", cb, ca)
	}
	na, nb := a.State().ActiveNotes(), b.State().ActiveNotes()
	if len(na) != len(nb) {
		t.Fatalf("active notes: got=%v want=%v", nb, na)
	}
	for i := range na {
		if na[i] != nb[i] {
			t.Fatalf("active notes: got=%v want=%v", nb, na)
		}
	}
	if a.State().Transpose() != b.State().Transpose() {
		t.Fatalf("transpose: got=%v want=%v", b.State().Transpose(), a.State().Transpose())
	}
}

type sinkCall struct {
	op   string
	note notes.MidiNote
	vel  notes.NoteVolume
}

type recordingSink struct {
	calls []sinkCall
}

func (r *recordingSink) PlayNote(n notes.MidiNote, v notes.NoteVolume) error {
	r.calls = append(r.calls, sinkCall{"play", n, v})
	return nil
}

func (r *recordingSink) StopNote(n notes.MidiNote) error {
	r.calls = append(r.calls, sinkCall{"stop", n, 0})
	return nil
}

func (r *recordingSink) Micro() error {
	r.calls = append(r.calls, sinkCall{op: "micro"})
	return nil
}
