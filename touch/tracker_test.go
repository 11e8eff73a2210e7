package touch

import (
	"reflect"
	"testing"

	"github.com/cwbudde/chordharp/layout"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/strum"
)

const yTop = 0.25

func allowAll(layout.Row, notes.UnkeyedNote) bool { return true }

func ev(id PointerID, phase Phase, x float32) Event {
	return Event{ID: id, Phase: phase, X: x, YNorm: yTop, Pressure: 1}
}

func TestMoveEmitsCrossingsAndUpClearsState(t *testing.T) {
	positions := []float32{10, 20, 30}
	tr := NewTracker()
	tr.SetPlayOnTap(false)

	if out := tr.Handle(ev(1, PhaseDown, 5), positions, allowAll); out.Strike != nil || len(out.Crossings) != 0 {
		t.Fatalf("down should emit nothing, got %+v", out)
	}

	out := tr.Handle(ev(1, PhaseMove, 25), positions, allowAll)
	want := []strum.Crossing{
		{X: 10, Notes: []notes.UnkeyedNote{0}},
		{X: 20, Notes: []notes.UnkeyedNote{1}},
	}
	if !reflect.DeepEqual(out.Crossings, want) {
		t.Fatalf("crossings mismatch: got=%v want=%v", out.Crossings, want)
	}

	tr.Handle(ev(1, PhaseUp, 25), positions, allowAll)
	if tr.Active() != 0 {
		t.Fatalf("pointer should be released, active=%d", tr.Active())
	}
	if out := tr.Handle(ev(1, PhaseMove, 30), positions, allowAll); len(out.Crossings) != 0 {
		t.Fatalf("move without prior state should be silent, got %v", out.Crossings)
	}
	// The silent move seeded a position; the next one strums from there.
	out = tr.Handle(ev(1, PhaseMove, 5), positions, allowAll)
	if len(out.Crossings) != 3 {
		t.Fatalf("expected 3 crossings after reseeding, got %v", out.Crossings)
	}
}

func TestPointersAreIndependent(t *testing.T) {
	positions := []float32{10, 20, 30}
	tr := NewTracker()
	tr.SetPlayOnTap(false)

	tr.Handle(ev(1, PhaseDown, 0), positions, allowAll)
	tr.Handle(ev(2, PhaseDown, 100), positions, allowAll)

	out1 := tr.Handle(ev(1, PhaseMove, 15), positions, allowAll)
	if !reflect.DeepEqual(out1.Crossings, []strum.Crossing{{X: 10, Notes: []notes.UnkeyedNote{0}}}) {
		t.Fatalf("pointer 1 crossings: %v", out1.Crossings)
	}
	out2 := tr.Handle(ev(2, PhaseMove, 25), positions, allowAll)
	if !reflect.DeepEqual(out2.Crossings, []strum.Crossing{{X: 30, Notes: []notes.UnkeyedNote{2}}}) {
		t.Fatalf("pointer 2 crossings: %v", out2.Crossings)
	}
}

func TestTapStrikesNearestAllowedNote(t *testing.T) {
	positions := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	tr := NewTracker()
	triad := func(_ layout.Row, n notes.UnkeyedNote) bool {
		pc := n.WrapToOctave()
		return pc == 0 || pc == 4 || pc == 7
	}

	out := tr.Handle(ev(1, PhaseDown, 1.2), positions, triad)
	if out.Strike == nil || *out.Strike != 0 {
		t.Fatalf("expected strike on note 0, got %v", out.Strike)
	}

	// Note 0 is claimed by pointer 1; a second finger gets the next nearest.
	out = tr.Handle(ev(2, PhaseDown, 1.2), positions, triad)
	if out.Strike == nil || *out.Strike != 4 {
		t.Fatalf("expected strike on note 4, got %v", out.Strike)
	}
}

func TestTapTieBreaksTowardHigherNote(t *testing.T) {
	positions := []float32{10, 20, 30}
	tr := NewTracker()
	out := tr.Handle(ev(1, PhaseDown, 15), positions, allowAll)
	if out.Strike == nil || *out.Strike != 1 {
		t.Fatalf("expected the higher of two equidistant notes, got %v", out.Strike)
	}
}

func TestTapSkipsUnreachableStrings(t *testing.T) {
	positions := layout.MobileNotePositions(300)
	tr := NewTracker()
	white := func(_ layout.Row, n notes.UnkeyedNote) bool { return !notes.IsBlackKey(n) }
	out := tr.Handle(ev(1, PhaseDown, -50), positions, white)
	if out.Strike == nil || *out.Strike != layout.MobileLowestNote {
		t.Fatalf("expected strike on the lowest playable note, got %v", out.Strike)
	}
}

func TestStruckNoteLocksUntilAnotherNoteIsStrummed(t *testing.T) {
	positions := []float32{10, 20, 30}
	tr := NewTracker()

	out := tr.Handle(ev(1, PhaseDown, 19), positions, allowAll)
	if out.Strike == nil || *out.Strike != 1 {
		t.Fatalf("expected strike on note 1, got %v", out.Strike)
	}

	// Wiggling across the struck string does not re-trigger it.
	if out := tr.Handle(ev(1, PhaseMove, 21), positions, allowAll); len(out.Crossings) != 0 {
		t.Fatalf("struck note should be suppressed, got %v", out.Crossings)
	}

	// Moving on to another string releases the lock (the struck string is
	// still filtered out of this same motion).
	out = tr.Handle(ev(1, PhaseMove, 31), positions, allowAll)
	if !reflect.DeepEqual(out.Crossings, []strum.Crossing{{X: 30, Notes: []notes.UnkeyedNote{2}}}) {
		t.Fatalf("unexpected crossings: %v", out.Crossings)
	}

	out = tr.Handle(ev(1, PhaseMove, 15), positions, allowAll)
	want := []strum.Crossing{
		{X: 20, Notes: []notes.UnkeyedNote{1}},
		{X: 30, Notes: []notes.UnkeyedNote{2}},
	}
	if !reflect.DeepEqual(out.Crossings, want) {
		t.Fatalf("lock should be released: got=%v want=%v", out.Crossings, want)
	}
}

func TestRowChangeResetsStrum(t *testing.T) {
	positions := []float32{10, 20, 30}
	tr := NewTracker()
	tr.SetPlayOnTap(false)

	tr.Handle(ev(1, PhaseDown, 5), positions, allowAll)
	out := tr.Handle(Event{ID: 1, Phase: PhaseMove, X: 25, YNorm: 0.9}, positions, allowAll)
	if len(out.Crossings) != 0 {
		t.Fatalf("row change should not strum, got %v", out.Crossings)
	}
	out = tr.Handle(Event{ID: 1, Phase: PhaseMove, X: 35, YNorm: 0.9}, positions, allowAll)
	if len(out.Crossings) != 1 || out.Crossings[0].X != 30 {
		t.Fatalf("expected a crossing at 30 within the new row, got %v", out.Crossings)
	}
}
