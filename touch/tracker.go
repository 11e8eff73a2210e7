// Package touch tracks pointers (mouse or fingers) across the string area and
// reports strikes and strum crossings per pointer.
package touch

import (
	"math"

	"github.com/cwbudde/chordharp/layout"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/strum"
)

// PointerID identifies one pointer for the lifetime of a gesture.
type PointerID uint64

// Phase is the stage of a pointer gesture.
type Phase uint8

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	default:
		return "cancel"
	}
}

// Event is a single pointer sample. YNorm is the vertical position in [0,1]
// and Pressure a best-effort finger pressure in [0,1].
type Event struct {
	ID       PointerID `json:"id"`
	Phase    Phase     `json:"phase"`
	X        float32   `json:"x"`
	YNorm    float32   `json:"y_norm"`
	Pressure float32   `json:"pressure"`
}

// Output is what a single event produced. Strike is set when play-on-tap
// picked a string on touch-down.
type Output struct {
	Strike    *notes.UnkeyedNote
	Crossings []strum.Crossing
}

// AllowFunc reports whether a note may be struck on a row.
type AllowFunc func(row layout.Row, note notes.UnkeyedNote) bool

type lastPos struct {
	row layout.Row
	x   float32
}

type struckNote struct {
	row  layout.Row
	note notes.UnkeyedNote
}

// Tracker keeps per-pointer state. Pointers are independent of each other
// except that a note claimed by one pointer's tap is not re-strummed by any
// pointer on that row until the claim is released.
type Tracker struct {
	last      map[PointerID]lastPos
	struck    map[PointerID]struckNote
	playOnTap bool
}

// NewTracker returns a tracker with play-on-tap enabled.
func NewTracker() *Tracker {
	return &Tracker{
		last:      make(map[PointerID]lastPos),
		struck:    make(map[PointerID]struckNote),
		playOnTap: true,
	}
}

// SetPlayOnTap toggles striking the nearest allowed string on touch-down.
func (t *Tracker) SetPlayOnTap(enabled bool) { t.playOnTap = enabled }

// PlayOnTap reports the current play-on-tap setting.
func (t *Tracker) PlayOnTap() bool { return t.playOnTap }

// Active returns the number of pointers currently down.
func (t *Tracker) Active() int { return len(t.last) }

func (t *Tracker) isStruck(n notes.UnkeyedNote) bool {
	for _, s := range t.struck {
		if s.note == n {
			return true
		}
	}
	return false
}

// nearest picks the closest unclaimed, allowed note. Ties go to the higher
// note (higher pitch).
func (t *Tracker) nearest(row layout.Row, x float32, positions []float32, allowed AllowFunc) (notes.UnkeyedNote, bool) {
	best := -1
	bestD := math.Inf(1)
	for i, nx := range positions {
		n := notes.UnkeyedNote(i)
		if t.isStruck(n) || (allowed != nil && !allowed(row, n)) {
			continue
		}
		d := math.Abs(float64(nx - x))
		if d <= bestD && !math.IsInf(d, 1) {
			bestD = d
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return notes.UnkeyedNote(best), true
}

// Handle processes one event against the current note positions.
func (t *Tracker) Handle(ev Event, positions []float32, allowed AllowFunc) Output {
	row := layout.RowForY(ev.YNorm)

	switch ev.Phase {
	case PhaseDown:
		t.last[ev.ID] = lastPos{row: row, x: ev.X}
		if !t.playOnTap {
			return Output{}
		}
		n, ok := t.nearest(row, ev.X, positions, allowed)
		if !ok {
			return Output{}
		}
		t.struck[ev.ID] = struckNote{row: row, note: n}
		return Output{Strike: &n}

	case PhaseMove:
		prev, ok := t.last[ev.ID]
		t.last[ev.ID] = lastPos{row: row, x: ev.X}
		if !ok {
			return Output{}
		}
		if prev.row != row {
			delete(t.struck, ev.ID)
			return Output{}
		}

		var claimed []notes.UnkeyedNote
		for _, s := range t.struck {
			if s.row == row {
				claimed = append(claimed, s.note)
			}
		}

		crossings := strum.DetectCrossings(prev.x, ev.X, positions)

		if own, ok := t.struck[ev.ID]; ok && own.row == row && strummedOther(crossings, own.note) {
			delete(t.struck, ev.ID)
		}
		if len(claimed) > 0 {
			crossings = dropClaimed(crossings, claimed)
		}
		return Output{Crossings: crossings}

	default:
		delete(t.last, ev.ID)
		delete(t.struck, ev.ID)
		return Output{}
	}
}

func strummedOther(crossings []strum.Crossing, note notes.UnkeyedNote) bool {
	for _, c := range crossings {
		for _, n := range c.Notes {
			if n != note {
				return true
			}
		}
	}
	return false
}

func dropClaimed(crossings []strum.Crossing, claimed []notes.UnkeyedNote) []strum.Crossing {
	out := crossings[:0]
	for _, c := range crossings {
		kept := c.Notes[:0]
		for _, n := range c.Notes {
			if !containsNote(claimed, n) {
				kept = append(kept, n)
			}
		}
		if len(kept) > 0 {
			c.Notes = kept
			out = append(out, c)
		}
	}
	return out
}

func containsNote(list []notes.UnkeyedNote, n notes.UnkeyedNote) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
