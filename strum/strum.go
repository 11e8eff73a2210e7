// Package strum turns a one-dimensional pointer motion into the string
// boundaries it crossed.
package strum

import "github.com/cwbudde/chordharp/notes"

// Crossing is one string boundary passed by a motion. Notes lists every note
// laid out at that x, in ascending order.
type Crossing struct {
	X     float32
	Notes []notes.UnkeyedNote
}

// DetectCrossings returns the boundaries crossed moving from x1 to x2 over
// positions, which must be sorted ascending and indexed by UnkeyedNote.
// Consecutive equal positions form a single boundary.
//
// A boundary at x fires when min(x1,x2) < x <= max(x1,x2). The open lower
// bound keeps a pointer that reverses exactly on a string from striking it
// twice.
func DetectCrossings(x1, x2 float32, positions []float32) []Crossing {
	lo, hi := x1, x2
	if lo > hi {
		lo, hi = hi, lo
	}

	var out []Crossing
	for i := 0; i < len(positions); {
		x := positions[i]
		start := i
		for i < len(positions) && positions[i] == x {
			i++
		}
		if x > lo && x <= hi {
			group := make([]notes.UnkeyedNote, 0, i-start)
			for n := start; n < i; n++ {
				group = append(group, notes.UnkeyedNote(n))
			}
			out = append(out, Crossing{X: x, Notes: group})
		}
	}
	return out
}
