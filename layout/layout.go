// Package layout places the instrument's strings across the display and maps
// chromatic notes onto them.
package layout

import "math"

// UnscaledRelativeXPositions are the desktop string positions as fractions of
// the window width, lowest string first.
var UnscaledRelativeXPositions = [...]float32{
	0.0203125, 0.051953125, 0.090234375, 0.1314453125,
	0.16328125, 0.1962890625, 0.233203125, 0.266015625,
	0.305859375, 0.3388671875, 0.375, 0.40546875,
	0.4494140625, 0.485546875, 0.5203125, 0.5552734375,
	0.592578125, 0.6296875, 0.6654296875, 0.7,
	0.7349609375, 0.7712890625, 0.8076171875, 0.8427734375,
	0.8806640625, 0.918359375, 0.95, 0.991796875,
}

// NumStrings is the desktop string count.
const NumStrings = len(UnscaledRelativeXPositions)

// NoteToStringInOctave maps each chromatic step to one of the seven strings
// of an octave. Accidentals share a string with a neighbouring degree.
var NoteToStringInOctave = [12]int{0, 0, 1, 1, 2, 3, 3, 4, 4, 5, 6, 6}

const stringsPerOctave = 7

// Mobile layout: fewer, evenly spaced strings starting two octaves up.
const (
	MobileNumStrings  = 22
	MobileLowestNote  = 24
	mobileEdgePadding = 2.0
)

// StringPositions returns the x coordinate of every desktop string.
func StringPositions(width float32) []float32 {
	out := make([]float32, NumStrings)
	for i, rel := range UnscaledRelativeXPositions {
		out[i] = rel * width
	}
	return out
}

// StringForNote returns the physical string index of a chromatic note
// counted from the lowest string.
func StringForNote(note int) int {
	return (note/12)*stringsPerOctave + NoteToStringInOctave[note%12]
}

// NotePositions returns an x position for every chromatic note, indexed by
// UnkeyedNote. Notes sharing a string repeat its position.
func NotePositions(width float32) []float32 {
	var positions []float32
	for note := 0; ; note++ {
		s := StringForNote(note)
		if s >= NumStrings {
			return positions
		}
		positions = append(positions, UnscaledRelativeXPositions[s]*width)
	}
}

// MobileNotePositions lays out MobileNumStrings evenly across the width.
func MobileNotePositions(width float32) []float32 {
	return MobileNotePositionsFrom(width, MobileLowestNote)
}

// MobileNotePositionsFrom is MobileNotePositions with a configurable lowest
// note. Indices below lowest are kept so the slice stays indexed by
// UnkeyedNote; their positions are -Inf, which no strum or tap can reach.
func MobileNotePositionsFrom(width float32, lowest int) []float32 {
	if width < 1 {
		width = 1
	}
	usable := width - 2*mobileEdgePadding
	if usable < 1 {
		usable = 1
	}
	step := usable / float32(MobileNumStrings-1)

	if lowest < 0 {
		lowest = 0
	}
	positions := make([]float32, lowest, lowest+MobileNumStrings*2)
	for i := range positions {
		positions[i] = float32(math.Inf(-1))
	}
	for rel := 0; ; rel++ {
		s := StringForNote(rel)
		if s >= MobileNumStrings {
			break
		}
		positions = append(positions, mobileEdgePadding+float32(s)*step)
	}
	return positions
}
