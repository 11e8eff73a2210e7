// Package wheel maps a held chord button and an eight-way swipe direction to
// a chord modifier preset.
package wheel

import (
	"math"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/engine"
)

// Direction is a compass direction, clockwise from north.
type Direction uint8

const (
	N Direction = iota
	NE
	E
	SE
	S
	SW
	W
	NW
)

var directionNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "?"
}

// FromInt converts a 0..7 index. Anything else is rejected.
func FromInt(i int) (Direction, bool) {
	if i < 0 || i > int(NW) {
		return 0, false
	}
	return Direction(i), true
}

// FromVector picks the direction of a swipe in screen coordinates (y grows
// downward). Swipes shorter than deadzone have no direction.
func FromVector(dx, dy, deadzone float32) (Direction, bool) {
	if dx*dx+dy*dy < deadzone*deadzone {
		return 0, false
	}
	// Angle clockwise from north.
	a := math.Atan2(float64(dx), float64(-dy))
	if a < 0 {
		a += 2 * math.Pi
	}
	sector := int(math.Floor(a/(math.Pi/4)+0.5)) % 8
	return Direction(sector), true
}

// IsMajorDegree reports whether the button's triad is major in the key.
// Heptatonic counts as a minor degree.
func IsMajorDegree(b engine.ChordButton) bool {
	switch b {
	case engine.ChordVIIB, engine.ChordIV, engine.ChordI, engine.ChordV:
		return true
	}
	return false
}

const (
	m7     = chord.ModAddMinor7
	maj7   = chord.ModAddMajor7
	add2   = chord.ModAddMajor2
	swap   = chord.ModSwitchMinorMajor
	sus4   = chord.ModSus4
	ninth  = m7 | add2
	noMods = chord.Modifiers(0)
)

var majorPresets = [8]chord.Modifiers{
	N:  m7,
	NE: ninth,
	E:  add2,
	SE: swap | ninth,
	S:  swap | m7,
	SW: swap | maj7,
	W:  sus4,
	NW: maj7,
}

var minorPresets = [8]chord.Modifiers{
	N:  swap | m7,
	NE: swap | ninth,
	E:  add2,
	SE: ninth,
	S:  m7,
	SW: maj7,
	W:  sus4,
	NW: swap | maj7,
}

// ModifiersFor returns the preset for button b swiped toward d.
func ModifiersFor(b engine.ChordButton, d Direction) chord.Modifiers {
	if d > NW {
		return noMods
	}
	if IsMajorDegree(b) {
		return majorPresets[d]
	}
	return minorPresets[d]
}
