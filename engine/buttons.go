package engine

import (
	"fmt"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/notes"
)

// KeyState is the press state carried by button events.
type KeyState uint8

const (
	Pressed KeyState = iota
	Released
)

func (s KeyState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// MarshalText encodes the state as "pressed" or "released".
func (s KeyState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText is the inverse of MarshalText.
func (s *KeyState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pressed":
		*s = Pressed
	case "released":
		*s = Released
	default:
		return fmt.Errorf("engine: bad key state %q", b)
	}
	return nil
}

// ChordButton selects a chord root.
type ChordButton uint8

const (
	ChordVIIB ChordButton = iota
	ChordIV
	ChordI
	ChordV
	ChordII
	ChordVI
	ChordIII
	ChordVII
	ChordHeptatonicMajor
)

var chordButtonNames = [...]string{"bVII", "IV", "I", "V", "II", "VI", "III", "VII", "HEPT"}

// String returns the roman-numeral label of the button.
func (b ChordButton) String() string {
	if int(b) < len(chordButtonNames) {
		return chordButtonNames[b]
	}
	return "?"
}

// ModButton is a held modifier key.
type ModButton uint8

const (
	ModMajor2 ModButton = iota
	ModMinor7
	ModMajor7
	ModSus4
	ModMinorMajor
	ModNo3
)

// ActionButton is a non-chord key.
type ActionButton uint8

const (
	ActionChangeKey ActionButton = iota
	ActionPulse
)

// Actions is the bitset of staged actions.
type Actions uint8

const (
	ActPulse Actions = 1 << iota
	ActChangeKey
)

const (
	rootVIIB notes.UnkeyedNote = 10
	rootIV   notes.UnkeyedNote = 5
	rootI    notes.UnkeyedNote = 0
	rootV    notes.UnkeyedNote = 7
	rootII   notes.UnkeyedNote = 2
	rootVI   notes.UnkeyedNote = 9
	rootIII  notes.UnkeyedNote = 4
	rootVII  notes.UnkeyedNote = 11
)

// Chord buttons in decision priority order.
var chordButtonTable = [...]struct {
	button ChordButton
	root   notes.UnkeyedNote
}{
	{ChordVIIB, rootVIIB},
	{ChordIV, rootIV},
	{ChordI, rootI},
	{ChordV, rootV},
	{ChordII, rootII},
	{ChordVI, rootVI},
	{ChordIII, rootIII},
	{ChordVII, rootVII},
	{ChordHeptatonicMajor, rootI},
}

var modButtonTable = [...]struct {
	button ModButton
	mods   chord.Modifiers
}{
	{ModMajor2, chord.ModAddMajor2},
	{ModMajor7, chord.ModAddMajor7},
	{ModMinor7, chord.ModAddMinor7},
	{ModSus4, chord.ModSus4},
	{ModMinorMajor, chord.ModSwitchMinorMajor},
	{ModNo3, chord.ModNo3},
}

// Held pairs that imply a dominant seventh on the first button's root.
var impliedSeventhPairs = [...][2]ChordButton{
	{ChordVI, ChordII},
	{ChordIII, ChordVI},
	{ChordVII, ChordIII},
	{ChordI, ChordIV},
	{ChordIV, ChordVIIB},
	{ChordV, ChordI},
	{ChordII, ChordV},
}

const heptatonicMods = chord.ModMajorTri | chord.ModAddMajor2 | chord.ModAdd4 | chord.ModAddMajor6 | chord.ModAddMajor7

// RootFor returns the fixed root of a chord button.
func RootFor(b ChordButton) notes.UnkeyedNote {
	for _, e := range chordButtonTable {
		if e.button == b {
			return e.root
		}
	}
	return rootI
}

// ModifiersFor returns the chord modifiers a modifier button stages.
func ModifiersFor(b ModButton) chord.Modifiers {
	for _, e := range modButtonTable {
		if e.button == b {
			return e.mods
		}
	}
	return 0
}

// ActionsFor returns the action flag of an action button.
func ActionsFor(b ActionButton) Actions {
	if b == ActionPulse {
		return ActPulse
	}
	return ActChangeKey
}

// DegreeOf returns the chord button whose root matches c, or
// ChordHeptatonicMajor for the scale chord on the tonic. Chords on other
// roots report false.
func DegreeOf(c chord.Chord) (ChordButton, bool) {
	pc := c.Root().WrapToOctave()
	if pc == int16(rootI) && c.Mods().Has(heptatonicMods) {
		return ChordHeptatonicMajor, true
	}
	for _, e := range chordButtonTable[:ChordHeptatonicMajor] {
		if int16(e.root) == pc {
			return e.button, true
		}
	}
	return 0, false
}
