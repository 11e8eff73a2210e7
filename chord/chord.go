// Package chord models a chord as a root plus a 12-bit pitch-class set that is
// always derived from a set of modifier flags.
package chord

import (
	"fmt"
	"strings"

	"github.com/cwbudde/chordharp/notes"
)

// PitchClassSet is a 12-bit set of pitch classes measured from a root.
type PitchClassSet uint16

const (
	RootOnly PitchClassSet = 0b000000000001
	MajorTri PitchClassSet = 0b000010010001
	MinorTri PitchClassSet = 0b000010001001
	DiminTri PitchClassSet = 0b000001001001

	pitchClassMask PitchClassSet = 0b111111111111
)

// Contains reports whether pc is in the set.
func (s PitchClassSet) Contains(pc notes.UnrootedNote) bool {
	return s&(1<<pc) != 0
}

// Insert adds pc to the set.
func (s *PitchClassSet) Insert(pc notes.UnrootedNote) {
	*s |= 1 << pc
}

// Remove deletes pc from the set.
func (s *PitchClassSet) Remove(pc notes.UnrootedNote) {
	*s &^= 1 << pc
}

func (s PitchClassSet) String() string {
	return fmt.Sprintf("PitchClassSet(%012b)", uint16(s))
}

// Modifiers is a bitset of chord modifiers.
type Modifiers uint16

const (
	ModMajorTri Modifiers = 1 << iota
	ModMinorTri
	ModDiminTri
	ModAddMajor2
	ModAddMajor6
	ModAddMinor7
	ModAddMajor7
	ModMinor3ToMajor
	ModRestorePerfect5
	ModAdd4
	ModSwitchMinorMajor
	ModNo3
	ModAddMinor6

	ModSus4 = ModAdd4 | ModNo3
)

// Has reports whether every flag in o is set.
func (m Modifiers) Has(o Modifiers) bool {
	return m&o == o
}

var modifierNames = []struct {
	flag Modifiers
	name string
}{
	{ModMajorTri, "MajorTri"},
	{ModMinorTri, "MinorTri"},
	{ModDiminTri, "DiminTri"},
	{ModAddMajor2, "AddMajor2"},
	{ModAddMajor6, "AddMajor6"},
	{ModAddMinor7, "AddMinor7"},
	{ModAddMajor7, "AddMajor7"},
	{ModMinor3ToMajor, "Minor3ToMajor"},
	{ModRestorePerfect5, "RestorePerfect5"},
	{ModAdd4, "Add4"},
	{ModSwitchMinorMajor, "SwitchMinorMajor"},
	{ModNo3, "No3"},
	{ModAddMinor6, "AddMinor6"},
}

func (m Modifiers) String() string {
	if m == 0 {
		return "0"
	}
	var parts []string
	for _, n := range modifierNames {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

type modApplication struct {
	flag  Modifiers
	apply func(*PitchClassSet)
}

// Applied in this order; triad initializers first.
var orderedModApplications = []modApplication{
	{ModMajorTri, func(s *PitchClassSet) { *s = MajorTri }},
	{ModMinorTri, func(s *PitchClassSet) { *s = MinorTri }},
	{ModDiminTri, func(s *PitchClassSet) { *s = DiminTri }},
	{ModAddMajor2, func(s *PitchClassSet) { s.Insert(2) }},
	{ModAddMajor6, func(s *PitchClassSet) { s.Insert(9) }},
	{ModAddMinor6, func(s *PitchClassSet) { s.Insert(8) }},
	{ModAddMinor7, func(s *PitchClassSet) { s.Insert(10) }},
	{ModAddMajor7, func(s *PitchClassSet) { s.Insert(11) }},
	{ModMinor3ToMajor, func(s *PitchClassSet) {
		s.Remove(3)
		s.Insert(4)
	}},
	{ModRestorePerfect5, func(s *PitchClassSet) {
		s.Remove(6)
		s.Remove(8)
		s.Insert(7)
	}},
	{ModAdd4, func(s *PitchClassSet) { s.Insert(5) }},
	{ModSwitchMinorMajor, func(s *PitchClassSet) {
		switch {
		case s.Contains(4): // major -> minor
			s.Remove(4)
			s.Insert(3)
		case s.Contains(6): // diminished -> major
			s.Remove(6)
			s.Remove(3)
			s.Insert(4)
		default:
			s.Remove(3)
			s.Insert(4)
		}
	}},
	{ModNo3, func(s *PitchClassSet) {
		s.Remove(3)
		s.Remove(4)
	}},
}

// Chord is an immutable root plus modifier set. Chords compare with ==.
type Chord struct {
	root notes.UnkeyedNote
	mods Modifiers
	mask PitchClassSet
}

// New builds a chord on root with the given modifiers.
func New(root notes.UnkeyedNote, mods Modifiers) Chord {
	return Chord{root: root, mods: mods, mask: maskFor(mods)}
}

// NewTriad builds the diatonic triad on root: major on 0, 5 and 7, minor on
// 2, 4 and 9, diminished on 11. Chromatic roots get a major triad.
func NewTriad(root notes.UnkeyedNote) Chord {
	switch root.WrapToOctave() {
	case 2, 4, 9:
		return New(root, ModMinorTri)
	case 11:
		return New(root, ModDiminTri)
	default:
		return New(root, ModMajorTri)
	}
}

func maskFor(mods Modifiers) PitchClassSet {
	mask := RootOnly
	for _, m := range orderedModApplications {
		if mods.Has(m.flag) {
			m.apply(&mask)
		}
	}
	// Modifiers may strip intervals but never the root.
	return (mask | RootOnly) & pitchClassMask
}

// Root returns the chord root.
func (c Chord) Root() notes.UnkeyedNote { return c.root }

// Mods returns the modifier flags.
func (c Chord) Mods() Modifiers { return c.mods }

// Mask returns the derived pitch-class set.
func (c Chord) Mask() PitchClassSet { return c.mask }

// WithMods returns a copy with extra modifiers added and the mask rebuilt.
func (c Chord) WithMods(mods Modifiers) Chord {
	return New(c.root, c.mods|mods)
}

// NoteAboveRoot returns the note's pitch class relative to the root.
func (c Chord) NoteAboveRoot(n notes.UnkeyedNote) notes.UnrootedNote {
	return notes.NewUnrootedNote(n.Sub(c.root))
}

// Contains reports whether n is a member of the chord in any octave.
func (c Chord) Contains(n notes.UnkeyedNote) bool {
	return c.mask.Contains(c.NoteAboveRoot(n))
}

// HasRoot reports whether n is the root in some octave.
func (c Chord) HasRoot(n notes.UnkeyedNote) bool {
	return n.WrapToOctave() == c.root.WrapToOctave()
}

func (c Chord) String() string {
	return fmt.Sprintf("Chord{root: %d, mods: %v, mask: %012b}", c.root, c.mods, uint16(c.mask))
}
