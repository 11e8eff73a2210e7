// Package notes defines the pitch spaces used across the instrument and the
// few arithmetic operations that are meaningful between them.
//
// Pitches move through four spaces on their way to a synthesizer:
//
//	UnkeyedNote --(+Transpose)--> UnmidiNote --(+MIDI base)--> MidiNote
//
// An UnkeyedNote is a chromatic position relative to the tonic (0,2,4,5,7,9,11
// are the diatonic degrees). An UnmidiNote is that position after the current
// key has been applied. A MidiNote is the absolute 0..127 pitch.
package notes

import "golang.org/x/exp/constraints"

// MidiNote is an absolute MIDI pitch in 0..127.
type MidiNote uint8

// NoteVolume is a MIDI velocity in 0..127.
type NoteVolume uint8

// UnmidiNote is a keyed note before the MIDI base offset is added.
type UnmidiNote int16

// UnkeyedNote is a chromatic position before any key is applied. It may be
// negative and may exceed an octave.
type UnkeyedNote int16

// UnrootedNote is a pitch class (0..11) measured from a chord root.
type UnrootedNote uint8

// Transpose is a signed key offset in half steps.
type Transpose int16

// Interval is a signed distance in half steps.
type Interval int16

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func remEuclid12(v int16) int16 {
	r := v % 12
	if r < 0 {
		r += 12
	}
	return r
}

// Apply keys an unkeyed note.
func (t Transpose) Apply(n UnkeyedNote) UnmidiNote {
	return UnmidiNote(int16(t) + int16(n))
}

// Midi offsets an unmidi note into MIDI. ok is false when the result falls
// outside 0..127.
func (t Transpose) Midi(n UnmidiNote) (MidiNote, bool) {
	m := int16(t) + int16(n)
	if m < 0 || m > 127 {
		return 0, false
	}
	return MidiNote(m), true
}

// WrapToOctave returns the offset as a pitch class in 0..11.
func (t Transpose) WrapToOctave() int16 {
	return remEuclid12(int16(t))
}

// CenterOctave folds the offset into -5..6 so a key change never moves the
// instrument more than half an octave.
func (t Transpose) CenterOctave() Transpose {
	pc := t.WrapToOctave()
	if pc > 6 {
		return Transpose(pc - 12)
	}
	return Transpose(pc)
}

// Unkey removes the key offset.
func (n UnmidiNote) Unkey(t Transpose) UnkeyedNote {
	return UnkeyedNote(int16(n) - int16(t))
}

// Unmidi removes a base offset from an absolute pitch.
func (m MidiNote) Unmidi(t Transpose) UnmidiNote {
	return UnmidiNote(int16(m) - int16(t))
}

// Sub returns the interval m - o.
func (m MidiNote) Sub(o MidiNote) Interval {
	return Interval(int16(m) - int16(o))
}

// Sub returns the interval n - o.
func (n UnkeyedNote) Sub(o UnkeyedNote) Interval {
	return Interval(int16(n) - int16(o))
}

// WrapToOctave returns the note's pitch class in 0..11.
func (n UnkeyedNote) WrapToOctave() int16 {
	return remEuclid12(int16(n))
}

// NewUnrootedNote reduces an interval to a pitch class.
func NewUnrootedNote(i Interval) UnrootedNote {
	return UnrootedNote(remEuclid12(int16(i)))
}

// Ratio returns i/denom as a float.
func (i Interval) Ratio(denom Interval) float32 {
	return float32(i) / float32(denom)
}

// IsBlackKey reports whether the note sits on one of the chromatic
// in-between strings (pitch classes 1, 3, 6, 8 and 10).
func IsBlackKey(n UnkeyedNote) bool {
	switch n.WrapToOctave() {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

var (
	sharpLabels = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatLabels  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// PreferFlatsForKey reports whether the key is conventionally spelled with
// flats (Db, Eb, F, Ab, Bb).
func PreferFlatsForKey(keyPC int16) bool {
	switch remEuclid12(keyPC) {
	case 1, 3, 5, 8, 10:
		return true
	}
	return false
}

// PitchClassLabel names a pitch class, spelling accidentals to suit the key.
func PitchClassLabel(pc int16, keyPC int16) string {
	if PreferFlatsForKey(keyPC) {
		return flatLabels[remEuclid12(pc)]
	}
	return sharpLabels[remEuclid12(pc)]
}
