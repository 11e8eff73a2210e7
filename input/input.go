// Package input maps keyboard keys and on-screen buttons to engine events.
package input

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cwbudde/chordharp/engine"
)

// KeyKind distinguishes printable keys from the two named keys the
// instrument uses.
type KeyKind uint8

const (
	KeyChar KeyKind = iota
	KeyControl
	KeyTab
)

// Key is a platform-neutral keyboard key.
type Key struct {
	Kind KeyKind
	Char rune
}

// Char returns the key for a printable character.
func Char(r rune) Key { return Key{Kind: KeyChar, Char: r} }

var (
	Control = Key{Kind: KeyControl}
	Tab     = Key{Kind: KeyTab}
)

func (k Key) String() string {
	switch k.Kind {
	case KeyControl:
		return "ctrl"
	case KeyTab:
		return "tab"
	}
	return string(k.Char)
}

// MarshalText encodes the key as "ctrl", "tab" or the character itself.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText is the inverse of MarshalText.
func (k *Key) UnmarshalText(b []byte) error {
	s := string(b)
	switch s {
	case "ctrl":
		*k = Control
		return nil
	case "tab":
		*k = Tab
		return nil
	}
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || n != len(s) || r == utf8.RuneError {
		return fmt.Errorf("input: bad key %q", s)
	}
	*k = Char(r)
	return nil
}

var charChords = map[rune]engine.ChordButton{
	'a': engine.ChordVIIB,
	's': engine.ChordIV,
	'd': engine.ChordI,
	'f': engine.ChordV,
	'z': engine.ChordII,
	'x': engine.ChordVI,
	'c': engine.ChordIII,
	'v': engine.ChordVII,
}

var charMods = map[rune]engine.ModButton{
	'5': engine.ModMajor2,
	'b': engine.ModMajor7,
	'6': engine.ModMinor7,
	'3': engine.ModSus4,
	'4': engine.ModMinorMajor,
	'.': engine.ModNo3,
}

// KeyEventFor maps a key to its engine event. Unmapped keys return false.
func KeyEventFor(state engine.KeyState, k Key) (engine.KeyEvent, bool) {
	switch k.Kind {
	case KeyControl:
		return engine.ChordEvent(state, engine.ChordHeptatonicMajor), true
	case KeyTab:
		return engine.ActionEvent(state, engine.ActionPulse), true
	}
	if b, ok := charChords[k.Char]; ok {
		return engine.ChordEvent(state, b), true
	}
	if b, ok := charMods[k.Char]; ok {
		return engine.ModifierEvent(state, b), true
	}
	if k.Char == '1' {
		return engine.ActionEvent(state, engine.ActionChangeKey), true
	}
	return engine.KeyEvent{}, false
}

// Button is an on-screen button. Its numeric value is the stable id used by
// touch frontends.
type Button uint8

const (
	ButtonVIIB Button = iota
	ButtonIV
	ButtonI
	ButtonV
	ButtonII
	ButtonVI
	ButtonIII
	ButtonVIIDim
	ButtonMaj7
	ButtonNo3
	ButtonSus4
	ButtonMinorMajor
	ButtonAdd2
	ButtonAdd7
	ButtonHept
	ButtonIVMinor

	numButtons
)

var buttonNames = [numButtons]string{
	"VIIB", "IV", "I", "V", "II", "VI", "III", "VIIDim",
	"Maj7", "No3", "Sus4", "MinorMajor", "Add2", "Add7", "Hept", "IVMinor",
}

func (b Button) String() string {
	if b < numButtons {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// ButtonFromID converts a frontend button id.
func ButtonFromID(id int) (Button, bool) {
	if id < 0 || id >= int(numButtons) {
		return 0, false
	}
	return Button(id), true
}

// MarshalText encodes the button by name.
func (b Button) MarshalText() ([]byte, error) {
	if b >= numButtons {
		return nil, fmt.Errorf("input: bad button %d", uint8(b))
	}
	return []byte(buttonNames[b]), nil
}

// UnmarshalText accepts a name written by MarshalText, ignoring case.
func (b *Button) UnmarshalText(text []byte) error {
	for i, n := range buttonNames {
		if strings.EqualFold(n, string(text)) {
			*b = Button(i)
			return nil
		}
	}
	return fmt.Errorf("input: unknown button %q", text)
}

// ChordButton returns the chord button a degree or Hept button selects.
func (b Button) ChordButton() (engine.ChordButton, bool) {
	switch b {
	case ButtonVIIB:
		return engine.ChordVIIB, true
	case ButtonIV:
		return engine.ChordIV, true
	case ButtonI:
		return engine.ChordI, true
	case ButtonV:
		return engine.ChordV, true
	case ButtonII:
		return engine.ChordII, true
	case ButtonVI:
		return engine.ChordVI, true
	case ButtonIII:
		return engine.ChordIII, true
	case ButtonVIIDim:
		return engine.ChordVII, true
	case ButtonHept:
		return engine.ChordHeptatonicMajor, true
	}
	return 0, false
}

// IsDegree reports whether the button is one of the eight degree chords,
// the ones a chord wheel can be opened on.
func (b Button) IsDegree() bool { return b <= ButtonVIIDim }

func (b Button) modButton() (engine.ModButton, bool) {
	switch b {
	case ButtonMaj7:
		return engine.ModMajor7, true
	case ButtonNo3:
		return engine.ModNo3, true
	case ButtonSus4:
		return engine.ModSus4, true
	case ButtonMinorMajor:
		return engine.ModMinorMajor, true
	case ButtonAdd2:
		return engine.ModMajor2, true
	case ButtonAdd7:
		return engine.ModMinor7, true
	}
	return 0, false
}

// ButtonEvents expands a button press or release into engine events. Most
// buttons map to one event; IVMinor holds a minor/major switch together
// with IV, engaging it after IV on press and dropping it first on release so
// other held chords are never switched.
func ButtonEvents(state engine.KeyState, b Button) []engine.KeyEvent {
	if b == ButtonIVMinor {
		iv := engine.ChordEvent(state, engine.ChordIV)
		mm := engine.ModifierEvent(state, engine.ModMinorMajor)
		if state == engine.Pressed {
			return []engine.KeyEvent{iv, mm}
		}
		return []engine.KeyEvent{mm, iv}
	}
	if c, ok := b.ChordButton(); ok {
		return []engine.KeyEvent{engine.ChordEvent(state, c)}
	}
	if m, ok := b.modButton(); ok {
		return []engine.KeyEvent{engine.ModifierEvent(state, m)}
	}
	return nil
}
