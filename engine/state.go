// Package engine holds the instrument's musical state: which chord buttons,
// modifiers and actions are held, which chord is active, the current key and
// the set of notes believed to be sounding.
package engine

import (
	"sort"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/notes"
)

// KeyKind discriminates KeyEvent.
type KeyKind uint8

const (
	KindChord KeyKind = iota
	KindModifier
	KindAction
	KindStrum
)

// KeyEvent is a single engine input. Only the fields relevant to Kind are
// read.
type KeyEvent struct {
	Kind      KeyKind
	State     KeyState
	Chord     ChordButton
	Mod       ModButton
	Modifiers chord.Modifiers
	Action    ActionButton
	Actions   Actions
	Note      notes.UnkeyedNote
	Volume    notes.NoteVolume
}

// ChordEvent builds a chord button event.
func ChordEvent(state KeyState, b ChordButton) KeyEvent {
	return KeyEvent{Kind: KindChord, State: state, Chord: b}
}

// ModifierEvent builds a modifier button event carrying the button's
// default modifiers.
func ModifierEvent(state KeyState, b ModButton) KeyEvent {
	return KeyEvent{Kind: KindModifier, State: state, Mod: b, Modifiers: ModifiersFor(b)}
}

// ActionEvent builds an action button event.
func ActionEvent(state KeyState, b ActionButton) KeyEvent {
	return KeyEvent{Kind: KindAction, State: state, Action: b, Actions: ActionsFor(b)}
}

// StrumEvent builds a strum crossing event. A zero volume uses StrumVolume.
func StrumEvent(note notes.UnkeyedNote, volume notes.NoteVolume) KeyEvent {
	return KeyEvent{Kind: KindStrum, Note: note, Volume: volume}
}

// Config tunes chord decisions.
type Config struct {
	// AllowImpliedSevenths turns two adjacent held chord buttons into a
	// seventh chord on the first one.
	AllowImpliedSevenths bool
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{AllowImpliedSevenths: true}
}

type buttonSet uint16

func (s buttonSet) has(i uint8) bool { return s&(1<<i) != 0 }

// insert adds i and reports whether it was newly added.
func (s *buttonSet) insert(i uint8) bool {
	if s.has(i) {
		return false
	}
	*s |= 1 << i
	return true
}

func (s *buttonSet) remove(i uint8) { *s &^= 1 << i }

// AppState is the live musical state. It is owned by one goroutine.
type AppState struct {
	cfg Config

	activeChord chord.Chord
	hasChord    bool
	// The active chord came from the implied-seventh rule.
	implied bool

	activeNotes map[notes.UnmidiNote]struct{}

	chordDown  buttonSet
	modDown    buttonSet
	actionDown buttonSet

	modifierStage chord.Modifiers
	actionStage   Actions

	transpose notes.Transpose
	pulses    int
}

// NewAppState returns a state with a I triad active in the key of 0.
func NewAppState(cfg Config) *AppState {
	return &AppState{
		cfg:         cfg,
		activeChord: chord.NewTriad(rootI),
		hasChord:    true,
		activeNotes: make(map[notes.UnmidiNote]struct{}),
	}
}

// SetConfig replaces the decision config.
func (s *AppState) SetConfig(cfg Config) { s.cfg = cfg }

// ActiveChord returns the current chord, if any.
func (s *AppState) ActiveChord() (chord.Chord, bool) { return s.activeChord, s.hasChord }

// Transpose returns the current key offset.
func (s *AppState) Transpose() notes.Transpose { return s.transpose }

// SetTranspose changes the key directly. Sounding notes keep their pitch.
func (s *AppState) SetTranspose(t notes.Transpose) Effects {
	s.transpose = t
	return Effects{Redraw: true, ChangeKey: &t}
}

// Pulses returns how many pulse actions have been received.
func (s *AppState) Pulses() int { return s.pulses }

// ChordButtonDown reports whether b is held.
func (s *AppState) ChordButtonDown(b ChordButton) bool { return s.chordDown.has(uint8(b)) }

// ModButtonDown reports whether b is held.
func (s *AppState) ModButtonDown(b ModButton) bool { return s.modDown.has(uint8(b)) }

// IsActive reports whether n is believed to be sounding.
func (s *AppState) IsActive(n notes.UnmidiNote) bool {
	_, ok := s.activeNotes[n]
	return ok
}

// ActiveNotes returns the sounding notes in ascending order.
func (s *AppState) ActiveNotes() []notes.UnmidiNote {
	out := make([]notes.UnmidiNote, 0, len(s.activeNotes))
	for n := range s.activeNotes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StageModifiers adds modifiers to the stage consumed by the next chord
// commit, as if a modifier button had been pressed.
func (s *AppState) StageModifiers(m chord.Modifiers) { s.modifierStage |= m }

// ReleaseAll forgets every sounding note and returns them for stopping.
func (s *AppState) ReleaseAll() Effects {
	stops := s.ActiveNotes()
	for _, n := range stops {
		delete(s.activeNotes, n)
	}
	return Effects{StopNotes: stops}
}

// HandleKeyEvent applies one event and returns what must happen outside.
func (s *AppState) HandleKeyEvent(ev KeyEvent) Effects {
	if ev.Kind == KindStrum {
		return s.handleStrum(ev.Note, ev.Volume)
	}

	effects := Effects{Redraw: true}
	chordPressed := false

	switch ev.Kind {
	case KindChord:
		if ev.State == Pressed {
			chordPressed = s.chordDown.insert(uint8(ev.Chord))
		} else {
			s.chordDown.remove(uint8(ev.Chord))
		}
	case KindModifier:
		if ev.State == Pressed {
			if s.modDown.insert(uint8(ev.Mod)) {
				s.modifierStage |= ev.Modifiers
			}
		} else {
			s.modDown.remove(uint8(ev.Mod))
		}
	case KindAction:
		if ev.State == Pressed {
			if s.actionDown.insert(uint8(ev.Action)) {
				s.actionStage |= ev.Actions
			}
		} else {
			s.actionDown.remove(uint8(ev.Action))
		}
	}

	if s.chordDown == 0 {
		return effects
	}

	var venerated *chord.Chord
	if !chordPressed && s.hasChord {
		old := s.activeChord
		venerated = &old
	}
	// An implied seventh is not kept once its pair is broken.
	if venerated != nil && s.implied && !s.impliedPairHeld() {
		venerated = nil
	}

	next, implied := s.decideChordBase(venerated)

	for _, e := range modButtonTable {
		if s.modDown.has(uint8(e.button)) {
			s.modifierStage |= e.mods
		}
	}
	if s.modifierStage != 0 {
		next = next.WithMods(s.modifierStage)
	}

	if venerated == nil || *venerated != next {
		effects.Redraw = true
		// Notes are judged against the key they were played in.
		for _, n := range s.ActiveNotes() {
			if !next.Contains(n.Unkey(s.transpose)) {
				effects.StopNotes = append(effects.StopNotes, n)
				delete(s.activeNotes, n)
			}
		}
		s.activeChord = next
		s.hasChord = true
		s.implied = implied
	}

	if s.actionStage&ActChangeKey != 0 {
		t := notes.Transpose(s.activeChord.Root()).CenterOctave()
		s.transpose = t
		effects.ChangeKey = &t
	}
	if s.actionStage&ActPulse != 0 {
		s.pulses++
		effects.Pulse = true
	}

	s.modifierStage = 0
	s.actionStage = 0
	return effects
}

func (s *AppState) handleStrum(note notes.UnkeyedNote, volume notes.NoteVolume) Effects {
	var effects Effects
	if s.hasChord && !s.activeChord.Contains(note) {
		return effects
	}
	if volume == 0 {
		volume = StrumVolume
	}
	un := s.transpose.Apply(note)
	if _, ok := s.activeNotes[un]; ok {
		delete(s.activeNotes, un)
		effects.StopNotes = append(effects.StopNotes, un)
	}
	s.activeNotes[un] = struct{}{}
	effects.PlayNotes = append(effects.PlayNotes, NoteOn{Note: un, Volume: volume})
	return effects
}

func (s *AppState) impliedPairHeld() bool {
	_, ok := s.impliedSeventhRoot()
	return ok
}

func (s *AppState) impliedSeventhRoot() (notes.UnkeyedNote, bool) {
	if !s.cfg.AllowImpliedSevenths {
		return 0, false
	}
	for _, p := range impliedSeventhPairs {
		if s.chordDown.has(uint8(p[0])) && s.chordDown.has(uint8(p[1])) {
			return RootFor(p[0]), true
		}
	}
	return 0, false
}

// decideChordBase picks the chord for the held buttons before modifiers are
// applied. venerated is the previous chord when it may be kept; keeping it
// lets modifiers accumulate across presses of the same root.
func (s *AppState) decideChordBase(venerated *chord.Chord) (chord.Chord, bool) {
	if s.chordDown.has(uint8(ChordHeptatonicMajor)) {
		return chord.New(rootI, heptatonicMods), false
	}
	if root, ok := s.impliedSeventhRoot(); ok {
		return chord.New(root, chord.ModMajorTri|chord.ModAddMinor7), true
	}
	for _, e := range chordButtonTable {
		if !s.chordDown.has(uint8(e.button)) {
			continue
		}
		if venerated != nil && venerated.Root() == e.root {
			return *venerated, false
		}
		return chord.NewTriad(e.root), false
	}
	if venerated != nil {
		return *venerated, false
	}
	return chord.NewTriad(rootI), false
}

// DecideChordBase is the chord decision for an explicit set of held chord
// buttons, independent of any state.
func DecideChordBase(cfg Config, venerated *chord.Chord, held ...ChordButton) chord.Chord {
	s := AppState{cfg: cfg}
	for _, b := range held {
		s.chordDown.insert(uint8(b))
	}
	c, _ := s.decideChordBase(venerated)
	return c
}
