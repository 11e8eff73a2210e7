// Package session turns platform-neutral UI events into engine calls and
// collects the resulting effects. Desktop and mobile frontends, the offline
// renderer and log replay all drive the instrument through a UiSession.
package session

import (
	"math"
	"time"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/layout"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/touch"
	"github.com/cwbudde/chordharp/wheel"
)

// Touch velocity range, mapped linearly from pressure.
const (
	minTouchVolume = 25
	maxTouchVolume = 110
)

// TouchNote is a string a touch struck or strummed.
type TouchNote struct {
	Row  layout.Row
	Note notes.UnkeyedNote
}

// Result is the outcome of one UiEvent.
type Result struct {
	Effects engine.Effects
	// Haptic is set when a touch hit at least one string.
	Haptic     bool
	TouchNotes []TouchNote
}

// Config holds the session's runtime options.
type Config struct {
	AllowImpliedSevenths bool
	// StopDelay is how long chord-change stops are held after a chord wheel
	// closes.
	StopDelay time.Duration
}

// DefaultConfig returns the stock options.
func DefaultConfig() Config {
	return Config{AllowImpliedSevenths: true, StopDelay: engine.DefaultStopDelay}
}

// Option configures a UiSession.
type Option func(*UiSession)

// WithClock replaces time.Now, for tests and offline rendering.
func WithClock(now func() time.Time) Option {
	return func(s *UiSession) { s.now = now }
}

// WithConfig sets the initial options.
func WithConfig(cfg Config) Option {
	return func(s *UiSession) { s.cfg = cfg }
}

type wheelState struct {
	open   bool
	button input.Button
	chord  engine.ChordButton
	dir    int
}

// UiSession owns the engine state and the touch tracker. It is not safe for
// concurrent use.
type UiSession struct {
	cfg      Config
	now      func() time.Time
	state    *engine.AppState
	tracker  *touch.Tracker
	deferred engine.DeferredStops
	wheel    wheelState
}

// New returns a session with a fresh engine.
func New(opts ...Option) *UiSession {
	s := &UiSession{
		cfg:     DefaultConfig(),
		now:     time.Now,
		tracker: touch.NewTracker(),
	}
	for _, o := range opts {
		o(s)
	}
	s.state = engine.NewAppState(engine.Config{AllowImpliedSevenths: s.cfg.AllowImpliedSevenths})
	return s
}

// SetConfig replaces the runtime options.
func (s *UiSession) SetConfig(cfg Config) {
	s.cfg = cfg
	s.state.SetConfig(engine.Config{AllowImpliedSevenths: cfg.AllowImpliedSevenths})
}

// Config returns the runtime options.
func (s *UiSession) Config() Config { return s.cfg }

// State exposes the engine state for drawing.
func (s *UiSession) State() *engine.AppState { return s.state }

// PlayOnTap reports whether touch-down strikes a string.
func (s *UiSession) PlayOnTap() bool { return s.tracker.PlayOnTap() }

// WheelOpen reports whether a chord wheel gesture is in progress.
func (s *UiSession) WheelOpen() bool { return s.wheel.open }

// ChordFor returns the chord a row plays. All rows share the active chord.
func (s *UiSession) ChordFor(layout.Row) (chord.Chord, bool) {
	return s.state.ActiveChord()
}

// TouchVolume maps a pressure in [0,1] to a note velocity.
func TouchVolume(pressure float32) notes.NoteVolume {
	p := notes.Clamp(pressure, 0, 1)
	v := minTouchVolume + (maxTouchVolume-minTouchVolume)*float64(p)
	return notes.NoteVolume(math.Round(v))
}

// Handle applies one event. positions are the current note x-positions.
// Events that carry nothing, or carry more than one input, are ignored.
func (s *UiSession) Handle(ev UiEvent, positions []float32) Result {
	if !ev.valid() {
		return Result{}
	}
	switch {
	case ev.SetPlayOnTap != nil:
		s.tracker.SetPlayOnTap(*ev.SetPlayOnTap)
		return Result{}
	case ev.SetTranspose != nil:
		return Result{Effects: s.state.SetTranspose(*ev.SetTranspose)}
	case ev.Key != nil:
		var effects engine.Effects
		if ke, ok := input.KeyEventFor(ev.Key.State, ev.Key.Key); ok {
			effects.Merge(s.apply(ke))
		}
		return Result{Effects: effects}
	case ev.Button != nil:
		var effects engine.Effects
		for _, ke := range input.ButtonEvents(ev.Button.State, ev.Button.Button) {
			effects.Merge(s.apply(ke))
		}
		return Result{Effects: effects}
	case ev.Wheel != nil:
		return Result{Effects: s.handleWheel(*ev.Wheel)}
	default:
		return s.handleTouch(*ev.Touch, positions)
	}
}

// apply forwards a button event to the engine. While a wheel is open the
// chord-change stops are held back instead of returned.
func (s *UiSession) apply(ke engine.KeyEvent) engine.Effects {
	e := s.state.HandleKeyEvent(ke)
	if s.wheel.open && len(e.StopNotes) > 0 {
		s.deferred.Defer(e.StopNotes)
		e.StopNotes = nil
	}
	return e
}

func (s *UiSession) handleWheel(w WheelInput) engine.Effects {
	var effects engine.Effects
	switch w.Phase {
	case WheelOpen:
		cb, ok := w.Button.ChordButton()
		if !ok || !w.Button.IsDegree() || s.wheel.open {
			return effects
		}
		s.wheel = wheelState{open: true, button: w.Button, chord: cb, dir: -1}
		effects.Merge(s.apply(engine.ChordEvent(engine.Pressed, cb)))

	case WheelMove:
		if !s.wheel.open || w.Direction == s.wheel.dir {
			return effects
		}
		var mods chord.Modifiers
		if w.Direction >= 0 {
			d, ok := wheel.FromInt(w.Direction)
			if !ok {
				return effects
			}
			mods = wheel.ModifiersFor(s.wheel.chord, d)
		}
		s.wheel.dir = w.Direction
		// Re-press so the preset replaces the previous one instead of
		// accumulating on it.
		effects.Merge(s.apply(engine.ChordEvent(engine.Released, s.wheel.chord)))
		s.state.StageModifiers(mods)
		effects.Merge(s.apply(engine.ChordEvent(engine.Pressed, s.wheel.chord)))

	case WheelToggle:
		if !s.wheel.open {
			return effects
		}
		s.state.StageModifiers(chord.ModSwitchMinorMajor)
		effects.Merge(s.apply(engine.ChordEvent(engine.Pressed, s.wheel.chord)))

	case WheelClose:
		if !s.wheel.open {
			return effects
		}
		effects.Merge(s.apply(engine.ChordEvent(engine.Released, s.wheel.chord)))
		s.wheel = wheelState{}
		s.deferred.Arm(s.now(), s.cfg.StopDelay)
	}
	return effects
}

func (s *UiSession) handleTouch(ev touch.Event, positions []float32) Result {
	row := layout.RowForY(ev.YNorm)
	vol := TouchVolume(ev.Pressure)
	active, hasChord := s.ChordFor(row)

	allowed := func(_ layout.Row, n notes.UnkeyedNote) bool {
		return !hasChord || active.Contains(n)
	}
	out := s.tracker.Handle(ev, positions, allowed)

	var res Result
	if out.Strike != nil {
		res.TouchNotes = append(res.TouchNotes, TouchNote{Row: row, Note: *out.Strike})
		res.Effects.Merge(s.state.HandleKeyEvent(engine.StrumEvent(*out.Strike, vol)))
	}
	for _, c := range out.Crossings {
		played := false
		for _, n := range c.Notes {
			// Chromatic strings only exist while the chord uses them.
			if notes.IsBlackKey(n) && (!hasChord || !active.Contains(n)) {
				continue
			}
			res.TouchNotes = append(res.TouchNotes, TouchNote{Row: row, Note: n})
			e := s.state.HandleKeyEvent(engine.StrumEvent(n, vol))
			played = played || len(e.PlayNotes) > 0
			res.Effects.Merge(e)
		}
		if !played {
			res.Effects.DampedStrums++
		}
	}
	res.Haptic = len(res.TouchNotes) > 0
	return res
}

// Tick flushes deferred stops that have fallen due.
func (s *UiSession) Tick() engine.Effects {
	stops := s.deferred.Flush(s.now(), s.state.IsActive)
	return engine.Effects{StopNotes: stops}
}

// NextDue returns when deferred stops next fall due, if any are armed.
func (s *UiSession) NextDue() (time.Time, bool) {
	if s.deferred.Pending() == 0 {
		return time.Time{}, false
	}
	return s.deferred.Due()
}

// Shutdown releases every sounding note, including ones whose stop is still
// deferred.
func (s *UiSession) Shutdown() engine.Effects {
	e := s.state.ReleaseAll()
	for _, n := range s.deferred.Drain(nil) {
		if !containsUnmidi(e.StopNotes, n) {
			e.StopNotes = append(e.StopNotes, n)
		}
	}
	return e
}

func containsUnmidi(list []notes.UnmidiNote, n notes.UnmidiNote) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
