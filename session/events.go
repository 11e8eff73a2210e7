package session

import (
	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/touch"
)

// KeyInput is a keyboard key going down or up.
type KeyInput struct {
	State engine.KeyState `json:"state"`
	Key   input.Key       `json:"key"`
}

// ButtonInput is an on-screen button going down or up.
type ButtonInput struct {
	State  engine.KeyState `json:"state"`
	Button input.Button    `json:"button"`
}

// WheelPhase is the stage of a chord wheel gesture.
type WheelPhase uint8

const (
	// WheelOpen presses the wheel's chord button and starts deferring stops.
	WheelOpen WheelPhase = iota
	// WheelMove selects a direction, or the plain chord when Direction < 0.
	WheelMove
	// WheelToggle flips the held chord between minor and major.
	WheelToggle
	// WheelClose releases the button and arms the deferred stops.
	WheelClose
)

// WheelInput drives a chord wheel opened on a degree button.
type WheelInput struct {
	Phase     WheelPhase   `json:"phase"`
	Button    input.Button `json:"button"`
	Direction int          `json:"direction"`
}

// UiEvent is one platform-neutral input. Exactly one field is set.
type UiEvent struct {
	Key          *KeyInput        `json:"key,omitempty"`
	Button       *ButtonInput     `json:"button,omitempty"`
	Touch        *touch.Event     `json:"touch,omitempty"`
	SetPlayOnTap *bool            `json:"set_play_on_tap,omitempty"`
	SetTranspose *notes.Transpose `json:"set_transpose,omitempty"`
	Wheel        *WheelInput      `json:"wheel,omitempty"`
}

// KeyEvent builds a keyboard event.
func KeyEvent(state engine.KeyState, k input.Key) UiEvent {
	return UiEvent{Key: &KeyInput{State: state, Key: k}}
}

// ButtonEvent builds an on-screen button event.
func ButtonEvent(state engine.KeyState, b input.Button) UiEvent {
	return UiEvent{Button: &ButtonInput{State: state, Button: b}}
}

// TouchEvent wraps a pointer sample.
func TouchEvent(ev touch.Event) UiEvent { return UiEvent{Touch: &ev} }

// PlayOnTapEvent toggles play-on-tap.
func PlayOnTapEvent(enabled bool) UiEvent { return UiEvent{SetPlayOnTap: &enabled} }

// TransposeEvent sets the key directly.
func TransposeEvent(t notes.Transpose) UiEvent { return UiEvent{SetTranspose: &t} }

// WheelEvent builds a chord wheel event.
func WheelEvent(phase WheelPhase, b input.Button, dir int) UiEvent {
	return UiEvent{Wheel: &WheelInput{Phase: phase, Button: b, Direction: dir}}
}

func (e UiEvent) valid() bool {
	n := 0
	for _, set := range []bool{e.Key != nil, e.Button != nil, e.Touch != nil,
		e.SetPlayOnTap != nil, e.SetTranspose != nil, e.Wheel != nil} {
		if set {
			n++
		}
	}
	return n == 1
}
