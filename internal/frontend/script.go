package frontend

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/touch"
)

// StepKind is a script command.
type StepKind uint8

const (
	StepPress StepKind = iota
	StepRelease
	StepButtonDown
	StepButtonUp
	StepStrum
	StepTap
	StepWait
	StepTranspose
	StepWheel
)

// Step is one parsed script line.
type Step struct {
	Kind      StepKind
	Line      int
	Key       input.Key
	Button    input.Button
	X0, X1, Y float32
	Duration  time.Duration
	Transpose notes.Transpose
	Wheel     session.WheelPhase
	Direction int
}

// Defaults for strums and taps.
const (
	DefaultStrumY = 0.9
	strumStep     = 5 * time.Millisecond
)

// DefaultScript plays I IV V I with a strum per chord.
const DefaultScript = `# I IV V I
press d
strum 0.05 0.95 400ms
wait 600ms
release d
press s
strum 0.05 0.95 400ms
wait 600ms
release s
press f
strum 0.05 0.95 400ms
wait 600ms
release f
press d
strum 0.95 0.05 400ms
wait 1s
release d
`

// ParseScript reads one command per line. Blank lines and lines starting
// with '#' are skipped.
//
//	press <key> | release <key>        keyboard key, e.g. d, 5, ctrl, tab
//	down <button> | up <button>       on-screen button by name
//	strum <x0> <x1> <dur> [y]         drag across the strings, x and y in [0,1]
//	tap <x> [y]                       touch down and up at x
//	wait <dur>
//	key <transpose>                   set the key in half steps
//	wheel open <button> | wheel move <dir> | wheel toggle | wheel close
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		st, err := parseStep(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		st.Line = line
		steps = append(steps, st)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func parseStep(f []string) (Step, error) {
	var st Step
	args := f[1:]
	need := func(lo, hi int) error {
		if len(args) < lo || len(args) > hi {
			return fmt.Errorf("%s: want %d..%d arguments, got %d", f[0], lo, hi, len(args))
		}
		return nil
	}

	switch f[0] {
	case "press", "release":
		if err := need(1, 1); err != nil {
			return st, err
		}
		st.Kind = StepPress
		if f[0] == "release" {
			st.Kind = StepRelease
		}
		return st, st.Key.UnmarshalText([]byte(args[0]))

	case "down", "up":
		if err := need(1, 1); err != nil {
			return st, err
		}
		st.Kind = StepButtonDown
		if f[0] == "up" {
			st.Kind = StepButtonUp
		}
		return st, st.Button.UnmarshalText([]byte(args[0]))

	case "strum":
		if err := need(3, 4); err != nil {
			return st, err
		}
		st.Kind = StepStrum
		var err error
		if st.X0, err = parseUnit(args[0]); err != nil {
			return st, err
		}
		if st.X1, err = parseUnit(args[1]); err != nil {
			return st, err
		}
		if st.Duration, err = time.ParseDuration(args[2]); err != nil {
			return st, err
		}
		st.Y = DefaultStrumY
		if len(args) == 4 {
			st.Y, err = parseUnit(args[3])
		}
		return st, err

	case "tap":
		if err := need(1, 2); err != nil {
			return st, err
		}
		st.Kind = StepTap
		var err error
		if st.X0, err = parseUnit(args[0]); err != nil {
			return st, err
		}
		st.Y = DefaultStrumY
		if len(args) == 2 {
			st.Y, err = parseUnit(args[1])
		}
		return st, err

	case "wait":
		if err := need(1, 1); err != nil {
			return st, err
		}
		st.Kind = StepWait
		var err error
		st.Duration, err = time.ParseDuration(args[0])
		if err == nil && st.Duration < 0 {
			err = fmt.Errorf("wait: negative duration %s", args[0])
		}
		return st, err

	case "key":
		if err := need(1, 1); err != nil {
			return st, err
		}
		st.Kind = StepTranspose
		v, err := strconv.Atoi(args[0])
		st.Transpose = notes.Transpose(v)
		return st, err

	case "wheel":
		if err := need(1, 2); err != nil {
			return st, err
		}
		st.Kind = StepWheel
		return st, parseWheel(&st, args)
	}
	return st, fmt.Errorf("unknown command %q", f[0])
}

func parseWheel(st *Step, args []string) error {
	switch args[0] {
	case "open":
		if len(args) != 2 {
			return fmt.Errorf("wheel open: missing button")
		}
		st.Wheel = session.WheelOpen
		return st.Button.UnmarshalText([]byte(args[1]))
	case "move":
		if len(args) != 2 {
			return fmt.Errorf("wheel move: missing direction")
		}
		st.Wheel = session.WheelMove
		var err error
		st.Direction, err = strconv.Atoi(args[1])
		return err
	case "toggle":
		st.Wheel = session.WheelToggle
	case "close":
		st.Wheel = session.WheelClose
	default:
		return fmt.Errorf("wheel: unknown phase %q", args[0])
	}
	return nil
}

func parseUnit(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%s is outside [0,1]", s)
	}
	return float32(v), nil
}

// Run plays steps into o. Each strum and tap uses a fresh pointer id.
func Run(steps []Step, o *Offline) error {
	var pointer touch.PointerID
	for _, st := range steps {
		var err error
		switch st.Kind {
		case StepPress:
			_, err = o.Handle(session.KeyEvent(engine.Pressed, st.Key))
		case StepRelease:
			_, err = o.Handle(session.KeyEvent(engine.Released, st.Key))
		case StepButtonDown:
			_, err = o.Handle(session.ButtonEvent(engine.Pressed, st.Button))
		case StepButtonUp:
			_, err = o.Handle(session.ButtonEvent(engine.Released, st.Button))
		case StepTranspose:
			_, err = o.Handle(session.TransposeEvent(st.Transpose))
		case StepWheel:
			_, err = o.Handle(session.WheelEvent(st.Wheel, st.Button, st.Direction))
		case StepWait:
			err = o.Advance(st.Duration)
		case StepTap:
			pointer++
			err = tap(o, pointer, st)
		case StepStrum:
			pointer++
			err = strum(o, pointer, st)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", st.Line, err)
		}
	}
	return nil
}

func pointerEvent(id touch.PointerID, phase touch.Phase, x, y float32) session.UiEvent {
	return session.TouchEvent(touch.Event{ID: id, Phase: phase, X: x, YNorm: y, Pressure: 1})
}

func tap(o *Offline, id touch.PointerID, st Step) error {
	x := st.X0 * o.Width()
	if _, err := o.Handle(pointerEvent(id, touch.PhaseDown, x, st.Y)); err != nil {
		return err
	}
	_, err := o.Handle(pointerEvent(id, touch.PhaseUp, x, st.Y))
	return err
}

func strum(o *Offline, id touch.PointerID, st Step) error {
	w := o.Width()
	x0, x1 := st.X0*w, st.X1*w
	if _, err := o.Handle(pointerEvent(id, touch.PhaseDown, x0, st.Y)); err != nil {
		return err
	}
	n := max(int(st.Duration/strumStep), 1)
	for i := 1; i <= n; i++ {
		if err := o.Advance(st.Duration / time.Duration(n)); err != nil {
			return err
		}
		x := x0 + (x1-x0)*float32(i)/float32(n)
		if _, err := o.Handle(pointerEvent(id, touch.PhaseMove, x, st.Y)); err != nil {
			return err
		}
	}
	_, err := o.Handle(pointerEvent(id, touch.PhaseUp, x1, st.Y))
	return err
}

// Replay feeds a recorded log into o, advancing gap between events.
func Replay(l *session.UiEventLog, o *Offline, gap time.Duration) error {
	for i, ev := range l.Events {
		if _, err := o.Handle(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if err := o.Advance(gap); err != nil {
			return err
		}
	}
	return nil
}
