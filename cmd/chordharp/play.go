package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"

	"github.com/cwbudde/chordharp/audio"
	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/internal/frontend"
	"github.com/cwbudde/chordharp/layout"
	"github.com/cwbudde/chordharp/midiout"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/pixelfont"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/settings"
	"github.com/cwbudde/chordharp/touch"
	"github.com/cwbudde/chordharp/view"
)

const (
	windowWidth  = 800
	windowHeight = 600
	playRate     = 48000
	playChannels = 2
)

var playRecord string

func init() {
	// glfw must run on the main thread.
	runtime.LockOSThread()

	playCmd.Flags().StringVar(&playRecord, "record", "", "save the session's events to this log file on exit")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the instrument window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return runDesktop(s)
	},
}

type desktop struct {
	win      *glfw.Window
	settings *settings.Settings
	sess     *session.UiSession
	out      *frontend.Outputs
	hub      *audio.Hub
	watcher  *midiout.PortWatcher
	rec      *session.UiEventLog

	frame     *pixelfont.Frame
	rgba      []byte
	positions []float32
	scaleX    float64
	scaleY    float64

	mouseDown    bool
	cursorX      float32
	cursorY      float32
	settingsOpen bool
	dirty        bool
}

func runDesktop(s *settings.Settings) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(windowWidth, windowHeight, "chordharp", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	d := &desktop{
		win:      win,
		settings: s,
		sess:     session.New(session.WithConfig(s.SessionConfig())),
	}
	d.sess.Handle(session.PlayOnTapEvent(s.PlayOnTap), nil)
	d.openOutputs()
	if playRecord != "" {
		d.rec = session.NewLog(windowWidth)
	}

	fbW, fbH := win.GetFramebufferSize()
	d.resize(fbW, fbH)

	win.SetKeyCallback(d.onKey)
	win.SetMouseButtonCallback(d.onMouseButton)
	win.SetCursorPosCallback(d.onCursor)
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) { d.resize(w, h) })

	for !win.ShouldClose() {
		glfw.WaitEventsTimeout(d.waitTimeout().Seconds())
		d.tick()
		if d.dirty {
			d.draw()
		}
	}
	return d.shutdown()
}

// openOutputs starts the synthesizer stream and looks for a MIDI port.
// Either may be missing; notes then go to the other or nowhere.
func (d *desktop) openOutputs() {
	var synthSink session.NoteSink
	d.hub = audio.Default()
	if err := d.hub.SetTuning(d.settings.A4TuningHz); err != nil {
		slog.Warn("audio: tuning not sent", "err", err)
	}
	if err := d.hub.Start(playRate, playChannels); err != nil {
		slog.Error("audio: no output, synthesizer disabled", "err", err)
	} else {
		tx := d.hub.Sender()
		if d.settings.ToneCutoffHz > 0 {
			tx.SetTone(d.settings.ToneCutoffHz)
		}
		synthSink = tx
	}

	driver := midiout.NewDriver(nil)
	w, err := midiout.NewPortWatcher(driver, d.settings.MidiPort, slog.Default())
	if err != nil {
		slog.Error("midi: driver unavailable", "err", err)
	} else {
		d.watcher = w
		if err := w.Connect(); err != nil {
			slog.Warn("midi: no output port yet", "err", err)
		}
	}

	d.out = frontend.NewOutputs(d.settings.AudioBackend, synthSink, driver, d.settings.MidiBaseTranspose, slog.Default())
}

func (d *desktop) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	ww, wh := d.win.GetSize()
	d.scaleX, d.scaleY = float64(w)/float64(max(ww, 1)), float64(h)/float64(max(wh, 1))
	if d.frame == nil {
		d.frame = pixelfont.NewFrame(w, h)
	} else {
		d.frame.Resize(w, h)
	}
	d.positions = layout.NotePositions(float32(w))
	gl.Viewport(0, 0, int32(w), int32(h))
	d.dirty = true
}

func (d *desktop) waitTimeout() time.Duration {
	timeout := midiout.RescanInterval
	if due, ok := d.sess.NextDue(); ok {
		timeout = min(timeout, max(time.Until(due), time.Millisecond))
	}
	return timeout
}

func (d *desktop) tick() {
	d.apply(d.sess.Tick())
	if d.watcher != nil {
		d.watcher.Tick()
	}
}

func (d *desktop) handle(ev session.UiEvent) {
	if d.rec != nil {
		d.rec.Record(ev)
	}
	d.apply(d.sess.Handle(ev, d.positions).Effects)
}

func (d *desktop) apply(e engine.Effects) {
	if e.Redraw {
		d.dirty = true
	}
	if e.Empty() {
		return
	}
	if d.out.Backend() == settings.BackendSynth {
		if err := d.hub.Revive(); err != nil {
			slog.Error("audio: stream lost", "err", err)
		}
	}
	if err := d.out.Apply(e); err != nil {
		slog.Warn("output: dropped notes", "err", err)
	}
}

func keyFor(k glfw.Key) (input.Key, bool) {
	switch {
	case k >= glfw.KeyA && k <= glfw.KeyZ:
		return input.Char(rune('a' + (k - glfw.KeyA))), true
	case k >= glfw.Key0 && k <= glfw.Key9:
		return input.Char(rune('0' + (k - glfw.Key0))), true
	case k == glfw.KeyPeriod:
		return input.Char('.'), true
	case k == glfw.KeyLeftControl || k == glfw.KeyRightControl:
		return input.Control, true
	case k == glfw.KeyTab:
		return input.Tab, true
	}
	return input.Key{}, false
}

func (d *desktop) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
		return
	}
	if action == glfw.Repeat {
		return
	}
	k, ok := keyFor(key)
	if !ok {
		return
	}
	state := engine.Pressed
	if action == glfw.Release {
		state = engine.Released
	}
	d.handle(session.KeyEvent(state, k))
}

func (d *desktop) touch(phase touch.Phase) {
	h := float32(max(d.frame.H, 1))
	d.handle(session.TouchEvent(touch.Event{
		Phase:    phase,
		X:        d.cursorX,
		YNorm:    notes.Clamp(d.cursorY/h, 0, 1),
		Pressure: 1,
	}))
}

func (d *desktop) onMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	if action == glfw.Release {
		if d.mouseDown {
			d.mouseDown = false
			d.touch(touch.PhaseUp)
		}
		return
	}

	a, consumed := view.HitTest(d.frame.W, d.settingsOpen, d.cursorX, d.cursorY)
	if a != view.ActionNone {
		d.settingsAction(a)
	}
	if consumed {
		return
	}
	d.mouseDown = true
	d.touch(touch.PhaseDown)
}

func (d *desktop) settingsAction(a view.Action) {
	prevTap, prevBackend := d.settings.PlayOnTap, d.settings.AudioBackend
	d.settingsOpen = a.Apply(d.settings, d.settingsOpen)
	if d.settings.PlayOnTap != prevTap {
		d.handle(session.PlayOnTapEvent(d.settings.PlayOnTap))
	}
	if d.settings.AudioBackend != prevBackend {
		if err := d.out.SetBackend(d.settings.AudioBackend, d.sess.State().ActiveNotes()); err != nil {
			slog.Warn("output: stopping notes on switch", "err", err)
		}
	}
	d.dirty = true
}

func (d *desktop) onCursor(_ *glfw.Window, x, y float64) {
	d.cursorX, d.cursorY = float32(x*d.scaleX), float32(y*d.scaleY)
	if d.mouseDown {
		d.touch(touch.PhaseMove)
	}
}

func (d *desktop) draw() {
	d.dirty = false
	view.Draw(d.frame, view.SceneOf(d.sess.State(), d.positions), view.OverlayOf(d.settings, d.settingsOpen))
	d.rgba = d.frame.RGBA(d.rgba, true)

	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.RasterPos2f(-1, -1)
	gl.DrawPixels(int32(d.frame.W), int32(d.frame.H), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(d.rgba))
	d.win.SwapBuffers()
}

func (d *desktop) shutdown() error {
	e := d.sess.Shutdown()
	if err := d.out.StopAll(e.StopNotes); err != nil {
		slog.Warn("output: stopping notes on exit", "err", err)
	}
	if d.watcher != nil {
		d.watcher.Close()
	}
	if err := d.hub.Close(); err != nil {
		slog.Warn("audio: close", "err", err)
	}
	if d.rec != nil {
		if err := d.rec.Save(playRecord); err != nil {
			return fmt.Errorf("save event log: %w", err)
		}
		slog.Info("event log saved", "path", playRecord, "events", len(d.rec.Events), "id", d.rec.ID)
	}
	return nil
}
