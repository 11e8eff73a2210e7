//go:build android

package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/bep/debounce"
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	mtouch "golang.org/x/mobile/event/touch"
	"golang.org/x/mobile/gl"

	"github.com/cwbudde/chordharp/audio"
	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/internal/frontend"
	"github.com/cwbudde/chordharp/layout"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/pixelfont"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/settings"
	"github.com/cwbudde/chordharp/touch"
	"github.com/cwbudde/chordharp/view"
	"github.com/cwbudde/chordharp/wheel"
)

const (
	mobileRate     = 48000
	mobileChannels = 1
	// Swipes on a degree button shorter than this keep the plain chord.
	wheelDeadzone = 24
)

// finger is what one touch sequence is holding.
type finger struct {
	kind   fingerKind
	button input.Button
	x0, y0 float32
}

type fingerKind uint8

const (
	onStrings fingerKind = iota
	onButton
	onWheel
)

type mobile struct {
	settings *settings.Settings
	sess     *session.UiSession
	out      *frontend.Outputs
	hub      *audio.Hub
	log      *slog.Logger

	fingers map[mtouch.Sequence]finger
	held    map[input.Button]int
	wake    func(f func())

	width, height int
	positions     []float32
	bar           []view.ButtonRect
	frame         *pixelfont.Frame
	rgba          []byte
	dirty         bool

	prog    gl.Program
	tex     gl.Texture
	vbo     gl.Buffer
	aPos    gl.Attrib
	aUV     gl.Attrib
	uTex    gl.Uniform
	texW    int
	texH    int
	glReady bool
}

func newMobile(log *slog.Logger) *mobile {
	s := settings.Default()
	s.MidiBaseTranspose = settings.MobileBaseTranspose

	m := &mobile{
		settings: s,
		sess:     session.New(session.WithConfig(s.SessionConfig())),
		hub:      audio.Default(),
		log:      log,
		fingers:  make(map[mtouch.Sequence]finger),
		held:     make(map[input.Button]int),
		wake:     debounce.New(s.StopDelay() + 10*time.Millisecond),
		frame:    pixelfont.NewFrame(1, 1),
	}
	m.sess.Handle(session.PlayOnTapEvent(s.PlayOnTap), nil)

	var synthSink session.NoteSink
	if err := m.hub.SetTuning(s.A4TuningHz); err != nil {
		log.Warn("audio: tuning not sent", "err", err)
	}
	if err := m.hub.Start(mobileRate, mobileChannels); err != nil {
		log.Error("audio: no output, instrument is silent", "err", err)
	} else {
		synthSink = m.hub.Sender()
	}
	m.out = frontend.NewOutputs(settings.BackendSynth, synthSink, nil, s.MidiBaseTranspose, log)
	return m
}

func (m *mobile) barHeight() int {
	if !m.settings.ShowChordButtons {
		return 0
	}
	return view.BarHeight(m.height)
}

func (m *mobile) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	m.frame.Resize(w, h)
	m.positions = layout.MobileNotePositions(float32(w))
	m.bar = nil
	if m.settings.ShowChordButtons {
		m.bar = view.ButtonBar(w, h)
	}
	m.dirty = true
}

func (m *mobile) handle(ev session.UiEvent) {
	m.apply(m.sess.Handle(ev, m.positions).Effects)
}

func (m *mobile) apply(e engine.Effects) {
	if e.Redraw {
		m.dirty = true
	}
	if e.Empty() {
		return
	}
	if err := m.hub.Revive(); err != nil {
		m.log.Error("audio: stream lost", "err", err)
	}
	if err := m.out.Apply(e); err != nil {
		m.log.Warn("output: dropped notes", "err", err)
	}
}

// stringTouch forwards a finger on the strings. Rows are measured from the
// bottom edge of the button bar.
func (m *mobile) stringTouch(seq mtouch.Sequence, phase touch.Phase, x, y float32) {
	top := float32(m.barHeight())
	span := max(float32(m.height)-top, 1)
	m.handle(session.TouchEvent(touch.Event{
		ID:       touch.PointerID(seq),
		Phase:    phase,
		X:        x,
		YNorm:    notes.Clamp((y-top)/span, 0, 1),
		Pressure: 1,
	}))
}

func (m *mobile) handleTouch(e mtouch.Event) {
	switch e.Type {
	case mtouch.TypeBegin:
		if b, ok := view.ButtonAt(m.bar, e.X, e.Y); ok {
			m.buttonDown(e.Sequence, b, e.X, e.Y)
			return
		}
		m.fingers[e.Sequence] = finger{kind: onStrings}
		m.stringTouch(e.Sequence, touch.PhaseDown, e.X, e.Y)

	case mtouch.TypeMove:
		f, ok := m.fingers[e.Sequence]
		if !ok {
			return
		}
		switch f.kind {
		case onStrings:
			m.stringTouch(e.Sequence, touch.PhaseMove, e.X, e.Y)
		case onWheel:
			dir := -1
			if d, ok := wheel.FromVector(e.X-f.x0, e.Y-f.y0, wheelDeadzone); ok {
				dir = int(d)
			}
			m.handle(session.WheelEvent(session.WheelMove, f.button, dir))
		}

	case mtouch.TypeEnd:
		f, ok := m.fingers[e.Sequence]
		if !ok {
			return
		}
		delete(m.fingers, e.Sequence)
		switch f.kind {
		case onStrings:
			m.stringTouch(e.Sequence, touch.PhaseUp, e.X, e.Y)
		case onButton:
			m.release(f.button)
			m.handle(session.ButtonEvent(engine.Released, f.button))
		case onWheel:
			m.release(f.button)
			m.handle(session.WheelEvent(session.WheelClose, f.button, -1))
		}
	}
}

func (m *mobile) buttonDown(seq mtouch.Sequence, b input.Button, x, y float32) {
	m.held[b]++
	m.dirty = true
	if b.IsDegree() && !m.sess.WheelOpen() {
		m.fingers[seq] = finger{kind: onWheel, button: b, x0: x, y0: y}
		m.handle(session.WheelEvent(session.WheelOpen, b, -1))
		return
	}
	m.fingers[seq] = finger{kind: onButton, button: b}
	m.handle(session.ButtonEvent(engine.Pressed, b))
}

func (m *mobile) release(b input.Button) {
	if m.held[b]--; m.held[b] <= 0 {
		delete(m.held, b)
	}
	m.dirty = true
}

func (m *mobile) render() {
	view.Draw(m.frame, view.SceneOf(m.sess.State(), m.positions), view.OverlayOf(m.settings, false))
	if m.bar != nil {
		view.DrawButtons(m.frame, m.bar, func(b input.Button) bool { return m.held[b] > 0 })
	}
	m.rgba = m.frame.RGBA(m.rgba, false)
	m.dirty = false
}

func (m *mobile) shutdown() {
	e := m.sess.Shutdown()
	if err := m.out.StopAll(e.StopNotes); err != nil {
		m.log.Warn("output: stopping notes on exit", "err", err)
	}
	if err := m.hub.Close(); err != nil {
		m.log.Warn("audio: close", "err", err)
	}
}

func f32bytes(vals []float32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func compileShader(glctx gl.Context, kind gl.Enum, src string) (gl.Shader, error) {
	sh := glctx.CreateShader(kind)
	glctx.ShaderSource(sh, src)
	glctx.CompileShader(sh)
	if glctx.GetShaderi(sh, gl.COMPILE_STATUS) == 0 {
		log := glctx.GetShaderInfoLog(sh)
		glctx.DeleteShader(sh)
		return gl.Shader{}, fmt.Errorf("shader compile failed: %s", log)
	}
	return sh, nil
}

func linkProgram(glctx gl.Context, vertSrc, fragSrc string) (gl.Program, error) {
	vs, err := compileShader(glctx, gl.VERTEX_SHADER, vertSrc)
	if err != nil {
		return gl.Program{}, err
	}
	fs, err := compileShader(glctx, gl.FRAGMENT_SHADER, fragSrc)
	if err != nil {
		glctx.DeleteShader(vs)
		return gl.Program{}, err
	}
	prog := glctx.CreateProgram()
	glctx.AttachShader(prog, vs)
	glctx.AttachShader(prog, fs)
	glctx.LinkProgram(prog)
	glctx.DeleteShader(vs)
	glctx.DeleteShader(fs)
	if glctx.GetProgrami(prog, gl.LINK_STATUS) == 0 {
		log := glctx.GetProgramInfoLog(prog)
		glctx.DeleteProgram(prog)
		return gl.Program{}, fmt.Errorf("program link failed: %s", log)
	}
	return prog, nil
}

const vertSrc = `
attribute vec2 aPos;
attribute vec2 aUV;
varying vec2 vUV;
void main() {
  vUV = aUV;
  gl_Position = vec4(aPos, 0.0, 1.0);
}`

const fragSrc = `
precision mediump float;
varying vec2 vUV;
uniform sampler2D uTex;
void main() {
  gl_FragColor = texture2D(uTex, vUV);
}`

func (m *mobile) initGL(glctx gl.Context) error {
	if m.glReady {
		return nil
	}
	prog, err := linkProgram(glctx, vertSrc, fragSrc)
	if err != nil {
		return err
	}
	verts := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		-1, 1, 0, 0,
		1, 1, 1, 0,
	}
	m.vbo = glctx.CreateBuffer()
	glctx.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	glctx.BufferData(gl.ARRAY_BUFFER, f32bytes(verts), gl.STATIC_DRAW)

	m.tex = glctx.CreateTexture()
	glctx.ActiveTexture(gl.TEXTURE0)
	glctx.BindTexture(gl.TEXTURE_2D, m.tex)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	m.texW, m.texH = 0, 0

	m.prog = prog
	m.aPos = glctx.GetAttribLocation(prog, "aPos")
	m.aUV = glctx.GetAttribLocation(prog, "aUV")
	m.uTex = glctx.GetUniformLocation(prog, "uTex")
	m.glReady = true
	return nil
}

func (m *mobile) destroyGL(glctx gl.Context) {
	if !m.glReady {
		return
	}
	glctx.DeleteBuffer(m.vbo)
	glctx.DeleteTexture(m.tex)
	glctx.DeleteProgram(m.prog)
	m.glReady = false
}

func (m *mobile) drawGL(glctx gl.Context) {
	if !m.glReady || m.width <= 0 || m.height <= 0 {
		return
	}
	glctx.Viewport(0, 0, m.width, m.height)
	glctx.ClearColor(0, 0, 0, 1)
	glctx.Clear(gl.COLOR_BUFFER_BIT)

	glctx.ActiveTexture(gl.TEXTURE0)
	glctx.BindTexture(gl.TEXTURE_2D, m.tex)
	if m.texW != m.width || m.texH != m.height {
		glctx.TexImage2D(gl.TEXTURE_2D, 0, int(gl.RGBA), m.width, m.height, gl.RGBA, gl.UNSIGNED_BYTE, m.rgba)
		m.texW, m.texH = m.width, m.height
	} else {
		glctx.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, m.width, m.height, gl.RGBA, gl.UNSIGNED_BYTE, m.rgba)
	}

	glctx.UseProgram(m.prog)
	glctx.Uniform1i(m.uTex, 0)
	glctx.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	glctx.EnableVertexAttribArray(m.aPos)
	glctx.EnableVertexAttribArray(m.aUV)
	glctx.VertexAttribPointer(m.aPos, 2, gl.FLOAT, false, 16, 0)
	glctx.VertexAttribPointer(m.aUV, 2, gl.FLOAT, false, 16, 8)
	glctx.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	glctx.DisableVertexAttribArray(m.aPos)
	glctx.DisableVertexAttribArray(m.aUV)
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := newMobile(log)

	app.Main(func(a app.App) {
		var glctx gl.Context
		for e := range a.Events() {
			switch e := a.Filter(e).(type) {
			case lifecycle.Event:
				switch e.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					ctx, ok := e.DrawContext.(gl.Context)
					if !ok {
						continue
					}
					glctx = ctx
					if err := m.initGL(glctx); err != nil {
						log.Error("gl: init failed", "err", err)
						return
					}
					m.dirty = true
					a.Send(paint.Event{})
				case lifecycle.CrossOff:
					if glctx != nil {
						m.destroyGL(glctx)
						glctx = nil
					}
				}
				if e.To == lifecycle.StageDead {
					m.shutdown()
					return
				}

			case size.Event:
				m.resize(e.WidthPx, e.HeightPx)
				a.Send(paint.Event{})

			case mtouch.Event:
				wheelWasOpen := m.sess.WheelOpen()
				m.handleTouch(e)
				if wheelWasOpen && !m.sess.WheelOpen() {
					// Wake once the held-back stops are due.
					m.wake(func() { a.Send(paint.Event{}) })
				}
				if m.dirty {
					a.Send(paint.Event{})
				}

			case paint.Event:
				m.apply(m.sess.Tick())
				if glctx == nil || e.External {
					continue
				}
				if m.dirty || m.rgba == nil {
					m.render()
				}
				m.drawGL(glctx)
				a.Publish()
			}
		}
	})
}
