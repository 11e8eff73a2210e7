package frontend

import (
	"log/slog"
	"time"

	"github.com/cwbudde/chordharp/audio"
	"github.com/cwbudde/chordharp/layout"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/settings"
)

const renderChunk = 512

// OfflineConfig describes an offline render.
type OfflineConfig struct {
	SampleRate int
	Channels   int
	// Width is the virtual surface width the strings are laid out on.
	Width    float32
	Settings *settings.Settings
	Log      *slog.Logger
}

// Offline drives a session with a virtual clock and renders the synthesizer
// through the polled audio path into memory.
type Offline struct {
	cfg       OfflineConfig
	sess      *session.UiSession
	hub       *audio.Hub
	polled    *audio.Polled
	out       *Outputs
	positions []float32
	rec       *session.UiEventLog

	start   time.Time
	now     time.Time
	frames  int64
	buf     []float32
	samples []float32
}

// NewOffline returns a renderer at time zero with nothing sounding.
func NewOffline(cfg OfflineConfig) *Offline {
	if cfg.Settings == nil {
		cfg.Settings = settings.Default()
	}
	if cfg.Channels < 1 {
		cfg.Channels = 1
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	o := &Offline{
		cfg:       cfg,
		start:     time.Unix(0, 0).UTC(),
		positions: layout.NotePositions(cfg.Width),
		buf:       make([]float32, renderChunk*cfg.Channels),
	}
	o.now = o.start
	o.sess = session.New(
		session.WithClock(func() time.Time { return o.now }),
		session.WithConfig(cfg.Settings.SessionConfig()),
	)
	o.sess.Handle(session.PlayOnTapEvent(cfg.Settings.PlayOnTap), nil)

	o.hub = audio.NewHub(nil, cfg.Log)
	o.hub.SetTuning(cfg.Settings.A4TuningHz)
	o.polled = o.hub.UsePolled(cfg.SampleRate)
	tx := o.hub.Sender()
	if cfg.Settings.ToneCutoffHz > 0 {
		tx.SetTone(cfg.Settings.ToneCutoffHz)
	}
	o.out = NewOutputs(settings.BackendSynth, tx, nil, cfg.Settings.MidiBaseTranspose, cfg.Log)
	return o
}

// Session returns the driven session.
func (o *Offline) Session() *session.UiSession { return o.sess }

// Positions returns the note positions events are resolved against.
func (o *Offline) Positions() []float32 { return o.positions }

// Width returns the virtual surface width.
func (o *Offline) Width() float32 { return o.cfg.Width }

// Elapsed returns the virtual time since the start.
func (o *Offline) Elapsed() time.Duration { return o.now.Sub(o.start) }

// Record makes Handle append every event to l.
func (o *Offline) Record(l *session.UiEventLog) { o.rec = l }

// Handle applies ev at the current virtual time.
func (o *Offline) Handle(ev session.UiEvent) (session.Result, error) {
	if o.rec != nil {
		o.rec.Record(ev)
	}
	r := o.sess.Handle(ev, o.positions)
	return r, o.out.Apply(r.Effects)
}

// Advance renders d of audio, flushing deferred stops when they fall due.
func (o *Offline) Advance(d time.Duration) error {
	end := o.now.Add(d)
	for {
		due, ok := o.sess.NextDue()
		if !ok || due.After(end) {
			break
		}
		if due.After(o.now) {
			o.renderUntil(due)
		}
		if err := o.out.Apply(o.sess.Tick()); err != nil {
			return err
		}
	}
	o.renderUntil(end)
	return nil
}

// Finish releases every note, renders tail and returns the interleaved
// samples.
func (o *Offline) Finish(tail time.Duration) ([]float32, error) {
	if err := o.out.Apply(o.sess.Shutdown()); err != nil {
		return o.samples, err
	}
	if err := o.Advance(tail); err != nil {
		return o.samples, err
	}
	return o.samples, nil
}

func (o *Offline) renderUntil(t time.Time) {
	target := int64(t.Sub(o.start).Seconds() * float64(o.cfg.SampleRate))
	for o.frames < target {
		n := int(min(target-o.frames, renderChunk))
		chunk := o.buf[:n*o.cfg.Channels]
		o.polled.FillF32(chunk, o.cfg.Channels)
		o.samples = append(o.samples, chunk...)
		o.frames += int64(n)
	}
	o.now = t
}
