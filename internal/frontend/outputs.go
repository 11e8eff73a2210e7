// Package frontend holds the pieces the desktop, mobile and offline
// frontends share: routing effects to the selected note output and driving
// a session against a virtual clock.
package frontend

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/settings"
)

// Outputs routes session effects to the synthesizer or the MIDI driver.
// When the selected backend has no sink the other one is used; with
// neither, effects are dropped.
type Outputs struct {
	mu      sync.Mutex
	backend settings.Backend
	synth   session.NoteSink
	midi    session.NoteSink
	base    notes.Transpose
	log     *slog.Logger
}

// NewOutputs returns a router. Pass an untyped nil for a missing sink.
func NewOutputs(backend settings.Backend, synth, midi session.NoteSink, base notes.Transpose, log *slog.Logger) *Outputs {
	if log == nil {
		log = slog.Default()
	}
	return &Outputs{backend: backend, synth: synth, midi: midi, base: base, log: log}
}

// Backend returns the selected backend.
func (o *Outputs) Backend() settings.Backend {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.backend
}

// Base returns the MIDI base transpose added to every note.
func (o *Outputs) Base() notes.Transpose { return o.base }

// SetSynth replaces the synthesizer sink, after the audio channel was reset.
func (o *Outputs) SetSynth(s session.NoteSink) {
	o.mu.Lock()
	o.synth = s
	o.mu.Unlock()
}

func (o *Outputs) sinkLocked() session.NoteSink {
	switch {
	case o.backend == settings.BackendSynth && o.synth != nil:
		return o.synth
	case o.midi != nil:
		return o.midi
	default:
		return o.synth
	}
}

// Apply sends e to the selected backend.
func (o *Outputs) Apply(e engine.Effects) error {
	if e.ChangeKey != nil {
		o.log.Info("key changed", "transpose", int(*e.ChangeKey))
	}
	o.mu.Lock()
	sink := o.sinkLocked()
	o.mu.Unlock()
	return session.Dispatch(e, sink, o.base)
}

// SetBackend stops the active notes on the current backend and selects b.
func (o *Outputs) SetBackend(b settings.Backend, active []notes.UnmidiNote) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if b == o.backend {
		return nil
	}
	err := session.Dispatch(engine.Effects{StopNotes: active}, o.sinkLocked(), o.base)
	o.backend = b
	o.log.Info("output: backend selected", "backend", b.String())
	return err
}

// StopAll stops notes on every backend.
func (o *Outputs) StopAll(active []notes.UnmidiNote) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	stops := engine.Effects{StopNotes: active}
	return errors.Join(
		session.Dispatch(stops, o.synth, o.base),
		session.Dispatch(stops, o.midi, o.base),
	)
}
