// Package dsp holds the small filters applied to the synthesizer output.
package dsp

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// DefaultQ is the Butterworth quality factor.
const DefaultQ = 0.7071

// Lowpass is a per-sample biquad low-pass on float32 audio. Process does not
// allocate.
type Lowpass struct {
	sec        *biquad.Section
	cutoff     float64
	sampleRate float64
	q          float64
}

// NewLowpass returns a low-pass at cutoff Hz.
func NewLowpass(cutoff, sampleRate, q float32) *Lowpass {
	l := &Lowpass{sec: biquad.NewSection(biquad.Coefficients{})}
	l.Set(cutoff, sampleRate, q)
	return l
}

// Set recomputes the coefficients in place, keeping the filter state.
// The cutoff is clamped to [1 Hz, 0.49 * sampleRate].
func (l *Lowpass) Set(cutoff, sampleRate, q float32) {
	if q <= 0 {
		q = DefaultQ
	}
	sr := float64(max(sampleRate, 1))
	fc := min(max(float64(cutoff), 1), 0.49*sr)
	l.cutoff, l.sampleRate, l.q = fc, sr, float64(q)
	l.sec.Coefficients = design.Lowpass(fc, l.q, sr)
}

// Cutoff returns the effective cutoff in Hz after clamping.
func (l *Lowpass) Cutoff() float64 { return l.cutoff }

// Process filters one sample.
func (l *Lowpass) Process(x float32) float32 {
	y := l.sec.ProcessSample(float64(x))
	st := l.sec.State()
	l.sec.SetState([2]float64{dspcore.FlushDenormals(st[0]), dspcore.FlushDenormals(st[1])})
	return float32(y)
}

// Reset clears the filter state.
func (l *Lowpass) Reset() { l.sec.Reset() }
