package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/chordharp/notes"
)

const (
	attackSeconds  = 0.004
	tauSeconds     = 0.35
	releaseSeconds = 0.10
	// Silence is the envelope level below which a voice is pruned.
	Silence = 1e-4

	ampScale    = 0.12
	maxHarmonic = 15
	twoPi       = 2 * math.Pi
)

// voice is one sounding note. Voices are identified by their MIDI number.
type voice struct {
	midi        notes.MidiNote
	start       uint64
	stop        uint64
	stopped     bool
	phase       float32
	phaseInc    float32
	amp0        float32
	maxHarmonic int
}

func newVoice(midi notes.MidiNote, velocity notes.NoteVolume, now uint64, sampleRate, a4 float32) voice {
	v := voice{
		midi:  midi,
		start: now,
		amp0:  float32(notes.Clamp(velocity, 0, 127)) / 127 * ampScale,
	}
	v.retune(sampleRate, a4)
	return v
}

// retune recomputes the pitch-dependent fields. Phase is kept.
func (v *voice) retune(sampleRate, a4 float32) {
	freq := midiToHz(v.midi, a4)
	v.phaseInc = twoPi * freq / sampleRate
	v.maxHarmonic = oddHarmonicLimit(freq, sampleRate)
}

// oddHarmonicLimit is the largest odd n with n*freq under Nyquist, capped at
// maxHarmonic and never below 1.
func oddHarmonicLimit(freq, sampleRate float32) int {
	h := int(math.Floor(float64(sampleRate * 0.5 / freq)))
	if h < 1 {
		h = 1
	}
	if h&1 == 0 {
		h--
	}
	if h > maxHarmonic {
		h = maxHarmonic
	}
	return h
}

func midiToHz(midi notes.MidiNote, a4 float32) float32 {
	return a4 * pow2Approx(float32(int(midi)-69)/12)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// level is the envelope gain without the attack ramp, used for pruning.
func (v *voice) level(now uint64, sampleRate float32) float32 {
	age := float32(now-v.start) / sampleRate
	return v.amp0 * approx.FastExp(-age/tauSeconds) * v.release(now, sampleRate)
}

func (v *voice) release(now uint64, sampleRate float32) float32 {
	if !v.stopped {
		return 1
	}
	var t float32
	if now > v.stop {
		t = float32(now-v.stop) / sampleRate
	}
	return notes.Clamp(1-t/releaseSeconds, 0, 1)
}

// next returns the voice's sample at now and advances its phase.
func (v *voice) next(now uint64, sampleRate float32) float32 {
	age := float32(now-v.start) / sampleRate
	attack := age / attackSeconds
	if attack > 1 {
		attack = 1
	}
	env := attack * approx.FastExp(-age/tauSeconds) * v.release(now, sampleRate)

	// Odd harmonics via the recurrence sin((n+2)x) = 2cos(2x)sin(nx) - sin((n-2)x).
	s := math.Sin(float64(v.phase))
	k := 2 * math.Cos(2*float64(v.phase))
	prev, cur := -s, s
	var sq float64
	for n := 1; n <= v.maxHarmonic; n += 2 {
		sq += cur / float64(n)
		prev, cur = cur, k*cur-prev
	}
	sq *= 4 / math.Pi

	v.phase += v.phaseInc
	if v.phase >= twoPi {
		v.phase -= twoPi
	}
	return float32(dspcore.FlushDenormals(float64(v.amp0*env) * sq))
}
