// Package synth is a small polyphonic band-limited square-wave synthesizer.
// A Synth is owned by the audio thread; it never allocates while rendering.
package synth

import (
	"math"

	"github.com/cwbudde/chordharp/dsp"
	"github.com/cwbudde/chordharp/notes"
)

// MaxVoices is the polyphony limit. The oldest voice is evicted beyond it.
const MaxVoices = 16

// A4 tuning range in Hz.
const (
	MinTuningHz     = 430
	MaxTuningHz     = 450
	DefaultTuningHz = 440
)

const pruneMask = 0xFF

// Synth mixes up to MaxVoices square-wave voices through a soft limiter.
type Synth struct {
	sampleRate float32
	a4         float32
	sample     uint64
	voices     []voice

	tone       *dsp.Lowpass
	toneCutoff float32
}

// New returns a synth tuned to A4 = 440 Hz.
func New(sampleRate int) *Synth {
	return WithTuning(sampleRate, DefaultTuningHz)
}

// WithTuning returns a synth with the given A4 tuning, clamped to
// [MinTuningHz, MaxTuningHz].
func WithTuning(sampleRate int, a4Hz int) *Synth {
	if sampleRate < 1 {
		sampleRate = 1
	}
	return &Synth{
		sampleRate: float32(sampleRate),
		a4:         float32(notes.Clamp(a4Hz, MinTuningHz, MaxTuningHz)),
		voices:     make([]voice, 0, MaxVoices),
	}
}

// SampleRate returns the render rate in Hz.
func (s *Synth) SampleRate() int { return int(s.sampleRate) }

// SetSampleRate changes the render rate. Sounding voices keep their pitch.
func (s *Synth) SetSampleRate(sampleRate int) {
	if sampleRate < 1 || float32(sampleRate) == s.sampleRate {
		return
	}
	s.sampleRate = float32(sampleRate)
	for i := range s.voices {
		s.voices[i].retune(s.sampleRate, s.a4)
	}
	if s.tone != nil {
		s.tone.Set(s.toneCutoff, s.sampleRate, dsp.DefaultQ)
	}
}

// Tuning returns the A4 tuning in Hz.
func (s *Synth) Tuning() int { return int(math.Round(float64(s.a4))) }

// SetTuning sets the A4 tuning, clamped to [MinTuningHz, MaxTuningHz].
// Sounding voices are retuned.
func (s *Synth) SetTuning(a4Hz int) {
	s.a4 = float32(notes.Clamp(a4Hz, MinTuningHz, MaxTuningHz))
	for i := range s.voices {
		s.voices[i].retune(s.sampleRate, s.a4)
	}
}

// SetTone enables a low-pass on the limited output. A cutoff of 0 disables
// it.
func (s *Synth) SetTone(cutoffHz float32) {
	s.toneCutoff = cutoffHz
	if cutoffHz <= 0 {
		s.tone = nil
		return
	}
	if s.tone == nil {
		s.tone = dsp.NewLowpass(cutoffHz, s.sampleRate, dsp.DefaultQ)
		return
	}
	s.tone.Set(cutoffHz, s.sampleRate, dsp.DefaultQ)
}

// Voices returns the number of live voices.
func (s *Synth) Voices() int { return len(s.voices) }

// NoteOn starts midi at velocity. A voice already on midi restarts from
// zero phase; otherwise a new voice is added, evicting the oldest when full.
func (s *Synth) NoteOn(midi notes.MidiNote, velocity notes.NoteVolume) {
	v := newVoice(midi, velocity, s.sample, s.sampleRate, s.a4)
	for i := range s.voices {
		if s.voices[i].midi == midi {
			s.voices[i] = v
			return
		}
	}
	if len(s.voices) >= MaxVoices {
		copy(s.voices, s.voices[1:])
		s.voices = s.voices[:len(s.voices)-1]
	}
	s.voices = append(s.voices, v)
}

// NoteOff starts the release of every voice on midi.
func (s *Synth) NoteOff(midi notes.MidiNote) {
	for i := range s.voices {
		v := &s.voices[i]
		if v.midi == midi && !v.stopped {
			v.stopped = true
			v.stop = s.sample
		}
	}
}

// AllNotesOff releases every voice.
func (s *Synth) AllNotesOff() {
	for i := range s.voices {
		if !s.voices[i].stopped {
			s.voices[i].stopped = true
			s.voices[i].stop = s.sample
		}
	}
}

func (s *Synth) renderSample() float32 {
	var acc float32
	for i := range s.voices {
		acc += s.voices[i].next(s.sample, s.sampleRate)
	}
	s.sample++

	if s.sample&pruneMask == 0 {
		s.prune()
	}

	out := acc / (1 + float32(math.Abs(float64(acc))))
	if s.tone != nil {
		out = s.tone.Process(out)
	}
	return out
}

func (s *Synth) prune() {
	live := s.voices[:0]
	for _, v := range s.voices {
		if v.level(s.sample, s.sampleRate) > Silence {
			live = append(live, v)
		}
	}
	s.voices = live
}

func checkLayout(n, channels int) int {
	if channels < 1 {
		panic("synth: channels must be >= 1")
	}
	if n%channels != 0 {
		panic("synth: buffer length is not a multiple of the channel count")
	}
	return n / channels
}

// RenderF32 fills an interleaved buffer, writing each mono sample to every
// channel of the frame.
func (s *Synth) RenderF32(out []float32, channels int) {
	frames := checkLayout(len(out), channels)
	for f := 0; f < frames; f++ {
		v := s.renderSample()
		base := f * channels
		for ch := 0; ch < channels; ch++ {
			out[base+ch] = v
		}
	}
}

// RenderI16 is RenderF32 for signed 16-bit output.
func (s *Synth) RenderI16(out []int16, channels int) {
	frames := checkLayout(len(out), channels)
	for f := 0; f < frames; f++ {
		v := int16(notes.Clamp(s.renderSample(), -1, 1) * math.MaxInt16)
		base := f * channels
		for ch := 0; ch < channels; ch++ {
			out[base+ch] = v
		}
	}
}
