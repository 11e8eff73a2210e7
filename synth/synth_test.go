package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/chordharp/notes"
)

func TestNoteOnProducesAudio(t *testing.T) {
	s := New(48000)
	s.NoteOn(69, 100)

	i16 := make([]int16, 512)
	s.RenderI16(i16, 1)
	nonZero := false
	for _, x := range i16 {
		if x != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected non-zero i16 output")
	}

	f := renderMono(s, 512)
	if m := maxAbs(f); m == 0 || m > 1 {
		t.Fatalf("f32 peak: got=%f want in (0,1]", m)
	}
}

func TestNoteOffFadesToSilence(t *testing.T) {
	s := New(48000)
	s.NoteOn(69, 100)
	renderMono(s, 256)
	s.NoteOff(69)

	buf := renderMono(s, 6000)
	if tail := maxAbs(buf[5500:]); tail >= 1e-3 {
		t.Fatalf("release tail: got=%g want<1e-3", tail)
	}
	if s.Voices() != 0 {
		t.Fatalf("voices after release: got=%d want=0", s.Voices())
	}
}

func TestReleasedVoiceIsPrunedOnBoundary(t *testing.T) {
	const sr = 48000
	s := New(sr)
	s.NoteOn(60, 127)
	renderMono(s, 100)
	s.NoteOff(60)

	releaseSamples := int(math.Ceil(releaseSeconds * sr))
	renderMono(s, releaseSamples)
	renderMono(s, 256)
	if s.Voices() != 0 {
		t.Fatalf("voices: got=%d want=0", s.Voices())
	}
}

func TestTuningIsClamped(t *testing.T) {
	s := WithTuning(48000, 432)
	cases := []struct {
		set  int
		want int
	}{{0, 432}, {450, 450}, {1000, 450}, {100, 430}}
	for _, c := range cases {
		if c.set != 0 {
			s.SetTuning(c.set)
		}
		if got := s.Tuning(); got != c.want {
			t.Fatalf("tuning after set(%d): got=%d want=%d", c.set, got, c.want)
		}
	}
	if got := WithTuning(48000, 10).Tuning(); got != MinTuningHz {
		t.Fatalf("constructor clamp: got=%d want=%d", got, MinTuningHz)
	}
}

func TestVoiceLimit(t *testing.T) {
	s := New(48000)
	for n := 40; n < 40+MaxVoices+8; n++ {
		s.NoteOn(notes.MidiNote(n), 90)
		if s.Voices() > MaxVoices {
			t.Fatalf("voices: got=%d want<=%d", s.Voices(), MaxVoices)
		}
	}
	if s.Voices() != MaxVoices {
		t.Fatalf("voices: got=%d want=%d", s.Voices(), MaxVoices)
	}
	// The oldest notes were evicted.
	if s.voices[0].midi != notes.MidiNote(48) {
		t.Fatalf("oldest voice: got=%d want=48", s.voices[0].midi)
	}
}

func TestRetriggerReusesVoice(t *testing.T) {
	s := New(48000)
	s.NoteOn(64, 90)
	renderMono(s, 1000)
	s.NoteOff(64)
	s.NoteOn(64, 90)
	if s.Voices() != 1 {
		t.Fatalf("voices: got=%d want=1", s.Voices())
	}
	if s.voices[0].stopped || s.voices[0].phase != 0 {
		t.Fatalf("retriggered voice not reset: %+v", s.voices[0])
	}
}

func TestInterleavedWritesEveryChannel(t *testing.T) {
	s := New(44100)
	s.NoteOn(57, 100)
	buf := make([]float32, 3*300)
	s.RenderF32(buf, 3)
	for f := 0; f < 300; f++ {
		if buf[f*3] != buf[f*3+1] || buf[f*3] != buf[f*3+2] {
			t.Fatalf("frame %d differs across channels: %v", f, buf[f*3:f*3+3])
		}
	}
}

func TestInterleavedPanicsOnBadLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(48000).RenderF32(make([]float32, 5), 2)
}

func TestHarmonicLimit(t *testing.T) {
	cases := []struct {
		freq, sr float32
		want     int
	}{
		{440, 48000, 15},
		{2637, 48000, 9},
		{4000, 48000, 5},
		{30000, 48000, 1},
	}
	for _, c := range cases {
		if got := oddHarmonicLimit(c.freq, c.sr); got != c.want {
			t.Fatalf("oddHarmonicLimit(%v,%v): got=%d want=%d", c.freq, c.sr, got, c.want)
		}
	}
}

func TestSpectrumIsOddHarmonicSquare(t *testing.T) {
	const (
		sr = 48000
		n  = 8192
	)
	s := New(sr)
	s.NoteOn(69, 30)
	renderMono(s, 2048)
	mags := magnitudeSpectrum(t, renderMono(s, n))

	fund, hz := peakNear(mags, sr, n, 440, 30)
	if math.Abs(hz-440) > 12 {
		t.Fatalf("fundamental: got=%.1f Hz want≈440", hz)
	}
	third, _ := peakNear(mags, sr, n, 1320, 30)
	second, _ := peakNear(mags, sr, n, 880, 30)
	if r := third / fund; r < 0.25 || r > 0.45 {
		t.Fatalf("3rd/1st ratio: got=%.3f want≈1/3", r)
	}
	if r := second / fund; r > 0.02 {
		t.Fatalf("even harmonic present: got=%.3f", r)
	}
}

func TestSpectrumIsBandLimited(t *testing.T) {
	const (
		sr = 48000
		n  = 8192
	)
	s := New(sr)
	s.NoteOn(100, 10) // ~2637 Hz, harmonics up to the 9th
	renderMono(s, 512)
	mags := magnitudeSpectrum(t, renderMono(s, n))

	fund, _ := peakNear(mags, sr, n, 2637, 30)
	// The 11th harmonic would alias to 48000-29007 = 18993 Hz.
	alias, _ := peakNear(mags, sr, n, 18993, 60)
	if alias/fund > 0.01 {
		t.Fatalf("aliased energy: got=%.4f of fundamental", alias/fund)
	}
}

func TestToneFilterDarkensOutput(t *testing.T) {
	const (
		sr = 48000
		n  = 8192
	)
	bright := New(sr)
	dark := New(sr)
	dark.SetTone(800)
	for _, s := range []*Synth{bright, dark} {
		s.NoteOn(69, 30)
		renderMono(s, 2048)
	}
	mb := magnitudeSpectrum(t, renderMono(bright, n))
	md := magnitudeSpectrum(t, renderMono(dark, n))

	fb, _ := peakNear(mb, sr, n, 440, 30)
	fd, _ := peakNear(md, sr, n, 440, 30)
	hb, _ := peakNear(mb, sr, n, 440*9, 30)
	hd, _ := peakNear(md, sr, n, 440*9, 30)
	if hd/fd >= hb/fb {
		t.Fatalf("9th harmonic not attenuated: bright=%.4f dark=%.4f", hb/fb, hd/fd)
	}

	dark.SetTone(0)
	if dark.tone != nil {
		t.Fatal("tone filter still enabled")
	}
}

func TestSetSampleRateKeepsPitch(t *testing.T) {
	s := New(48000)
	s.NoteOn(69, 30)
	s.SetSampleRate(44100)
	if s.SampleRate() != 44100 {
		t.Fatalf("sample rate: got=%d", s.SampleRate())
	}
	renderMono(s, 2048)
	mags := magnitudeSpectrum(t, renderMono(s, 8192))
	_, hz := peakNear(mags, 44100, 8192, 440, 40)
	if math.Abs(hz-440) > 12 {
		t.Fatalf("fundamental after rate change: got=%.1f", hz)
	}
}
