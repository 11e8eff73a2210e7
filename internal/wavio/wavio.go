// Package wavio writes rendered instrument audio to 16-bit WAV files.
package wavio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// WriteWAV writes interleaved float samples as 16-bit PCM, creating the
// parent directory when needed.
func WriteWAV(path string, samples []float32, sampleRate, channels int) error {
	if channels < 1 {
		return fmt.Errorf("wavio: channels must be >= 1, got %d", channels)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("wavio: %d samples is not a multiple of %d channels", len(samples), channels)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadWAV returns the interleaved float samples of a file with its sample
// rate and channel count.
func ReadWAV(path string) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	return buf.Data, buf.Format.SampleRate, buf.Format.NumChannels, nil
}

// Resample converts interleaved audio between rates one channel at a time.
// Equal rates return the input unchanged.
func Resample(in []float32, channels, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate || len(in) == 0 {
		return in, nil
	}
	if channels < 1 {
		return nil, fmt.Errorf("wavio: channels must be >= 1, got %d", channels)
	}
	frames := len(in) / channels
	var out []float32
	for c := 0; c < channels; c++ {
		r, err := dspresample.NewForRates(
			float64(fromRate),
			float64(toRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, err
		}
		mono := make([]float64, frames)
		for i := range mono {
			mono[i] = float64(in[i*channels+c])
		}
		res := r.Process(mono)
		if out == nil {
			out = make([]float32, len(res)*channels)
		}
		for i := 0; i < len(res) && i*channels+c < len(out); i++ {
			out[i*channels+c] = float32(res[i])
		}
	}
	return out, nil
}

// Stats returns the peak absolute sample and the RMS level.
func Stats(samples []float32) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		peak = math.Max(peak, math.Abs(v))
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}

// Diff returns the largest absolute sample difference between a and b and
// the RMS of the difference. The shorter input is padded with silence.
func Diff(a, b []float32) (maxDiff, rmsDiff float64) {
	n := max(len(a), len(b))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = float64(a[i])
		}
		if i < len(b) {
			y = float64(b[i])
		}
		d := math.Abs(x - y)
		maxDiff = math.Max(maxDiff, d)
		sum += d * d
	}
	return maxDiff, math.Sqrt(sum / float64(n))
}

// CompareFile diffs samples against the reference WAV at path. The file must
// have the same sample rate and channel count.
func CompareFile(path string, samples []float32, sampleRate, channels int) (maxDiff, rmsDiff float64, err error) {
	ref, sr, ch, err := ReadWAV(path)
	if err != nil {
		return 0, 0, err
	}
	if sr != sampleRate || ch != channels {
		return 0, 0, fmt.Errorf("wavio: %s is %d Hz/%d ch, want %d Hz/%d ch", path, sr, ch, sampleRate, channels)
	}
	maxDiff, rmsDiff = Diff(samples, ref)
	return maxDiff, rmsDiff, nil
}
