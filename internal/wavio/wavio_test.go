package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	in := []float32{0, 0, 0.5, -0.5, -0.25, 0.25, 0.1, -0.1}
	if err := WriteWAV(path, in, 22050, 2); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	got, sr, ch, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if sr != 22050 || ch != 2 {
		t.Fatalf("format: got=%d/%d want=22050/2", sr, ch)
	}
	if len(got) != len(in) {
		t.Fatalf("length: got=%d want=%d", len(got), len(in))
	}
	for i := range in {
		if math.Abs(float64(got[i]-in[i])) > 1e-3 {
			t.Fatalf("sample %d: got=%v want=%v", i, got[i], in[i])
		}
	}
}

func TestWriteWAVRejectsBadShape(t *testing.T) {
	dir := t.TempDir()
	if err := WriteWAV(filepath.Join(dir, "a.wav"), []float32{0, 0, 0}, 44100, 2); err == nil {
		t.Fatalf("expected error for odd stereo length")
	}
	if err := WriteWAV(filepath.Join(dir, "b.wav"), nil, 44100, 0); err == nil {
		t.Fatalf("expected error for zero channels")
	}
}

func TestReadWAVMissingFile(t *testing.T) {
	if _, _, _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	in := []float32{1, 2, 3}
	out, err := Resample(in, 1, 48000, 48000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if &out[0] != &in[0] {
		t.Fatalf("expected input slice back")
	}
}

func TestResampleKeepsChannelsInterleaved(t *testing.T) {
	const frames = 4800
	in := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		in[2*i] = 0.5
	}
	out, err := Resample(in, 2, 48000, 24000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out)%2 != 0 {
		t.Fatalf("odd output length %d", len(out))
	}
	n := len(out) / 2
	if n < frames/2-200 || n > frames/2+200 {
		t.Fatalf("frames: got=%d want~%d", n, frames/2)
	}
	// Away from the edges the left channel holds the DC level and the right
	// channel stays silent.
	mid := n / 2
	if math.Abs(float64(out[2*mid])-0.5) > 0.05 {
		t.Fatalf("left: got=%v want~0.5", out[2*mid])
	}
	if math.Abs(float64(out[2*mid+1])) > 0.05 {
		t.Fatalf("right: got=%v want~0", out[2*mid+1])
	}
}

func TestStats(t *testing.T) {
	peak, rms := Stats([]float32{0.5, -1, 0.5, 0})
	if peak != 1 {
		t.Fatalf("peak: got=%v want=1", peak)
	}
	want := math.Sqrt((0.25 + 1 + 0.25) / 4)
	if math.Abs(rms-want) > 1e-9 {
		t.Fatalf("rms: got=%v want=%v", rms, want)
	}
	if p, r := Stats(nil); p != 0 || r != 0 {
		t.Fatalf("empty: got=%v,%v", p, r)
	}
}

func TestDiffPadsShorterInput(t *testing.T) {
	maxDiff, rms := Diff([]float32{0.5, 0.5}, []float32{0.5, 0.25, -0.5})
	if maxDiff != 0.5 {
		t.Fatalf("max: got=%v want=0.5", maxDiff)
	}
	want := math.Sqrt((0.0625 + 0.25) / 3)
	if math.Abs(rms-want) > 1e-9 {
		t.Fatalf("rms: got=%v want=%v", rms, want)
	}
	if m, r := Diff(nil, nil); m != 0 || r != 0 {
		t.Fatalf("empty: got=%v,%v", m, r)
	}
}

func TestCompareFileAgainstWrittenReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.wav")
	ref := []float32{0, 0.5, -0.5, 0.25}
	if err := WriteWAV(path, ref, 48000, 1); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	maxDiff, rms, err := CompareFile(path, ref, 48000, 1)
	if err != nil {
		t.Fatalf("CompareFile: %v", err)
	}
	// 16-bit quantization only.
	if maxDiff > 1e-3 || rms > 1e-3 {
		t.Fatalf("same audio: got max=%v rms=%v want~0", maxDiff, rms)
	}

	if maxDiff, _, err = CompareFile(path, []float32{0, 0.5, 0.5, 0.25}, 48000, 1); err != nil {
		t.Fatalf("CompareFile: %v", err)
	}
	if math.Abs(maxDiff-1) > 1e-3 {
		t.Fatalf("changed sample: got=%v want~1", maxDiff)
	}

	if _, _, err := CompareFile(path, ref, 44100, 1); err == nil {
		t.Fatalf("expected error for rate mismatch")
	}
	if _, _, err := CompareFile(path, ref, 48000, 2); err == nil {
		t.Fatalf("expected error for channel mismatch")
	}
}
