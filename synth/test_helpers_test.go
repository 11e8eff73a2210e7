package synth

import (
	"math"
	"math/cmplx"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

func renderMono(s *Synth, n int) []float32 {
	buf := make([]float32, n)
	s.RenderF32(buf, 1)
	return buf
}

func maxAbs(samples []float32) float64 {
	m := 0.0
	for _, x := range samples {
		if a := math.Abs(float64(x)); a > m {
			m = a
		}
	}
	return m
}

// magnitudeSpectrum returns |FFT| of a Hann-windowed block.
func magnitudeSpectrum(t *testing.T, samples []float32) []float64 {
	t.Helper()
	n := len(samples)
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}
	buf := make([]float64, n)
	for i, x := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = float64(x) * w
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, buf)
	mags := make([]float64, len(spec))
	for i, c := range spec {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// peakNear returns the largest magnitude within spanHz of hz.
func peakNear(mags []float64, sampleRate, n int, hz, spanHz float64) (float64, float64) {
	binHz := float64(sampleRate) / float64(n)
	lo := int((hz - spanHz) / binHz)
	hi := int((hz + spanHz) / binHz)
	if lo < 1 {
		lo = 1
	}
	if hi > len(mags)-1 {
		hi = len(mags) - 1
	}
	best, bestBin := 0.0, lo
	for k := lo; k <= hi; k++ {
		if mags[k] > best {
			best, bestBin = mags[k], k
		}
	}
	return best, float64(bestBin) * binHz
}
