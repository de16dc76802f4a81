package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"
)

// ErrShortSignal is returned when a signal has too few samples to resolve
// any frequency.
var ErrShortSignal = errors.New("signal needs at least 4 samples")

// Spectrum returns the one-sided amplitude spectrum of signal sampled every
// dt. The mean is removed and a Hann window applied before the transform.
// freqs[k] is k/(n dt) for k in [0, n/2].
func Spectrum(signal []float64, dt float64) (freqs, amps []float64, err error) {
	n := len(signal)
	if n < 4 {
		return nil, nil, ErrShortSignal
	}
	if dt <= 0 || math.IsNaN(dt) {
		return nil, nil, errors.Errorf("sample interval must be positive, got %g", dt)
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range signal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, errors.Errorf("non-finite sample at %d", i)
		}
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		amps[k] = cmplx.Abs(spectrum[k]) / float64(n)
	}
	return freqs, amps, nil
}

// DominantFrequency returns the frequency of the largest spectral peak,
// ignoring the constant component. A constant signal yields 0.
func DominantFrequency(signal []float64, dt float64) (float64, error) {
	freqs, amps, err := Spectrum(signal, dt)
	if err != nil {
		return 0, err
	}
	best := 0
	for k := 1; k < len(amps); k++ {
		if amps[k] > amps[best] || best == 0 && amps[k] > 0 {
			best = k
		}
	}
	return freqs[best], nil
}
