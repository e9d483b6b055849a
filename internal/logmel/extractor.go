package logmel

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// amin floors power values before the log so silence maps to a finite dB
// value instead of -Inf.
const amin = 1e-10

// Params are the analysis constants for one extraction run.
type Params struct {
	SampleRate int
	WindowSize int
	HopSize    int
	MelBins    int
	FMin       float64
	FMax       float64
}

// Extractor turns one waveform into a log-mel spectrogram matrix. It holds the
// Hann window, the FFT plan, and the mel filter bank, all computed once and
// reused read-only for every clip in a run.
type Extractor struct {
	params Params
	window []float64
	fft    *fourier.FFT
	bank   *FilterBank
}

// NewExtractor precomputes the analysis state for the given constants.
func NewExtractor(p Params) (*Extractor, error) {
	if p.WindowSize <= 0 || p.HopSize <= 0 || p.HopSize > p.WindowSize {
		return nil, errors.New("logmel: window and hop sizes must be positive with hop <= window")
	}
	bank, err := NewFilterBank(p.SampleRate, p.WindowSize, p.MelBins, p.FMin, p.FMax)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		params: p,
		window: hannWindow(p.WindowSize),
		fft:    fourier.NewFFT(p.WindowSize),
		bank:   bank,
	}, nil
}

// Transform computes the log-mel spectrogram of a mono waveform. The output
// has len(audio)/hop+1 rows under the centered framing convention; the caller
// truncates to the corpus-wide fixed frame count.
func (e *Extractor) Transform(audio []float64) ([][]float32, error) {
	if len(audio) == 0 {
		return nil, errors.New("logmel: empty waveform")
	}

	padded := reflectPad(audio, e.params.WindowSize/2)
	frames := (len(padded)-e.params.WindowSize)/e.params.HopSize + 1
	if frames <= 0 {
		return nil, errors.New("logmel: waveform shorter than one analysis window")
	}

	bins := e.params.WindowSize/2 + 1
	windowed := make([]float64, e.params.WindowSize)
	coeffs := make([]complex128, bins)
	power := make([]float64, bins)
	melRow := make([]float64, e.params.MelBins)

	out := make([][]float32, frames)
	for t := 0; t < frames; t++ {
		start := t * e.params.HopSize
		segment := padded[start : start+e.params.WindowSize]
		for i, s := range segment {
			windowed[i] = s * e.window[i]
		}

		e.fft.Coefficients(coeffs, windowed)
		for k, c := range coeffs {
			power[k] = real(c)*real(c) + imag(c)*imag(c)
		}

		e.bank.project(power, melRow)

		row := make([]float32, e.params.MelBins)
		for m, v := range melRow {
			row[m] = float32(10 * math.Log10(math.Max(v, amin)))
		}
		out[t] = row
	}

	return out, nil
}

// MelBins returns the width of every output row.
func (e *Extractor) MelBins() int { return e.params.MelBins }

// hannWindow is the symmetric Hann window of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// reflectPad mirrors the signal at both ends without repeating the edge
// sample, keeping window centers aligned with sample indices.
func reflectPad(signal []float64, pad int) []float64 {
	n := len(signal)
	out := make([]float64, n+2*pad)
	copy(out[pad:], signal)
	for i := 0; i < pad; i++ {
		out[pad-1-i] = signal[reflectIndex(i+1, n)]
		out[pad+n+i] = signal[reflectIndex(n-2-i, n)]
	}
	return out
}

// reflectIndex folds an out-of-range index back into [0, n) with mirror
// semantics.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
