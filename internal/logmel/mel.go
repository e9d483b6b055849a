package logmel

import (
	"fmt"
	"math"
)

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melBreakHz   = 1000.0
	melLinearHz  = 200.0 / 3.0
	melBreakMel  = melBreakHz / melLinearHz
	melLogFactor = 27.0
)

func hzToMel(hz float64) float64 {
	if hz < melBreakHz {
		return hz / melLinearHz
	}
	return melBreakMel + melLogFactor*math.Log(hz/melBreakHz)/math.Log(6.4)
}

func melToHz(mel float64) float64 {
	if mel < melBreakMel {
		return mel * melLinearHz
	}
	return melBreakHz * math.Exp(math.Log(6.4)*(mel-melBreakMel)/melLogFactor)
}

// FilterBank maps linear-frequency spectral bins onto perceptually spaced mel
// bands. Rows index the windowSize/2+1 spectrogram bins, columns the mel bins,
// so a power spectrum row vector projects with a plain matrix product.
type FilterBank struct {
	weights [][]float64 // (bins, melBins)
	bins    int
	melBins int
}

// NewFilterBank builds a Slaney-normalized triangular mel filter bank for the
// given analysis constants. It is invariant for the lifetime of a run.
func NewFilterBank(sampleRate, windowSize, melBins int, fmin, fmax float64) (*FilterBank, error) {
	if sampleRate <= 0 || windowSize <= 0 || melBins <= 0 {
		return nil, fmt.Errorf("mel filter bank: non-positive constant (rate=%d window=%d bins=%d)", sampleRate, windowSize, melBins)
	}
	if fmin < 0 || fmin >= fmax || fmax > float64(sampleRate)/2 {
		return nil, fmt.Errorf("mel filter bank: frequency range [%g, %g] invalid for rate %d", fmin, fmax, sampleRate)
	}

	bins := windowSize/2 + 1

	// Band edges: melBins+2 points evenly spaced on the mel scale.
	edges := make([]float64, melBins+2)
	melMin := hzToMel(fmin)
	melMax := hzToMel(fmax)
	for i := range edges {
		edges[i] = melToHz(melMin + (melMax-melMin)*float64(i)/float64(melBins+1))
	}

	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(windowSize)
	}

	weights := make([][]float64, bins)
	for k := range weights {
		weights[k] = make([]float64, melBins)
	}
	for m := 0; m < melBins; m++ {
		lower, center, upper := edges[m], edges[m+1], edges[m+2]
		// Slaney normalization keeps per-band energy comparable.
		enorm := 2.0 / (upper - lower)
		for k, f := range fftFreqs {
			var w float64
			switch {
			case f <= lower || f >= upper:
				continue
			case f <= center:
				w = (f - lower) / (center - lower)
			default:
				w = (upper - f) / (upper - center)
			}
			weights[k][m] = w * enorm
		}
	}

	return &FilterBank{weights: weights, bins: bins, melBins: melBins}, nil
}

// Bins returns the number of linear spectrogram bins the bank accepts.
func (fb *FilterBank) Bins() int { return fb.bins }

// MelBins returns the number of mel bands the bank produces.
func (fb *FilterBank) MelBins() int { return fb.melBins }

// Weight returns the projection weight from spectrogram bin k to mel band m.
func (fb *FilterBank) Weight(k, m int) float64 { return fb.weights[k][m] }

// project maps one power-spectrum frame onto the mel bands.
func (fb *FilterBank) project(power []float64, dst []float64) {
	for m := 0; m < fb.melBins; m++ {
		dst[m] = 0
	}
	for k, p := range power {
		if p == 0 {
			continue
		}
		row := fb.weights[k]
		for m, w := range row {
			if w != 0 {
				dst[m] += p * w
			}
		}
	}
}
