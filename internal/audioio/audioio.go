// Package audioio loads WAV recordings as mono float waveforms at a fixed
// target sample rate.
package audioio

import (
	"errors"
	"fmt"
	"os"
)

// Read decodes the WAV file at path, downmixes to mono, and resamples to
// targetRate. Samples are normalized to [-1, 1].
func Read(path string, targetRate int) ([]float64, error) {
	if targetRate <= 0 {
		return nil, errors.New("audioio: target rate must be positive")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio %s: %w", path, err)
	}
	defer file.Close()

	samples, sourceRate, err := decodeWAV(file)
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}

	if sourceRate != targetRate {
		samples = Resample(samples, sourceRate, targetRate)
	}
	return samples, nil
}

// Resample converts a waveform between sample rates with linear
// interpolation. Sufficient here: every corpus recording is produced at or
// above the analysis rate, and the mel projection discards content near
// Nyquist anyway.
func Resample(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	outLen := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if outLen == 0 {
		return nil
	}

	out := make([]float64, outLen)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}

// PadTruncate forces a waveform to exactly n samples, zero-padding the tail
// or cutting it.
func PadTruncate(samples []float64, n int) []float64 {
	if len(samples) == n {
		return samples
	}
	if len(samples) > n {
		return samples[:n]
	}
	out := make([]float64, n)
	copy(out, samples)
	return out
}
