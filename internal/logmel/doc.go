// Package logmel converts raw mono waveforms into log-mel spectrogram
// matrices.
//
// The transform is a fixed chain: reflect-padded short-time Fourier transform
// with a Hann analysis window, squared-magnitude power spectrum, projection
// onto a precomputed mel filter bank, and log compression with a numeric
// floor. The filter bank is computed once per run and shared read-only across
// every clip, so two runs over the same corpus with the same constants produce
// bit-identical features.
package logmel
