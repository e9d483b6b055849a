// Command melpack converts a paired audio/video corpus into archives of
// log-mel spectrograms, sampled video frames, and rasterized label targets,
// plus the normalization statistics derived from them.
package main
