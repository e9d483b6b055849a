package config

// The original analysis constants are all derived from the audio section.
// hop_size must divide sample_rate evenly (validated) so the frame rate is an
// exact integer; the frame rate names the feature directory on disk.

// FramesPerSecond returns the log-mel frame rate.
func (c *Config) FramesPerSecond() int {
	return c.Audio.SampleRate / c.Audio.HopSize
}

// TotalSamples returns the fixed per-clip sample count every waveform is
// padded or truncated to before analysis.
func (c *Config) TotalSamples() int {
	return c.Audio.SampleRate * c.Audio.ClipSeconds
}

// FramesNum returns the fixed per-clip frame count of the feature dataset.
func (c *Config) FramesNum() int {
	return c.FramesPerSecond() * c.Audio.ClipSeconds
}

// ClassesNum returns the size of the label vocabulary.
func (c *Config) ClassesNum() int {
	return len(c.Labels.Classes)
}

// LabelIndex returns the class name to class index mapping. The map is built
// fresh on each call; callers that need it repeatedly should hold on to it.
func (c *Config) LabelIndex() map[string]int {
	idx := make(map[string]int, len(c.Labels.Classes))
	for i, name := range c.Labels.Classes {
		idx[name] = i
	}
	return idx
}

// Channels returns the per-frame channel count of the video feature.
func (c *Config) Channels() int {
	if c.Video.Color {
		return 3
	}
	return 1
}
