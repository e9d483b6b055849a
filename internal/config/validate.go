package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateLabels(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DatasetDir) == "" {
		return errors.New("paths.dataset_dir must be set (or export MELPACK_DATASET_DIR)")
	}
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if a.WindowSize <= 0 {
		return errors.New("audio.window_size must be positive")
	}
	if a.HopSize <= 0 || a.HopSize > a.WindowSize {
		return errors.New("audio.hop_size must be positive and no larger than audio.window_size")
	}
	if a.SampleRate%a.HopSize != 0 {
		return fmt.Errorf("audio.hop_size %d must divide audio.sample_rate %d evenly", a.HopSize, a.SampleRate)
	}
	if a.MelBins <= 0 {
		return errors.New("audio.mel_bins must be positive")
	}
	if a.FMin < 0 || a.FMin >= a.FMax {
		return errors.New("audio.fmin must be non-negative and below audio.fmax")
	}
	if a.FMax > a.SampleRate/2 {
		return fmt.Errorf("audio.fmax %d exceeds the Nyquist frequency %d", a.FMax, a.SampleRate/2)
	}
	if a.ClipSeconds <= 0 {
		return errors.New("audio.clip_seconds must be positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FrameCount <= 0 {
		return errors.New("video.frame_count must be positive")
	}
	if c.Video.Dim <= 0 {
		return errors.New("video.dim must be positive")
	}
	return nil
}

func (c *Config) validateLabels() error {
	if len(c.Labels.Classes) == 0 {
		return errors.New("labels.classes must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Labels.Classes))
	for _, name := range c.Labels.Classes {
		if strings.TrimSpace(name) == "" {
			return errors.New("labels.classes must not contain empty names")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("labels.classes contains duplicate class %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
