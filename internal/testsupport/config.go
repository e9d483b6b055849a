package testsupport

import (
	"path/filepath"
	"testing"

	"melpack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test and
// analysis constants small enough that fixture archives stay cheap to build:
// 1 kHz audio, 20 feature frames per clip, 4x4 grayscale video.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatasetDir = filepath.Join(base, "dataset")
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Audio.SampleRate = 1000
	cfg.Audio.WindowSize = 64
	cfg.Audio.HopSize = 50
	cfg.Audio.MelBins = 8
	cfg.Audio.FMin = 20
	cfg.Audio.FMax = 500
	cfg.Audio.ClipSeconds = 1
	cfg.Video.FrameCount = 2
	cfg.Video.Dim = 4
	cfg.Video.Color = false

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithClasses overrides the label vocabulary on the test config.
func WithClasses(classes ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Labels.Classes = classes
	}
}

// WithMiniData enables the seeded subsample mode on the test config.
func WithMiniData(items int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Extract.MiniData = true
		cfg.Extract.MiniItems = items
	}
}
