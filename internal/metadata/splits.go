// Package metadata locates dataset splits and parses their label tables.
//
// A split's CSV declares which label kinds exist through its header columns:
// an event_labels column means weak tags, onset/offset/event_label columns
// mean timed events. Presence is a property of the whole split, which is what
// decides whether the archive declares weak_target/strong_target datasets.
package metadata

import (
	"errors"
	"fmt"
	"path/filepath"

	"melpack/internal/config"
)

// ErrUnknownSplit reports a split name outside the registry.
var ErrUnknownSplit = errors.New("unknown split")

// Split identifies one named portion of the dataset.
type Split struct {
	Name         string
	RelativeName string
	// ScalarCapable marks the split normalization statistics are computed
	// from. Only training data with synthesized strong labels qualifies.
	ScalarCapable bool
}

var registry = []Split{
	{Name: "train_weak", RelativeName: filepath.Join("train", "weak")},
	{Name: "train_unlabel_in_domain", RelativeName: filepath.Join("train", "unlabel_in_domain")},
	{Name: "train_synthetic", RelativeName: filepath.Join("train", "synthetic"), ScalarCapable: true},
	{Name: "validation", RelativeName: "validation"},
}

// Splits returns the registered split names in registry order.
func Splits() []string {
	names := make([]string, len(registry))
	for i, s := range registry {
		names[i] = s.Name
	}
	return names
}

// LookupSplit resolves a split name against the registry.
func LookupSplit(name string) (Split, error) {
	for _, s := range registry {
		if s.Name == name {
			return s, nil
		}
	}
	return Split{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownSplit, name, Splits())
}

// MetadataPath returns the split's label CSV location.
func (s Split) MetadataPath(cfg *config.Config) string {
	if s.Name == "validation" {
		return filepath.Join(cfg.Paths.DatasetDir, "metadata", "validation", s.RelativeName+".csv")
	}
	return filepath.Join(cfg.Paths.DatasetDir, "metadata", s.RelativeName+".csv")
}

// AudioDir returns the directory holding the split's audio files.
func (s Split) AudioDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DatasetDir, "audio", s.RelativeName)
}

// VideoDir returns the directory holding the split's video files.
func (s Split) VideoDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DatasetDir, "video", s.RelativeName)
}
