package archive

import (
	"errors"
	"fmt"
)

// maxNameBytes is the fixed-width limit for stored item names.
const maxNameBytes = 64

var (
	// ErrFinalized reports an append against a finalized archive.
	ErrFinalized = errors.New("archive already finalized")
	// ErrNotFinalized reports a read against an archive whose extraction run
	// never completed. Such archives are invalid and must be discarded.
	ErrNotFinalized = errors.New("archive not finalized")
)

// Spec declares the datasets of an archive up front: fixed row shapes, dtypes
// implied by dataset kind, and which optional target datasets exist. Target
// presence is a property of the whole split, never of individual rows.
type Spec struct {
	FramesNum  int    `json:"frames_num"`
	MelBins    int    `json:"mel_bins"`
	VideoDims  [4]int `json:"video_dims"`
	ClassesNum int    `json:"classes_num"`
	HasWeak    bool   `json:"has_weak"`
	HasStrong  bool   `json:"has_strong"`
}

// FeatureLen returns the flattened element count of one feature row.
func (s Spec) FeatureLen() int { return s.FramesNum * s.MelBins }

// VideoFeatureLen returns the flattened element count of one video feature row.
func (s Spec) VideoFeatureLen() int {
	return s.VideoDims[0] * s.VideoDims[1] * s.VideoDims[2] * s.VideoDims[3]
}

// StrongTargetLen returns the flattened element count of one strong target row.
func (s Spec) StrongTargetLen() int { return s.FramesNum * s.ClassesNum }

func (s Spec) validate() error {
	if s.FramesNum <= 0 || s.MelBins <= 0 {
		return errors.New("archive spec: feature dims must be positive")
	}
	if s.VideoFeatureLen() <= 0 {
		return fmt.Errorf("archive spec: video dims %v must be positive", s.VideoDims)
	}
	if (s.HasWeak || s.HasStrong) && s.ClassesNum <= 0 {
		return errors.New("archive spec: classes_num must be positive when targets are declared")
	}
	return nil
}

// Row is one corpus item across all co-indexed datasets. Feature and
// VideoFeature are stored flattened row-major; WeakTarget/StrongTarget must be
// nil exactly when the spec omits them.
type Row struct {
	AudioName    string
	VideoName    string
	Feature      []float32
	VideoFeature []float32
	WeakTarget   []bool
	StrongTarget []bool
}

func (r *Row) validate(spec Spec) error {
	if len(r.AudioName) == 0 || len(r.AudioName) > maxNameBytes {
		return fmt.Errorf("archive row: audio name %q must be 1..%d bytes", r.AudioName, maxNameBytes)
	}
	if len(r.VideoName) == 0 || len(r.VideoName) > maxNameBytes {
		return fmt.Errorf("archive row: video name %q must be 1..%d bytes", r.VideoName, maxNameBytes)
	}
	if len(r.Feature) != spec.FeatureLen() {
		return fmt.Errorf("archive row: feature has %d elements, spec wants %d", len(r.Feature), spec.FeatureLen())
	}
	if len(r.VideoFeature) != spec.VideoFeatureLen() {
		return fmt.Errorf("archive row: video feature has %d elements, spec wants %d", len(r.VideoFeature), spec.VideoFeatureLen())
	}
	if spec.HasWeak != (r.WeakTarget != nil) {
		return fmt.Errorf("archive row: weak target presence mismatches spec (declared=%v)", spec.HasWeak)
	}
	if spec.HasWeak && len(r.WeakTarget) != spec.ClassesNum {
		return fmt.Errorf("archive row: weak target has %d classes, spec wants %d", len(r.WeakTarget), spec.ClassesNum)
	}
	if spec.HasStrong != (r.StrongTarget != nil) {
		return fmt.Errorf("archive row: strong target presence mismatches spec (declared=%v)", spec.HasStrong)
	}
	if spec.HasStrong && len(r.StrongTarget) != spec.StrongTargetLen() {
		return fmt.Errorf("archive row: strong target has %d elements, spec wants %d", len(r.StrongTarget), spec.StrongTargetLen())
	}
	return nil
}
