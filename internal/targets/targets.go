// Package targets rasterizes clip labels into fixed-shape binary arrays
// aligned with the log-mel frame rate.
package targets

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownLabel reports a label that is present in the metadata but absent
// from the class vocabulary. This is a data-integrity failure, never skipped.
var ErrUnknownLabel = errors.New("unknown label")

// Vocabulary is the fixed class-name to class-index mapping for one run.
type Vocabulary struct {
	classes []string
	index   map[string]int
}

// NewVocabulary builds a vocabulary from an ordered class list.
func NewVocabulary(classes []string) (*Vocabulary, error) {
	if len(classes) == 0 {
		return nil, errors.New("targets: empty class vocabulary")
	}
	index := make(map[string]int, len(classes))
	for i, name := range classes {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("targets: empty class name")
		}
		if _, ok := index[name]; ok {
			return nil, fmt.Errorf("targets: duplicate class %q", name)
		}
		index[name] = i
	}
	return &Vocabulary{classes: append([]string(nil), classes...), index: index}, nil
}

// Size returns the number of classes.
func (v *Vocabulary) Size() int { return len(v.classes) }

// Classes returns the ordered class names.
func (v *Vocabulary) Classes() []string {
	return append([]string(nil), v.classes...)
}

// Index maps a class name to its index. Labels absent from the vocabulary are
// an error: the metadata parser already dropped explicitly-missing labels, so
// anything reaching here claims to be a real class.
func (v *Vocabulary) Index(label string) (int, error) {
	idx, ok := v.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return idx, nil
}

// Event is a strongly labelled sound event with second-resolution timing.
type Event struct {
	Label  string
	Onset  float64
	Offset float64
}

// WeakTarget converts a weak label set into a class-presence bit vector.
func WeakTarget(labels []string, vocab *Vocabulary) ([]bool, error) {
	target := make([]bool, vocab.Size())
	for _, label := range labels {
		idx, err := vocab.Index(label)
		if err != nil {
			return nil, err
		}
		target[idx] = true
	}
	return target, nil
}

// StrongTarget converts timed events into a (framesNum, classesNum) activity
// matrix. Onset and offset times map to frame indices as round(t*fps), with
// the offset extended by one frame so single-frame events survive. Overlapping
// events on the same class OR together. Frame ranges are clamped to the clip:
// events whose offset rounds past the end legitimately occur at clip
// boundaries and must not fault the run.
func StrongTarget(events []Event, framesNum, framesPerSecond int, vocab *Vocabulary) ([][]bool, error) {
	target := make([][]bool, framesNum)
	for f := range target {
		target[f] = make([]bool, vocab.Size())
	}

	for _, event := range events {
		idx, err := vocab.Index(event.Label)
		if err != nil {
			return nil, err
		}

		onset := int(math.Round(event.Onset * float64(framesPerSecond)))
		offset := int(math.Round(event.Offset*float64(framesPerSecond))) + 1
		if onset < 0 {
			onset = 0
		}
		if offset > framesNum {
			offset = framesNum
		}
		for f := onset; f < offset; f++ {
			target[f][idx] = true
		}
	}

	return target, nil
}
