package metadata

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"melpack/internal/config"
)

func TestLookupSplitKnownAndUnknown(t *testing.T) {
	split, err := LookupSplit("train_weak")
	if err != nil {
		t.Fatalf("LookupSplit: %v", err)
	}
	if split.RelativeName != filepath.Join("train", "weak") {
		t.Fatalf("unexpected relative name %q", split.RelativeName)
	}
	if split.ScalarCapable {
		t.Fatal("train_weak should not be scalar capable")
	}

	if _, err := LookupSplit("bogus"); !errors.Is(err, ErrUnknownSplit) {
		t.Fatalf("expected ErrUnknownSplit, got %v", err)
	}
}

func TestSplitPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DatasetDir = "/data"

	synthetic, _ := LookupSplit("train_synthetic")
	if got := synthetic.MetadataPath(&cfg); got != filepath.Join("/data", "metadata", "train", "synthetic.csv") {
		t.Fatalf("synthetic metadata path = %q", got)
	}
	if got := synthetic.AudioDir(&cfg); got != filepath.Join("/data", "audio", "train", "synthetic") {
		t.Fatalf("synthetic audio dir = %q", got)
	}

	validation, _ := LookupSplit("validation")
	if got := validation.MetadataPath(&cfg); got != filepath.Join("/data", "metadata", "validation", "validation.csv") {
		t.Fatalf("validation metadata path = %q", got)
	}
}

func TestParseWeakTable(t *testing.T) {
	csvData := strings.Join([]string{
		"filename\tevent_labels",
		"a.wav\tDog,Speech",
		"b.wav\t",
		"c.wav\tCat",
	}, "\n")

	split, _ := LookupSplit("train_weak")
	table, err := Parse(split, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !table.HasWeak || table.HasStrong {
		t.Fatalf("label presence flags wrong: weak=%v strong=%v", table.HasWeak, table.HasStrong)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", table.Len())
	}

	a := table.Lookup("a.wav")
	if len(a.Weak) != 2 || a.Weak[0] != "Dog" || a.Weak[1] != "Speech" {
		t.Fatalf("a.wav weak labels = %v", a.Weak)
	}
	// Unannotated item: present with explicitly no labels.
	b := table.Lookup("b.wav")
	if len(b.Weak) != 0 {
		t.Fatalf("b.wav should have no labels, got %v", b.Weak)
	}
}

func TestParseStrongTable(t *testing.T) {
	csvData := strings.Join([]string{
		"filename\tonset\toffset\tevent_label",
		"a.wav\t1.0\t2.5\tDog",
		"a.wav\t3.0\t4.0\tCat",
		"b.wav\t\t\t",
	}, "\n")

	split, _ := LookupSplit("train_synthetic")
	table, err := Parse(split, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.HasWeak || !table.HasStrong {
		t.Fatalf("label presence flags wrong: weak=%v strong=%v", table.HasWeak, table.HasStrong)
	}

	a := table.Lookup("a.wav")
	if len(a.Strong) != 2 {
		t.Fatalf("a.wav events = %v", a.Strong)
	}
	if a.Strong[0].Label != "Dog" || a.Strong[0].Onset != 1.0 || a.Strong[0].Offset != 2.5 {
		t.Fatalf("unexpected first event %+v", a.Strong[0])
	}
	if len(table.Lookup("b.wav").Strong) != 0 {
		t.Fatal("b.wav should have no events")
	}
	if got := table.Names(); len(got) != 2 || got[0] != "a.wav" || got[1] != "b.wav" {
		t.Fatalf("names = %v", got)
	}
}

func TestParseRejectsBadRows(t *testing.T) {
	split, _ := LookupSplit("train_synthetic")

	cases := []string{
		"event_labels\nDog",                                     // no filename column
		"filename\tonset\toffset\tevent_label\na.wav\tx\t2\tDog", // bad onset
		"filename\tonset\toffset\tevent_label\na.wav\t3\t2\tDog", // offset before onset
	}
	for i, csvData := range cases {
		if _, err := Parse(split, strings.NewReader(csvData)); err == nil {
			t.Fatalf("case %d: expected parse error", i)
		}
	}
}
