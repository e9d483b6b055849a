package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func testSpec() Spec {
	return Spec{
		FramesNum:  8,
		MelBins:    4,
		VideoDims:  [4]int{5, 5, 3, 3},
		ClassesNum: 2,
		HasWeak:    true,
		HasStrong:  true,
	}
}

func testRow(spec Spec, seed int) Row {
	row := Row{
		AudioName:    fmt.Sprintf("clip_%03d.wav", seed),
		VideoName:    fmt.Sprintf("clip_%03d.mp4", seed),
		Feature:      make([]float32, spec.FeatureLen()),
		VideoFeature: make([]float32, spec.VideoFeatureLen()),
	}
	for i := range row.Feature {
		row.Feature[i] = float32(seed) + float32(i)*0.25
	}
	for i := range row.VideoFeature {
		row.VideoFeature[i] = float32(seed*7+i) / 255.0
	}
	if spec.HasWeak {
		row.WeakTarget = make([]bool, spec.ClassesNum)
		row.WeakTarget[seed%spec.ClassesNum] = true
	}
	if spec.HasStrong {
		row.StrongTarget = make([]bool, spec.StrongTargetLen())
		for i := seed; i < len(row.StrongTarget); i += 3 {
			row.StrongTarget[i] = true
		}
	}
	return row
}

func TestWriterReaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "weak.db")
	spec := testSpec()

	w, err := Create(ctx, path, spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	rows := []Row{testRow(spec, 0), testRow(spec, 1), testRow(spec, 2)}
	for _, row := range rows {
		if err := w.Append(ctx, row); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if w.Len() != len(rows) {
		t.Fatalf("writer Len = %d, want %d", w.Len(), len(rows))
	}
	if err := w.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	r, err := OpenReader(ctx, path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if r.Len() != len(rows) {
		t.Fatalf("reader Len = %d, want %d", r.Len(), len(rows))
	}
	if r.Spec() != spec {
		t.Fatalf("reader spec = %+v, want %+v", r.Spec(), spec)
	}

	for i, want := range rows {
		got, err := r.Row(ctx, i)
		if err != nil {
			t.Fatalf("Row(%d): %v", i, err)
		}
		if got.AudioName != want.AudioName || got.VideoName != want.VideoName {
			t.Errorf("row %d names = %q/%q, want %q/%q", i, got.AudioName, got.VideoName, want.AudioName, want.VideoName)
		}
		for j := range want.Feature {
			if got.Feature[j] != want.Feature[j] {
				t.Fatalf("row %d feature[%d] = %v, want %v", i, j, got.Feature[j], want.Feature[j])
			}
		}
		for j := range want.VideoFeature {
			if got.VideoFeature[j] != want.VideoFeature[j] {
				t.Fatalf("row %d video feature[%d] = %v, want %v", i, j, got.VideoFeature[j], want.VideoFeature[j])
			}
		}
		for j := range want.WeakTarget {
			if got.WeakTarget[j] != want.WeakTarget[j] {
				t.Fatalf("row %d weak[%d] = %v, want %v", i, j, got.WeakTarget[j], want.WeakTarget[j])
			}
		}
		for j := range want.StrongTarget {
			if got.StrongTarget[j] != want.StrongTarget[j] {
				t.Fatalf("row %d strong[%d] = %v, want %v", i, j, got.StrongTarget[j], want.StrongTarget[j])
			}
		}
	}
}

func TestReaderNamesPreserveAppendOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "order.db")
	spec := testSpec()
	spec.HasWeak = false
	spec.HasStrong = false

	w, err := Create(ctx, path, spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	wantAudio := []string{"a.wav", "b.wav", "c.wav"}
	for i, name := range wantAudio {
		row := testRow(spec, i)
		row.AudioName = name
		row.WeakTarget = nil
		row.StrongTarget = nil
		if err := w.Append(ctx, row); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	r, err := OpenReader(ctx, path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	audio, err := r.AudioNames(ctx)
	if err != nil {
		t.Fatalf("AudioNames: %v", err)
	}
	if len(audio) != len(wantAudio) {
		t.Fatalf("AudioNames returned %d names, want %d", len(audio), len(wantAudio))
	}
	for i := range wantAudio {
		if audio[i] != wantAudio[i] {
			t.Errorf("audio name %d = %q, want %q", i, audio[i], wantAudio[i])
		}
	}

	got := 0
	err = r.Features(ctx, func(idx int, feature []float32) error {
		if idx != got {
			t.Fatalf("Features visited idx %d, want %d", idx, got)
		}
		if len(feature) != spec.FeatureLen() {
			t.Fatalf("feature row has %d elements, want %d", len(feature), spec.FeatureLen())
		}
		got++
		return nil
	})
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if got != len(wantAudio) {
		t.Fatalf("Features visited %d rows, want %d", got, len(wantAudio))
	}
}

func TestAppendAfterFinalizeRejected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "done.db")
	spec := testSpec()

	w, err := Create(ctx, path, spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	if err := w.Append(ctx, testRow(spec, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := w.Append(ctx, testRow(spec, 1)); !errors.Is(err, ErrFinalized) {
		t.Fatalf("Append after Finalize = %v, want ErrFinalized", err)
	}
}

func TestOpenReaderRejectsUnfinalized(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aborted.db")
	spec := testSpec()

	w, err := Create(ctx, path, spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Append(ctx, testRow(spec, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := OpenReader(ctx, path); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("OpenReader on unfinalized archive = %v, want ErrNotFinalized", err)
	}
}

func TestCreateReplacesExistingArchive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "replace.db")
	spec := testSpec()

	w, err := Create(ctx, path, spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := w.Append(ctx, testRow(spec, i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	w, err = Create(ctx, path, spec)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	defer w.Close()
	if err := w.Append(ctx, testRow(spec, 9)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	r, err := OpenReader(ctx, path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if r.Len() != 1 {
		t.Fatalf("replaced archive Len = %d, want 1", r.Len())
	}
}

func TestAppendValidatesRowShape(t *testing.T) {
	ctx := context.Background()
	spec := testSpec()

	w, err := Create(ctx, filepath.Join(t.TempDir(), "shape.db"), spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	short := testRow(spec, 0)
	short.Feature = short.Feature[:len(short.Feature)-1]
	if err := w.Append(ctx, short); err == nil {
		t.Fatal("Append accepted a short feature row")
	}

	long := testRow(spec, 0)
	long.AudioName = strings.Repeat("x", maxNameBytes+1)
	if err := w.Append(ctx, long); err == nil {
		t.Fatal("Append accepted an over-long name")
	}

	missing := testRow(spec, 0)
	missing.WeakTarget = nil
	if err := w.Append(ctx, missing); err == nil {
		t.Fatal("Append accepted a row missing a declared target")
	}

	if w.Len() != 0 {
		t.Fatalf("failed appends advanced row count to %d", w.Len())
	}
}

func TestFloat32CodecRoundTrip(t *testing.T) {
	values := []float32{0, -1, 1, 3.14159, -273.15, 1e-10, 1e10}
	decoded, err := decodeFloat32(encodeFloat32(values), len(values))
	if err != nil {
		t.Fatalf("decodeFloat32: %v", err)
	}
	for i := range values {
		if decoded[i] != values[i] {
			t.Errorf("value %d = %v, want %v", i, decoded[i], values[i])
		}
	}

	if _, err := decodeFloat32(encodeFloat32(values), len(values)+1); err == nil {
		t.Fatal("decodeFloat32 accepted a length mismatch")
	}
}

func TestPathLayout(t *testing.T) {
	layout := Layout{FramesPerSecond: 64, MelBins: 64}

	got := FeaturePath("/work", layout, "train/weak")
	want := filepath.Join("/work", "features", "logmel_64frames_64melbins", "train", "weak.db")
	if got != want {
		t.Errorf("FeaturePath = %q, want %q", got, want)
	}

	layout.MiniData = true
	got = ScalarPath("/work", layout, "train/synthetic")
	want = filepath.Join("/work", "scalars", "minidata_logmel_64frames_64melbins", "train", "synthetic.db")
	if got != want {
		t.Errorf("ScalarPath = %q, want %q", got, want)
	}
}
