package scalar

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"melpack/internal/archive"
	"melpack/internal/config"
	"melpack/internal/logging"
	"melpack/internal/testsupport"
)

func TestComputeMeanStd(t *testing.T) {
	features := [][]float32{
		{1, 10, -2},
		{3, 10, 2},
	}
	mean, std, err := Compute(features)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantMean := []float32{2, 10, 0}
	wantStd := []float32{1, 0, 2}
	for i := range wantMean {
		if mean[i] != wantMean[i] {
			t.Errorf("mean[%d] = %v, want %v", i, mean[i], wantMean[i])
		}
		if std[i] != wantStd[i] {
			t.Errorf("std[%d] = %v, want %v", i, std[i], wantStd[i])
		}
	}
}

func TestComputePopulationStd(t *testing.T) {
	// Sample std of {2, 4} is sqrt(2); population std is 1.
	_, std, err := Compute([][]float32{{2}, {4}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(float64(std[0])-1) > 1e-7 {
		t.Fatalf("std = %v, want population std 1", std[0])
	}
}

func TestComputeSingleRow(t *testing.T) {
	mean, std, err := Compute([][]float32{{5, -3}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if mean[0] != 5 || mean[1] != -3 {
		t.Fatalf("mean = %v, want the row itself", mean)
	}
	if std[0] != 0 || std[1] != 0 {
		t.Fatalf("std = %v, want zeros for a single row", std)
	}
}

func TestComputeRejectsEmptyAndRagged(t *testing.T) {
	if _, _, err := Compute(nil); !errors.Is(err, ErrNoRows) {
		t.Fatalf("Compute(nil) = %v, want ErrNoRows", err)
	}
	if _, _, err := Compute([][]float32{{1, 2}, {1}}); err == nil {
		t.Fatal("Compute accepted ragged rows")
	}
}

func TestComputeDeterministic(t *testing.T) {
	features := make([][]float32, 50)
	for i := range features {
		row := make([]float32, 16)
		for j := range row {
			row[j] = float32(i*31+j*7) / 13.0
		}
		features[i] = row
	}

	mean1, std1, err := Compute(features)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	mean2, std2, err := Compute(features)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range mean1 {
		if mean1[i] != mean2[i] || std1[i] != std2[i] {
			t.Fatalf("element %d differs between runs", i)
		}
	}
}

func writeFixtureArchive(t *testing.T, cfg *config.Config, relativeName string, rows int) {
	t.Helper()
	ctx := context.Background()

	layout := archive.Layout{
		FramesPerSecond: cfg.FramesPerSecond(),
		MelBins:         cfg.Audio.MelBins,
		MiniData:        cfg.Extract.MiniData,
	}
	spec := archive.Spec{
		FramesNum:  cfg.FramesNum(),
		MelBins:    cfg.Audio.MelBins,
		VideoDims:  [4]int{cfg.Video.Dim, cfg.Video.Dim, cfg.Video.FrameCount, cfg.Channels()},
		ClassesNum: cfg.ClassesNum(),
		HasWeak:    true,
		HasStrong:  true,
	}

	w, err := archive.Create(ctx, archive.FeaturePath(cfg.Paths.WorkspaceDir, layout, relativeName), spec)
	if err != nil {
		t.Fatalf("Create fixture archive: %v", err)
	}
	defer w.Close()

	for i := 0; i < rows; i++ {
		row := archive.Row{
			AudioName:    "fixture.wav",
			VideoName:    "fixture.mp4",
			Feature:      make([]float32, spec.FeatureLen()),
			VideoFeature: make([]float32, spec.VideoFeatureLen()),
			WeakTarget:   make([]bool, spec.ClassesNum),
			StrongTarget: make([]bool, spec.StrongTargetLen()),
		}
		for j := range row.Feature {
			row.Feature[j] = float32(i) + float32(j)*0.5
		}
		for j := range row.VideoFeature {
			row.VideoFeature[j] = float32((i+j)%7) / 7.0
		}
		if err := w.Append(ctx, row); err != nil {
			t.Fatalf("Append fixture row: %v", err)
		}
	}
	if err := w.Finalize(ctx); err != nil {
		t.Fatalf("Finalize fixture archive: %v", err)
	}
}

func TestRunWritesScalarRecord(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	writeFixtureArchive(t, cfg, filepath.Join("train", "synthetic"), 3)

	if err := Run(ctx, cfg, logging.NewNop(), "train_synthetic"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	layout := archive.Layout{
		FramesPerSecond: cfg.FramesPerSecond(),
		MelBins:         cfg.Audio.MelBins,
	}
	rec, err := archive.ReadScalars(ctx, archive.ScalarPath(cfg.Paths.WorkspaceDir, layout, filepath.Join("train", "synthetic")))
	if err != nil {
		t.Fatalf("ReadScalars: %v", err)
	}

	wantAudio := cfg.FramesNum() * cfg.Audio.MelBins
	if len(rec.AudioMean) != wantAudio || len(rec.AudioStd) != wantAudio {
		t.Fatalf("audio scalar lengths %d/%d, want %d", len(rec.AudioMean), len(rec.AudioStd), wantAudio)
	}
	wantVideo := cfg.Video.Dim * cfg.Video.Dim * cfg.Video.FrameCount * cfg.Channels()
	if len(rec.VideoMean) != wantVideo || len(rec.VideoStd) != wantVideo {
		t.Fatalf("video scalar lengths %d/%d, want %d", len(rec.VideoMean), len(rec.VideoStd), wantVideo)
	}

	// Fixture rows are 0,1,2 + constant offsets, so every audio element has
	// mean = offset+1 and population std = sqrt(2/3).
	wantStd := float32(math.Sqrt(2.0 / 3.0))
	for j := 0; j < wantAudio; j++ {
		wantMean := 1 + float32(j)*0.5
		if math.Abs(float64(rec.AudioMean[j]-wantMean)) > 1e-5 {
			t.Fatalf("audio mean[%d] = %v, want %v", j, rec.AudioMean[j], wantMean)
		}
		if math.Abs(float64(rec.AudioStd[j]-wantStd)) > 1e-5 {
			t.Fatalf("audio std[%d] = %v, want %v", j, rec.AudioStd[j], wantStd)
		}
	}
}

func TestRunRejectsNonScalarSplit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	err := Run(context.Background(), cfg, logging.NewNop(), "train_weak")
	if err == nil {
		t.Fatal("Run accepted a split without synthesized strong labels")
	}
}

func TestRunRejectsUnknownSplit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	err := Run(context.Background(), cfg, logging.NewNop(), "nope")
	if err == nil {
		t.Fatal("Run accepted an unknown split")
	}
}
