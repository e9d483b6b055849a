package scalar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"melpack/internal/archive"
	"melpack/internal/config"
	"melpack/internal/logging"
	"melpack/internal/metadata"
)

// Run reduces the named split's archive to per-element mean/std and writes the
// scalar record next to it under the workspace scalars tree. Only
// scalar-capable splits qualify; the check runs before any I/O.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, splitName string) error {
	split, err := metadata.LookupSplit(splitName)
	if err != nil {
		return err
	}
	if !split.ScalarCapable {
		return fmt.Errorf("split %q cannot source normalization statistics, use train_synthetic", split.Name)
	}

	layout := archive.Layout{
		FramesPerSecond: cfg.FramesPerSecond(),
		MelBins:         cfg.Audio.MelBins,
		MiniData:        cfg.Extract.MiniData,
	}
	featurePath := archive.FeaturePath(cfg.Paths.WorkspaceDir, layout, split.RelativeName)
	scalarPath := archive.ScalarPath(cfg.Paths.WorkspaceDir, layout, split.RelativeName)

	log := logging.NewComponentLogger(logger, "scalar")
	log.Info("computing scalars",
		logging.String(logging.FieldSplit, split.Name),
		logging.String("archive", featurePath))

	reader, err := archive.OpenReader(ctx, featurePath)
	if err != nil {
		return fmt.Errorf("open feature archive: %w", err)
	}
	defer reader.Close()

	started := time.Now()
	spec := reader.Spec()

	audio := newAccumulator(spec.FeatureLen())
	if err := reader.Features(ctx, func(idx int, feature []float32) error {
		return audio.add(feature)
	}); err != nil {
		return fmt.Errorf("reduce audio features: %w", err)
	}

	video := newAccumulator(spec.VideoFeatureLen())
	if err := reader.VideoFeatures(ctx, func(idx int, feature []float32) error {
		return video.add(feature)
	}); err != nil {
		return fmt.Errorf("reduce video features: %w", err)
	}

	var rec archive.ScalarRecord
	if rec.AudioMean, rec.AudioStd, err = audio.finish(); err != nil {
		return err
	}
	if rec.VideoMean, rec.VideoStd, err = video.finish(); err != nil {
		return err
	}

	if err := archive.WriteScalars(ctx, scalarPath, rec); err != nil {
		return fmt.Errorf("write scalar record: %w", err)
	}

	log.Info("scalars written",
		logging.String(logging.FieldSplit, split.Name),
		logging.Int("rows", reader.Len()),
		logging.String("path", scalarPath),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}
