// Package extraction drives the per-split feature pass: it walks the label
// table in sorted name order, computes the log-mel and video features for each
// item, rasterizes its labels, and streams the rows into a fresh archive.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"melpack/internal/archive"
	"melpack/internal/audioio"
	"melpack/internal/config"
	"melpack/internal/logging"
	"melpack/internal/logmel"
	"melpack/internal/metadata"
	"melpack/internal/targets"
	"melpack/internal/videofeat"
)

// AudioLoader reads a media file into a mono waveform at the target rate.
type AudioLoader interface {
	Load(path string, targetRate int) ([]float64, error)
}

// AudioLoaderFunc adapts a function to the AudioLoader interface.
type AudioLoaderFunc func(path string, targetRate int) ([]float64, error)

// Load implements AudioLoader.
func (f AudioLoaderFunc) Load(path string, targetRate int) ([]float64, error) {
	return f(path, targetRate)
}

// FrameSource decodes a fixed-shape frame stack from a video file.
type FrameSource interface {
	Frames(ctx context.Context, path string) (*videofeat.Tensor, error)
	Channels() int
}

// Builder runs the extraction pass for one split. The zero value is not
// usable; construct with NewBuilder.
type Builder struct {
	cfg    *config.Config
	logger *slog.Logger
	audio  AudioLoader
	video  FrameSource

	// Progress suppresses the terminal progress bar when false.
	Progress bool
}

// NewBuilder wires the default collaborators: WAV decoding with resampling for
// audio and ffmpeg frame sampling for video.
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "extraction"),
		audio:  AudioLoaderFunc(audioio.Read),
		video: &videofeat.Extractor{
			FFmpeg:     cfg.FFmpegBinary(),
			FFprobe:    cfg.FFprobeBinary(),
			Dim:        cfg.Video.Dim,
			FrameCount: cfg.Video.FrameCount,
			Color:      cfg.Video.Color,
			Skip:       true,
		},
	}
}

// WithCollaborators replaces the audio and video sources; tests use this to
// run the pipeline without media files on disk.
func (b *Builder) WithCollaborators(audio AudioLoader, video FrameSource) *Builder {
	b.audio = audio
	b.video = video
	return b
}

// Run extracts the named split into its archive. The archive is rebuilt from
// scratch; a failure part-way leaves it unfinalized, which readers reject.
func (b *Builder) Run(ctx context.Context, splitName string) error {
	split, err := metadata.LookupSplit(splitName)
	if err != nil {
		return err
	}

	table, err := metadata.Load(split, split.MetadataPath(b.cfg))
	if err != nil {
		return err
	}

	vocab, err := targets.NewVocabulary(b.cfg.Labels.Classes)
	if err != nil {
		return err
	}

	extractor, err := logmel.NewExtractor(logmel.Params{
		SampleRate: b.cfg.Audio.SampleRate,
		WindowSize: b.cfg.Audio.WindowSize,
		HopSize:    b.cfg.Audio.HopSize,
		MelBins:    b.cfg.Audio.MelBins,
		FMin:       float64(b.cfg.Audio.FMin),
		FMax:       float64(b.cfg.Audio.FMax),
	})
	if err != nil {
		return err
	}

	names := b.selectNames(table)

	runID := uuid.NewString()
	log := b.logger.With(logging.String(logging.FieldRunID, runID))
	log.Info("extracting split",
		logging.String(logging.FieldSplit, split.Name),
		logging.Int("items", len(names)),
		logging.Bool("weak", table.HasWeak),
		logging.Bool("strong", table.HasStrong),
		logging.Bool("mini_data", b.cfg.Extract.MiniData))

	layout := archive.Layout{
		FramesPerSecond: b.cfg.FramesPerSecond(),
		MelBins:         b.cfg.Audio.MelBins,
		MiniData:        b.cfg.Extract.MiniData,
	}
	spec := archive.Spec{
		FramesNum:  b.cfg.FramesNum(),
		MelBins:    b.cfg.Audio.MelBins,
		VideoDims:  [4]int{b.cfg.Video.Dim, b.cfg.Video.Dim, b.cfg.Video.FrameCount, b.video.Channels()},
		ClassesNum: b.cfg.ClassesNum(),
		HasWeak:    table.HasWeak,
		HasStrong:  table.HasStrong,
	}

	archivePath := archive.FeaturePath(b.cfg.Paths.WorkspaceDir, layout, split.RelativeName)
	writer, err := archive.Create(ctx, archivePath, spec)
	if err != nil {
		return err
	}
	defer writer.Close()

	var bar *progressbar.ProgressBar
	if b.Progress {
		bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetDescription(split.Name),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
	}

	started := time.Now()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.appendItem(ctx, writer, split, table, extractor, vocab, spec, name, log); err != nil {
			return fmt.Errorf("item %s: %w", name, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if err := writer.Finalize(ctx); err != nil {
		return err
	}

	log.Info("split extracted",
		logging.String(logging.FieldSplit, split.Name),
		logging.Int("rows", len(names)),
		logging.String("path", archivePath),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

// selectNames returns the processing order: sorted unique names, optionally
// reduced to a seeded random subsample for quick debugging runs.
func (b *Builder) selectNames(table *metadata.Table) []string {
	names := table.Names()
	sort.Strings(names)

	if !b.cfg.Extract.MiniData || len(names) <= b.cfg.Extract.MiniItems {
		return names
	}

	// The shuffle seed is fixed so mini archives stay comparable across runs.
	rng := rand.New(rand.NewSource(b.cfg.Extract.MiniSeed))
	rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	names = names[:b.cfg.Extract.MiniItems]
	sort.Strings(names)
	return names
}

func (b *Builder) appendItem(
	ctx context.Context,
	writer *archive.Writer,
	split metadata.Split,
	table *metadata.Table,
	extractor *logmel.Extractor,
	vocab *targets.Vocabulary,
	spec archive.Spec,
	name string,
	log *slog.Logger,
) error {
	videoName := b.videoName(name)
	log.Debug("extracting item",
		logging.String(logging.FieldItem, name),
		logging.Int("idx", writer.Len()))

	samples, err := b.audio.Load(filepath.Join(split.AudioDir(b.cfg), name), b.cfg.Audio.SampleRate)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}
	samples = audioio.PadTruncate(samples, b.cfg.TotalSamples())

	rows, err := extractor.Transform(samples)
	if err != nil {
		return fmt.Errorf("log-mel transform: %w", err)
	}
	if len(rows) < spec.FramesNum {
		return fmt.Errorf("log-mel transform produced %d frames, need %d", len(rows), spec.FramesNum)
	}
	feature := flattenRows(rows[:spec.FramesNum], spec.MelBins)

	tensor, err := b.video.Frames(ctx, filepath.Join(split.VideoDir(b.cfg), videoName))
	if err != nil {
		return fmt.Errorf("video frames: %w", err)
	}

	row := archive.Row{
		AudioName:    name,
		VideoName:    videoName,
		Feature:      feature,
		VideoFeature: tensor.Data,
	}

	labels := table.Lookup(name)
	if table.HasWeak {
		if row.WeakTarget, err = targets.WeakTarget(labels.Weak, vocab); err != nil {
			return err
		}
	}
	if table.HasStrong {
		strong, err := targets.StrongTarget(labels.Strong, spec.FramesNum, b.cfg.FramesPerSecond(), vocab)
		if err != nil {
			return err
		}
		row.StrongTarget = flattenBools(strong, spec.ClassesNum)
	}

	return writer.Append(ctx, row)
}

// videoName maps an audio file name to its paired video file name by swapping
// the configured extensions.
func (b *Builder) videoName(audioName string) string {
	return strings.TrimSuffix(audioName, b.cfg.Video.AudioExt) + b.cfg.Video.VideoExt
}

func flattenRows(rows [][]float32, width int) []float32 {
	out := make([]float32, 0, len(rows)*width)
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

func flattenBools(rows [][]bool, width int) []bool {
	out := make([]bool, 0, len(rows)*width)
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
