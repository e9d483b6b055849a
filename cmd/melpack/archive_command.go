package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"melpack/internal/archive"
	"melpack/internal/config"
	"melpack/internal/fileutil"
	"melpack/internal/metadata"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect extracted archives",
	}

	archiveCmd.AddCommand(newArchiveInfoCommand(ctx))
	archiveCmd.AddCommand(newArchiveScalarsCommand(ctx))
	archiveCmd.AddCommand(newArchiveExportCommand(ctx))

	return archiveCmd
}

func newArchiveInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <split>",
		Short: "Show the datasets and row count of a split's archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			split, err := metadata.LookupSplit(args[0])
			if err != nil {
				return err
			}

			layout := archive.Layout{
				FramesPerSecond: cfg.FramesPerSecond(),
				MelBins:         cfg.Audio.MelBins,
				MiniData:        cfg.Extract.MiniData,
			}
			path := archive.FeaturePath(cfg.Paths.WorkspaceDir, layout, split.RelativeName)

			reader, err := archive.OpenReader(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open archive for %s: %w", split.Name, err)
			}
			defer reader.Close()

			spec := reader.Spec()
			rows := [][]string{
				{"audio_name", "string", "-"},
				{"video_name", "string", "-"},
				{"feature", "float32", fmt.Sprintf("(%d, %d)", spec.FramesNum, spec.MelBins)},
				{"video_feature", "float32", fmt.Sprintf("(%d, %d, %d, %d)",
					spec.VideoDims[0], spec.VideoDims[1], spec.VideoDims[2], spec.VideoDims[3])},
			}
			if spec.HasWeak {
				rows = append(rows, []string{"weak_target", "bool", fmt.Sprintf("(%d)", spec.ClassesNum)})
			}
			if spec.HasStrong {
				rows = append(rows, []string{"strong_target", "bool", fmt.Sprintf("(%d, %d)", spec.FramesNum, spec.ClassesNum)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archive: %s\n", path)
			fmt.Fprintf(out, "Rows: %d\n", reader.Len())
			fmt.Fprintln(out, renderTable(
				[]string{"Dataset", "Type", "Row shape"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}

func newArchiveExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <split> <destination>",
		Short: "Copy a finalized archive out of the workspace with integrity checks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			split, err := metadata.LookupSplit(args[0])
			if err != nil {
				return err
			}

			layout := archive.Layout{
				FramesPerSecond: cfg.FramesPerSecond(),
				MelBins:         cfg.Audio.MelBins,
				MiniData:        cfg.Extract.MiniData,
			}
			path := archive.FeaturePath(cfg.Paths.WorkspaceDir, layout, split.RelativeName)

			// Opening verifies the archive is finalized before it ships.
			reader, err := archive.OpenReader(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open archive for %s: %w", split.Name, err)
			}
			rows := reader.Len()
			if err := reader.Close(); err != nil {
				return err
			}

			dest, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}
			if info, statErr := os.Stat(dest); statErr == nil && info.IsDir() {
				dest = filepath.Join(dest, filepath.Base(path))
			}
			if err := fileutil.CopyFileVerified(path, dest); err != nil {
				return fmt.Errorf("export archive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d rows) to %s\n", split.Name, rows, dest)
			return nil
		},
	}
}

func newArchiveScalarsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scalars <split>",
		Short: "Show the normalization statistics recorded for a split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			split, err := metadata.LookupSplit(args[0])
			if err != nil {
				return err
			}

			layout := archive.Layout{
				FramesPerSecond: cfg.FramesPerSecond(),
				MelBins:         cfg.Audio.MelBins,
				MiniData:        cfg.Extract.MiniData,
			}
			path := archive.ScalarPath(cfg.Paths.WorkspaceDir, layout, split.RelativeName)

			rec, err := archive.ReadScalars(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("read scalars for %s: %w", split.Name, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scalars: %s\n", path)
			fmt.Fprintln(out, renderTable(
				[]string{"Modality", "Elements"},
				[][]string{
					{"audio", strconv.Itoa(len(rec.AudioMean))},
					{"video", strconv.Itoa(len(rec.VideoMean))},
				},
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
