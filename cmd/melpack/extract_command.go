package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"melpack/internal/deps"
	"melpack/internal/extraction"
	"melpack/internal/metadata"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var miniData bool
	var all bool

	cmd := &cobra.Command{
		Use:   "extract [split...]",
		Short: "Extract feature archives for one or more splits",
		Long: "Extract walks each split's label table in sorted order, computes the\n" +
			"log-mel spectrogram and sampled video frames for every item, and writes\n" +
			"them with the rasterized targets into the split's archive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			splits := args
			if all {
				if len(args) > 0 {
					return fmt.Errorf("--all and explicit split names are mutually exclusive")
				}
				splits = metadata.Splits()
			}
			if len(splits) == 0 {
				return fmt.Errorf("name at least one split or pass --all (known: %v)", metadata.Splits())
			}
			for _, split := range splits {
				if _, err := metadata.LookupSplit(split); err != nil {
					return err
				}
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if miniData {
				cfg.Extract.MiniData = true
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := deps.CheckVideoTools(cfg); err != nil {
				return err
			}

			builder := extraction.NewBuilder(cfg, logger)
			builder.Progress = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

			for _, split := range splits {
				if err := builder.Run(cmd.Context(), split); err != nil {
					return fmt.Errorf("extract %s: %w", split, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&miniData, "mini-data", false, "Extract a small seeded subsample for debugging")
	cmd.Flags().BoolVar(&all, "all", false, "Extract every registered split")
	return cmd
}
