package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"melpack/internal/scalar"
)

func newScalarCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scalar <split>",
		Short: "Compute normalization statistics from an extracted archive",
		Long: "Scalar reduces a finalized archive to per-element mean and standard\n" +
			"deviation for both feature datasets. Only splits with synthesized\n" +
			"strong labels can source normalization statistics.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := scalar.Run(cmd.Context(), cfg, logger, args[0]); err != nil {
				return fmt.Errorf("scalar %s: %w", args[0], err)
			}
			return nil
		},
	}
}
