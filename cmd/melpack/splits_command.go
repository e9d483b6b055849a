package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"melpack/internal/metadata"
)

func newSplitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "splits",
		Short:       "List the registered dataset splits",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(metadata.Splits()))
			for _, name := range metadata.Splits() {
				split, err := metadata.LookupSplit(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{split.Name, split.RelativeName, yesNo(split.ScalarCapable)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Split", "Layout", "Scalar source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
