package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artifexhq/artifex/internal/artifact"
)

var digestCmd = &cobra.Command{
	Use:   "digest <path>",
	Short: "Print the manifest digest of a local file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		manifest, err := artifact.ManifestFromDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), manifest.Digest())
		return nil
	},
}
