package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/artifexhq/artifex/internal/artifact"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "Write the manifest text record for a local file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		manifest, err := artifact.ManifestFromDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			return manifest.Dump(cmd.OutOrStdout())
		}

		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		return manifest.Dump(file)
	},
}

func init() {
	dumpCmd.Flags().StringP("output", "o", "", "Write the manifest to a file instead of stdout")
}
