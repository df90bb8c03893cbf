package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artifexhq/artifex/internal/artifact"
	"github.com/artifexhq/artifex/internal/regsdk"
	"github.com/artifexhq/artifex/internal/sync"
)

var saveCmd = &cobra.Command{
	Use:   "save [paths...]",
	Short: "Build a manifest from local files and sync it to the registry",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := currentConfig()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		aliases, _ := cmd.Flags().GetStringSlice("alias")
		labels, _ := cmd.Flags().GetStringSlice("label")
		metadataPath, _ := cmd.Flags().GetString("metadata")
		mappings, _ := cmd.Flags().GetStringSlice("map")
		wait, _ := cmd.Flags().GetBool("wait")

		spec, err := resolvePathSpec(args, mappings)
		if err != nil {
			return err
		}

		var meta *artifact.Metadata
		if metadataPath != "" {
			if meta, err = artifact.MetadataFromFile(metadataPath); err != nil {
				return err
			}
		}

		manifest, err := artifact.BuildManifest(cmd.Context(), spec, meta)
		if err != nil {
			return err
		}
		slog.Info("manifest built", "entries", len(manifest.Entries()), "digest", manifest.Digest())

		sdk, err := regsdk.New(cfg.ServerURL)
		if err != nil {
			return err
		}
		defer sdk.Close()

		coord, err := sync.NewCoordinator(sdk.Artifacts, sdk.Files,
			sync.WithUploadConcurrency(cfg.UploadConcurrency),
			sync.WithPollInterval(cfg.PollInterval()),
		)
		if err != nil {
			return err
		}

		ver, err := coord.Save(cmd.Context(), manifest, name, &sync.SaveOptions{
			Description:   description,
			Aliases:       aliases,
			Labels:        labels,
			IsUserCreated: true,
		})
		if err != nil {
			return err
		}
		slog.Info("artifact version saved", "version", ver.ID, "state", ver.State)

		if wait {
			if ver, err = coord.Wait(cmd.Context()); err != nil {
				return err
			}
			slog.Info("artifact version ready", "version", ver.ID)
		}
		return nil
	},
}

func init() {
	saveCmd.Flags().SortFlags = false
	saveCmd.Flags().StringP("name", "n", "", "Artifact name")
	saveCmd.Flags().String("description", "", "Version description")
	saveCmd.Flags().StringSlice("alias", nil, "Version alias (repeatable)")
	saveCmd.Flags().StringSlice("label", nil, "Version label (repeatable)")
	saveCmd.Flags().String("metadata", "", "Path to a metadata JSON document")
	saveCmd.Flags().StringSlice("map", nil, "Explicit logical=local path mapping (repeatable)")
	saveCmd.Flags().Bool("wait", false, "Block until the version is ready")
	saveCmd.MarkFlagRequired("name")
}

// resolvePathSpec turns the CLI's path arguments into a spec: --map entries
// win, a single positional is treated as a file-or-directory, several
// positionals as a flat file list.
func resolvePathSpec(args, mappings []string) (artifact.PathSpec, error) {
	if len(mappings) > 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("pass either paths or --map entries, not both")
		}
		paths := make(map[string]string, len(mappings))
		for _, mapping := range mappings {
			logical, local, ok := strings.Cut(mapping, "=")
			if !ok || logical == "" || local == "" {
				return nil, fmt.Errorf("invalid --map entry %q, want logical=local", mapping)
			}
			paths[logical] = local
		}
		return artifact.PathSpecFromMap(paths)
	}

	switch len(args) {
	case 0:
		return nil, artifact.ErrEmptySpec
	case 1:
		return artifact.PathSpecFromPath(args[0])
	default:
		return artifact.PathSpecFromFiles(args)
	}
}
