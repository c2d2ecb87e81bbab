// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/contractpack/contractpack/pkg/bundle"
	"github.com/contractpack/contractpack/pkg/types"

	"github.com/spf13/cobra"
)

type buildFlagValues struct {
	root      string
	output    string
	overwrite bool
}

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &buildFlagValues{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the distribution archive",
		Long: `Collect the contracts root and write <name>-<version>.zip to the output
directory. The archive holds every collected file under a single
<name>-<version>/ directory together with contractpack.toml, the manifest
used by "contractpack install".

An empty contracts tree still produces a valid archive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), app, rootFlags, flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "contracts directory (default from config, then \"contracts\")")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default from config, then \"dist\")")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace an existing archive")

	return cmd
}

func runBuild(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *buildFlagValues) error {
	s, err := app.startSession(ctx, rootFlags)
	if err != nil {
		return err
	}

	res, err := s.collect(s.rootOrDefault(flags.root))
	if err != nil {
		return s.fail(app, err)
	}

	outputDir := flags.output
	if outputDir == "" {
		outputDir = s.cfg.OutputDir
	}

	built, err := bundle.Build(ctx, bundle.BuildOptions{
		Manifest:  res.manifest,
		OutputDir: types.FilesystemPath(outputDir),
		Overwrite: flags.overwrite,
		Logger:    s.logger,
	})
	if err != nil {
		return s.fail(app, err)
	}

	fmt.Fprintf(app.stdout, "%s Built %s (%d files in %d directories)\n",
		SuccessStyle.Render("✓"), PathStyle.Render(string(built.ArchivePath)),
		built.Manifest.FileCount(), len(built.Manifest.Dirs()))
	return nil
}
