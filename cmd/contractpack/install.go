// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/contractpack/contractpack/pkg/bundle"
	"github.com/contractpack/contractpack/pkg/types"

	"github.com/spf13/cobra"
)

type installFlagValues struct {
	dest      string
	overwrite bool
}

func newInstallCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &installFlagValues{}

	cmd := &cobra.Command{
		Use:   "install <archive|url>",
		Short: "Install a package archive",
		Long: `Unpack an archive written by "contractpack build" into the destination
directory as <name>-<version>/. The archive may be a local path or an
http(s) URL.

Entries that would land outside the destination are rejected, and nothing
is written unless every file listed in the archive's manifest is present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.startSession(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}

			installed, err := bundle.Install(cmd.Context(), bundle.InstallOptions{
				Source:    args[0],
				DestDir:   types.FilesystemPath(flags.dest),
				Overwrite: flags.overwrite,
				Logger:    s.logger,
			})
			if err != nil {
				return s.fail(app, err)
			}

			meta := installed.Manifest.Metadata
			fmt.Fprintf(app.stdout, "%s Installed %s %s into %s\n",
				SuccessStyle.Render("✓"), meta.Name, meta.Version, PathStyle.Render(string(installed.Dir)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.dest, "dest", "d", ".", "destination directory")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace an installed copy of the same version")

	return cmd
}
