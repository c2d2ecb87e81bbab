// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/contractpack/contractpack/internal/issue"
	"github.com/contractpack/contractpack/pkg/types"

	"github.com/spf13/cobra"
)

func newCheckCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate package metadata and the contracts tree",
		Long: `Validate the package metadata and collect the contracts root, reporting
errors and portability warnings.

The command exits with status 1 only when errors were found. A missing
root or a root without files is a warning: the package would be empty,
which is allowed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), app, rootFlags, root)
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "contracts directory (default from config, then \"contracts\")")

	return cmd
}

func runCheck(ctx context.Context, app *App, rootFlags *rootFlagValues, rootFlag string) error {
	s, err := app.startSession(ctx, rootFlags)
	if err != nil {
		return err
	}

	res, err := s.collect(s.rootOrDefault(rootFlag))
	if err != nil {
		return s.fail(app, err)
	}
	m := res.manifest
	result := m.Check(res.rootIsDir)

	for _, w := range result.Warnings() {
		fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("!"), w.Error())
	}
	for _, e := range result.Errors() {
		fmt.Fprintf(app.stdout, "%s %s\n", ErrorStyle.Render("✗"), e.Error())
	}

	if !result.Valid() {
		if m.Metadata.Validate() != nil {
			if entry := issue.Get(issue.InvalidMetadataId); entry != nil {
				if rendered, renderErr := entry.Render(s.issueStyle); renderErr == nil {
					fmt.Fprint(app.stderr, rendered)
				}
			}
		}
		return &ExitError{Code: types.ExitFailure}
	}

	fmt.Fprintf(app.stdout, "%s %s %s: %d files in %d directories\n",
		SuccessStyle.Render("✓"), m.Metadata.Name, m.Metadata.Version, m.FileCount(), len(m.Dirs()))
	return nil
}
