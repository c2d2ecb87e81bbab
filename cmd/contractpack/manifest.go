// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/contractpack/contractpack/internal/watch"
	"github.com/contractpack/contractpack/pkg/manifest"

	"github.com/spf13/cobra"
)

type manifestFlagValues struct {
	root   string
	format string
	watch  bool
}

func newManifestCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &manifestFlagValues{}

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the directory to files manifest",
		Long: `Collect every file under the contracts root, grouped by the directory
that directly contains it, and print the result with the package metadata.

Directories without files are left out unless empty_dirs is "include".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runManifest(cmd.Context(), app, rootFlags, flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "contracts directory (default from config, then \"contracts\")")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", fmt.Sprintf("output format: %s", formatList()))
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "print again whenever files under the root change")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return strings.Split(formatList(), ", "), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runManifest(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *manifestFlagValues) error {
	s, err := app.startSession(ctx, rootFlags)
	if err != nil {
		return err
	}

	format := s.cfg.Format
	if flags.format != "" {
		if format, err = manifest.ParseFormat(flags.format); err != nil {
			return err
		}
	}
	root := s.rootOrDefault(flags.root)

	emit := func() error {
		res, collectErr := s.collect(root)
		if collectErr != nil {
			return s.fail(app, collectErr)
		}
		return res.manifest.Encode(app.stdout, format)
	}

	if !flags.watch {
		return emit()
	}

	if err := emit(); err != nil {
		s.logger.Error("initial collection failed", "err", err)
	}

	w, err := watch.New(watch.Config{
		BaseDir:  root,
		Patterns: s.cfg.Include,
		Ignore:   s.cfg.Exclude,
		Logger:   s.logger,
		OnChange: func(_ context.Context, changed []string) error {
			s.logger.Info("contracts changed", "paths", len(changed))
			return emit()
		},
	})
	if err != nil {
		return s.fail(app, err)
	}
	s.logger.Info("watching for changes (Ctrl+C to stop)", "root", root)
	return w.Run(ctx)
}

func formatList() string {
	names := make([]string, 0, len(manifest.Formats()))
	for _, f := range manifest.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
