// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/contractpack/contractpack/internal/config"

	"github.com/spf13/cobra"
)

// defaultInitVersion is the version written by `config init`.
const defaultInitVersion = "0.1.0"

func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage contractpack configuration",
		Long: `Manage contractpack configuration.

Settings are merged from, in order:
  - the user file (Linux: ~/.config/contractpack/config.cue,
    macOS: ~/Library/Application Support/contractpack/config.cue,
    Windows: %APPDATA%\contractpack\config.cue)
  - contractpack.cue in the working directory
  - CONTRACTPACK_* environment variables (e.g. CONTRACTPACK_ROOT)

--config replaces both files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	var initUser, initForce bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create contractpack.cue in the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app, initUser, initForce)
		},
	}
	initCmd.Flags().BoolVar(&initUser, "user", false, "write the user config file instead")
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.startSession(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	s, err := app.startSession(ctx, rootFlags)
	if err != nil {
		return err
	}
	cfg := s.cfg
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	for _, src := range configSources(rootFlags) {
		fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render(src.label), src.describe())
	}
	fmt.Fprintln(out)

	meta := cfg.Metadata
	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("metadata"))
	for _, kv := range []struct{ key, value string }{
		{"name", meta.Name},
		{"version", meta.Version},
		{"description", string(meta.Description)},
		{"author", meta.Author},
		{"author_email", meta.AuthorEmail},
		{"license", meta.License},
		{"url", meta.URL},
	} {
		fmt.Fprintf(out, "  %s: %s\n", kv.key, valueOrUnset(kv.value))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("root"), SuccessStyle.Render(cfg.Root))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("include"), listOrNone(cfg.Include))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("exclude"), listOrNone(cfg.Exclude))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("empty_dirs"), SuccessStyle.Render(string(cfg.EmptyDirs)))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("output_dir"), SuccessStyle.Render(cfg.OutputDir))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("format"), SuccessStyle.Render(string(cfg.Format)))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", SuccessStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	return nil
}

func initConfig(app *App, user, force bool) error {
	path := config.ProjectConfigPath(config.LoadOptions{})
	if user {
		userPath, err := config.UserConfigPath(config.LoadOptions{})
		if err != nil {
			return err
		}
		path = userPath
	}

	cfg := config.DefaultConfig()
	if !user {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg.Metadata.Name = packageNameFromDir(wd)
		cfg.Metadata.Version = defaultInitVersion
	}

	if force {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace %s: %w", path, err)
		}
	}
	created, err := config.CreateDefaultConfig(path, cfg)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s %s already exists (use --force to replace it)\n",
			WarningStyle.Render("!"), PathStyle.Render(path))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), PathStyle.Render(path))
	return nil
}

func showConfigPath(app *App, rootFlags *rootFlagValues) error {
	for _, src := range configSources(rootFlags) {
		fmt.Fprintf(app.stdout, "%s: %s\n", src.label, src.path)
	}
	return nil
}

type configSource struct {
	label string
	path  string
}

// configSources lists the files Load would read, in merge order.
func configSources(rootFlags *rootFlagValues) []configSource {
	if rootFlags.configPath != "" {
		return []configSource{{label: "Config file", path: rootFlags.configPath}}
	}
	var sources []configSource
	if userPath, err := config.UserConfigPath(config.LoadOptions{}); err == nil {
		sources = append(sources, configSource{label: "User config", path: userPath})
	}
	return append(sources, configSource{
		label: "Project config",
		path:  config.ProjectConfigPath(config.LoadOptions{}),
	})
}

func (c configSource) describe() string {
	if info, err := os.Stat(c.path); err == nil && !info.IsDir() {
		return c.path
	}
	return c.path + " " + SubtitleStyle.Render("(not found)")
}

// packageNameFromDir derives a valid package name from a directory name.
func packageNameFromDir(dir string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, filepath.Base(dir))
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return r >= unicode.MaxASCII || !unicode.IsLetter(r)
	})
	if name == "" {
		return "contracts"
	}
	return name
}

func valueOrUnset(v string) string {
	if v == "" {
		return SubtitleStyle.Render("(unset)")
	}
	return SuccessStyle.Render(v)
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return SuccessStyle.Render(strings.Join(values, ", "))
}
