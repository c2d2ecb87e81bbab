// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/contractpack/contractpack/internal/config"
	"github.com/contractpack/contractpack/internal/issue"
	"github.com/contractpack/contractpack/internal/logging"
	"github.com/contractpack/contractpack/pkg/collect"
	"github.com/contractpack/contractpack/pkg/manifest"
	"github.com/contractpack/contractpack/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the same App and writes through its streams.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlagValues holds the persistent flags shared by every subcommand.
	rootFlagValues struct {
		verbose    bool
		configPath string
	}

	// session is the per-invocation state derived from flags and config.
	session struct {
		cfg        *config.Config
		logger     *log.Logger
		issueStyle string
		verbose    bool
	}

	// collected is a manifest together with what the collector saw.
	collected struct {
		manifest  *manifest.Manifest
		rootIsDir bool
	}
)

// NewApp creates an App, filling nil dependencies with defaults.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// startSession loads configuration for one command invocation. The
// verbose flag wins over ui.verbose.
func (a *App) startSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(flags.configPath),
	})
	if err != nil {
		return nil, a.fail(err, "auto", flags.verbose)
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &session{
		cfg:        cfg,
		logger:     logging.New(a.stderr, verbose),
		issueStyle: applyColorScheme(cfg.UI.ColorScheme),
		verbose:    verbose,
	}, nil
}

// collect walks root with the configured filters and pairs the result
// with the configured metadata. A missing root is logged, not returned.
func (s *session) collect(root string) (*collected, error) {
	opts := s.cfg.CollectOptions()
	opts.Logger = s.logger
	c, err := collect.New(opts)
	if err != nil {
		return nil, err
	}

	rootIsDir := isDir(root)
	if !rootIsDir {
		s.logger.Warn("contracts root not found, collecting nothing", "root", root)
	}

	files, err := c.Collect(root)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("collected", "root", root, "dirs", len(files), "files", files.FileCount())
	return &collected{
		manifest:  manifest.New(s.cfg.Metadata, root, files),
		rootIsDir: rootIsDir,
	}, nil
}

// fail prints the catalog entry matching err to stderr and returns err for
// cobra to report. Unclassified errors are returned untouched.
func (a *App) fail(err error, style string, verbose bool) error {
	id := classify(err)
	if id == 0 {
		return err
	}
	if entry := issue.Get(id); entry != nil {
		rendered, renderErr := entry.Render(style)
		if renderErr != nil {
			rendered = string(entry.MarkdownMsg()) + "\n"
		}
		fmt.Fprint(a.stderr, rendered)
	}
	var ae *issue.ActionableError
	if verbose && errors.As(err, &ae) {
		fmt.Fprintln(a.stderr, ae.Format(true))
	}
	return err
}

// fail is App.fail with the session's style and verbosity.
func (s *session) fail(a *App, err error) error {
	return a.fail(err, s.issueStyle, s.verbose)
}

// rootOrDefault resolves a --root flag against configuration.
func (s *session) rootOrDefault(flag string) string {
	if flag != "" {
		return flag
	}
	return s.cfg.Root
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
