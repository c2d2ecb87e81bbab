// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/contractpack/contractpack/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "contractpack",
		Short: "Package a smart-contract source tree for distribution",
		Long: TitleStyle.Render("contractpack") + SubtitleStyle.Render(" - package smart-contract sources") + `

contractpack walks a contracts directory, groups every file under the
directory that directly contains it, and packages that manifest together
with the package metadata from contractpack.cue into a zip archive.

` + SubtitleStyle.Render("Examples:") + `
  contractpack manifest               Print the directory to files manifest
  contractpack manifest --format json Print it as JSON
  contractpack check                  Validate metadata and the contracts root
  contractpack build                  Write dist/<name>-<version>.zip
  contractpack install pkg.zip        Unpack an archive into the current directory
  contractpack config init            Create contractpack.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file to use instead of the user and project files")

	rootCmd.AddCommand(
		newManifestCommand(app, flags),
		newCheckCommand(app, flags),
		newBuildCommand(app, flags),
		newInstallCommand(app, flags),
		newConfigCommand(app, flags),
	)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI and exits the process with the resulting code.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		os.Exit(int(exitCode(err)))
	}
}

// handleError prints err through fang unless it only carries an exit code
// whose reason was already reported.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func exitCode(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}
