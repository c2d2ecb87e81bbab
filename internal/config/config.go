// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/contractpack/contractpack/internal/issue"
	"github.com/contractpack/contractpack/pkg/collect"
	"github.com/contractpack/contractpack/pkg/cueutil"
	"github.com/contractpack/contractpack/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "contractpack"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the per-project config file looked up in the
	// working directory.
	ProjectFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides, e.g. CONTRACTPACK_ROOT.
	EnvPrefix = "CONTRACTPACK"
)

//go:embed config_schema.cue
var configSchema string

var configSchemaDef = cueutil.NewSchema([]byte(configSchema), "#Config")

// ConfigDir returns the contractpack configuration directory using
// platform conventions: %APPDATA% on Windows, ~/Library/Application
// Support on macOS and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// UserConfigPath returns the path of the user-level config file.
func UserConfigPath(opts LoadOptions) (string, error) {
	cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// ProjectConfigPath returns the path of the per-project config file.
func ProjectConfigPath(opts LoadOptions) string {
	return filepath.Join(string(opts.BaseDir), ProjectFileName)
}

// loadWithOptions performs option-driven config loading without touching
// package state. It returns the merged files in merge order.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var sources []string
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'contractpack config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		if err := mergeFile(v, path); err != nil {
			return nil, nil, err
		}
		sources = append(sources, path)
	} else {
		userPath, err := UserConfigPath(opts)
		if err != nil {
			return nil, nil, err
		}
		for _, path := range []string{userPath, ProjectConfigPath(opts)} {
			if !fileExists(path) {
				continue
			}
			if err := mergeFile(v, path); err != nil {
				return nil, nil, err
			}
			sources = append(sources, path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(strings.Join(sources, ", ")).
			WithSuggestion("Patterns use doublestar syntax, e.g. \"**/*.sol\"").
			WithSuggestion("Check CONTRACTPACK_* environment variables").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, sources, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("metadata.name", defaults.Metadata.Name)
	v.SetDefault("metadata.version", defaults.Metadata.Version)
	v.SetDefault("metadata.description", string(defaults.Metadata.Description))
	v.SetDefault("metadata.author", defaults.Metadata.Author)
	v.SetDefault("metadata.author_email", defaults.Metadata.AuthorEmail)
	v.SetDefault("metadata.license", defaults.Metadata.License)
	v.SetDefault("metadata.url", defaults.Metadata.URL)
	v.SetDefault("root", defaults.Root)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("empty_dirs", string(defaults.EmptyDirs))
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("format", string(defaults.Format))
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

func mergeFile(v *viper.Viper, path string) error {
	if err := loadCUEIntoViper(v, path); err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the configuration values match the expected schema").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// v. Every field is optional, so the file is decoded to a map for Viper
// rather than into Config.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := configSchemaDef.DecodeMap(data, cueutil.WithConcrete(false), cueutil.WithFilename(path))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes cfg as CUE to path unless a file is already
// there. It reports whether a file was written.
func CreateDefaultConfig(path string, cfg *Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE renders cfg as a config file accepted by #Config. Empty
// metadata fields are left out so the file validates as written.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// contractpack configuration\n")
	sb.WriteString("// Values can be overridden with CONTRACTPACK_* environment variables.\n\n")

	meta := []struct{ key, value string }{
		{"name", cfg.Metadata.Name},
		{"version", cfg.Metadata.Version},
		{"description", string(cfg.Metadata.Description)},
		{"author", cfg.Metadata.Author},
		{"author_email", cfg.Metadata.AuthorEmail},
		{"license", cfg.Metadata.License},
		{"url", cfg.Metadata.URL},
	}
	sb.WriteString("metadata: {\n")
	for _, kv := range meta {
		if kv.value != "" {
			fmt.Fprintf(&sb, "\t%s: %q\n", kv.key, kv.value)
		}
	}
	sb.WriteString("}\n\n")

	emptyDirs, colorScheme := cfg.EmptyDirs, cfg.UI.ColorScheme
	if emptyDirs == "" {
		emptyDirs = collect.EmptyDirsOmit
	}
	if colorScheme == "" {
		colorScheme = ColorSchemeAuto
	}

	if cfg.Root != "" {
		fmt.Fprintf(&sb, "root: %q\n", cfg.Root)
	}
	fmt.Fprintf(&sb, "empty_dirs: %q\n", string(emptyDirs))
	if cfg.OutputDir != "" {
		fmt.Fprintf(&sb, "output_dir: %q\n", cfg.OutputDir)
	}
	if cfg.Format != "" {
		fmt.Fprintf(&sb, "format: %q\n", string(cfg.Format))
	}
	writeList(&sb, "include", cfg.Include)
	writeList(&sb, "exclude", cfg.Exclude)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", colorScheme.String())
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		return
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	fmt.Fprintf(sb, "%s: [%s]\n", key, strings.Join(quoted, ", "))
}
