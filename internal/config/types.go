// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/contractpack/contractpack/pkg/collect"
	"github.com/contractpack/contractpack/pkg/manifest"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultRoot is the contracts directory used when none is configured.
	DefaultRoot = "contracts"
	// DefaultOutputDir receives built archives when none is configured.
	DefaultOutputDir = "dist"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidPattern is returned for an include or exclude glob that does
	// not parse.
	ErrInvalidPattern = errors.New("invalid pattern")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Metadata describes the package being built.
		Metadata manifest.Metadata `json:"metadata" mapstructure:"metadata"`
		// Root is the contracts directory to collect.
		Root string `json:"root" mapstructure:"root"`
		// Include restricts collected files to those matching any pattern.
		Include []string `json:"include" mapstructure:"include"`
		// Exclude skips matching files and directories.
		Exclude   []string               `json:"exclude" mapstructure:"exclude"`
		EmptyDirs collect.EmptyDirPolicy `json:"empty_dirs" mapstructure:"empty_dirs"`
		OutputDir string                 `json:"output_dir" mapstructure:"output_dir"`
		// Format is the default output format of `contractpack manifest`.
		Format manifest.Format `json:"format" mapstructure:"format"`
		UI     UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Root:      DefaultRoot,
		Include:   []string{},
		Exclude:   []string{},
		EmptyDirs: collect.EmptyDirsOmit,
		OutputDir: DefaultOutputDir,
		Format:    manifest.FormatText,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// CollectOptions returns the collector settings held by c.
func (c *Config) CollectOptions() collect.Options {
	return collect.Options{
		Include:   c.Include,
		Exclude:   c.Exclude,
		EmptyDirs: c.EmptyDirs,
	}
}

// IsValid checks the fields CUE cannot fully check, such as glob syntax.
// Package metadata is deliberately not validated here: an incomplete
// package description must not stop `config show` or `manifest`.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, fmt.Errorf("root: must not be empty"))
	}
	if !c.EmptyDirs.IsValid() {
		errs = append(errs, fmt.Errorf("empty_dirs: %w: %q", collect.ErrInvalidEmptyDirPolicy, c.EmptyDirs))
	}
	if c.Format != "" {
		if _, err := manifest.ParseFormat(string(c.Format)); err != nil {
			errs = append(errs, fmt.Errorf("format: %w", err))
		}
	}
	for _, field := range []struct {
		name     string
		patterns []string
	}{{"include", c.Include}, {"exclude", c.Exclude}} {
		for i, p := range field.patterns {
			if !doublestar.ValidatePattern(p) {
				errs = append(errs, fmt.Errorf("%s[%d]: %w %q", field.name, i, ErrInvalidPattern, p))
			}
		}
	}
	if valid, csErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, csErrs...)
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is().
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the scheme name.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether cs is a known scheme. The zero value means auto.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case "", ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}
