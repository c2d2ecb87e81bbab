// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/contractpack/contractpack/pkg/types"

	"golang.org/x/mod/semver"
)

var (
	// ErrInvalidMetadata is the sentinel error wrapped by InvalidMetadataError.
	ErrInvalidMetadata = errors.New("invalid package metadata")
	// ErrMissingField is wrapped by FieldError for a required field left empty.
	ErrMissingField = errors.New("required field is empty")
	// ErrInvalidName is wrapped by FieldError for a malformed package name.
	ErrInvalidName = errors.New("invalid package name")
	// ErrInvalidVersion is wrapped by FieldError for a version that is not semver.
	ErrInvalidVersion = errors.New("invalid semantic version")

	packageNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)
)

type (
	// Metadata is the static description of a package. It is configuration,
	// passed explicitly to whatever builds or prints the package.
	Metadata struct {
		Name        string                `json:"name" toml:"name" mapstructure:"name"`
		Version     string                `json:"version" toml:"version" mapstructure:"version"`
		Description types.DescriptionText `json:"description,omitempty" toml:"description,omitempty" mapstructure:"description"`
		Author      string                `json:"author" toml:"author" mapstructure:"author"`
		AuthorEmail string                `json:"author_email,omitempty" toml:"author_email,omitempty" mapstructure:"author_email"`
		License     string                `json:"license,omitempty" toml:"license,omitempty" mapstructure:"license"`
		URL         string                `json:"url,omitempty" toml:"url,omitempty" mapstructure:"url"`
	}

	// FieldError reports one invalid metadata field.
	FieldError struct {
		Field string
		Value string
		Err   error
	}

	// InvalidMetadataError collects every FieldError found by Validate.
	InvalidMetadataError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the field-level sentinel.
func (e *FieldError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *InvalidMetadataError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid package metadata: %s", strings.Join(msgs, "; "))
}

// Unwrap returns the sentinel and every field error, so errors.Is matches
// ErrInvalidMetadata as well as the individual field sentinels.
func (e *InvalidMetadataError) Unwrap() []error {
	return append([]error{ErrInvalidMetadata}, e.FieldErrors...)
}

// Validate checks required fields and formats. It returns nil or an
// *InvalidMetadataError.
func (m Metadata) Validate() error {
	var errs []error

	switch {
	case strings.TrimSpace(m.Name) == "":
		errs = append(errs, &FieldError{Field: "name", Err: ErrMissingField})
	case !packageNameRegex.MatchString(m.Name):
		errs = append(errs, &FieldError{Field: "name", Value: m.Name, Err: ErrInvalidName})
	}

	switch {
	case strings.TrimSpace(m.Version) == "":
		errs = append(errs, &FieldError{Field: "version", Err: ErrMissingField})
	case !IsSemVer(m.Version):
		errs = append(errs, &FieldError{Field: "version", Value: m.Version, Err: ErrInvalidVersion})
	}

	if strings.TrimSpace(m.Author) == "" {
		errs = append(errs, &FieldError{Field: "author", Err: ErrMissingField})
	}
	if valid, descErrs := m.Description.IsValid(); !valid {
		for _, de := range descErrs {
			errs = append(errs, &FieldError{Field: "description", Value: string(m.Description), Err: de})
		}
	}

	if len(errs) > 0 {
		return &InvalidMetadataError{FieldErrors: errs}
	}
	return nil
}

// ArchiveName returns the base name used for built archives and their
// top-level directory, e.g. "openzeppelin-contracts-5.1.0".
func (m Metadata) ArchiveName() string {
	return m.Name + "-" + strings.TrimPrefix(m.Version, "v")
}

// IsSemVer reports whether v is a full MAJOR.MINOR.PATCH semantic version,
// with optional pre-release and build suffixes. A leading "v" is optional.
func IsSemVer(v string) bool {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	canonical := semver.Canonical(v)
	// Canonical expands shorthands like v1.2 and drops build metadata.
	return canonical != "" && strings.HasPrefix(v, canonical)
}
