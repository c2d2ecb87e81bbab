// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/contractpack/contractpack/pkg/platform"
)

const (
	// SeverityError marks an issue that must stop packaging.
	SeverityError Severity = "error"
	// SeverityWarning marks an issue worth reporting that does not stop packaging.
	SeverityWarning Severity = "warning"
)

type (
	// Severity classifies a ValidationIssue.
	Severity string

	// ValidationIssue is a single problem found by Check.
	ValidationIssue struct {
		Severity Severity
		// Field is the metadata field or manifest path involved (optional).
		Field   string
		Message string
	}

	// ValidationResult is the outcome of Check.
	ValidationResult struct {
		Issues []ValidationIssue
	}
)

// Error implements the error interface.
func (v ValidationIssue) Error() string {
	if v.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Field, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Severity, v.Message)
}

// Valid reports whether no issue has error severity.
func (r ValidationResult) Valid() bool {
	return len(r.Errors()) == 0
}

// Errors returns the error-severity issues.
func (r ValidationResult) Errors() []ValidationIssue { return r.filter(SeverityError) }

// Warnings returns the warning-severity issues.
func (r ValidationResult) Warnings() []ValidationIssue { return r.filter(SeverityWarning) }

func (r ValidationResult) filter(s Severity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

// Check validates metadata and the manifest layout. rootIsDir tells
// whether the contracts root was found as a directory; a missing root and
// an empty package are warnings, never errors.
func (m *Manifest) Check(rootIsDir bool) ValidationResult {
	var result ValidationResult

	if err := m.Metadata.Validate(); err != nil {
		var metaErr *InvalidMetadataError
		if errors.As(err, &metaErr) {
			for _, fe := range metaErr.FieldErrors {
				issue := ValidationIssue{Severity: SeverityError, Message: fe.Error()}
				var fieldErr *FieldError
				if errors.As(fe, &fieldErr) {
					issue.Field = fieldErr.Field
					issue.Message = fieldErr.Err.Error()
				}
				result.Issues = append(result.Issues, issue)
			}
		}
	}

	if !rootIsDir {
		result.Issues = append(result.Issues, ValidationIssue{
			Severity: SeverityWarning,
			Field:    "root",
			Message:  fmt.Sprintf("%s is not a directory; the package will contain no contract files", m.Root),
		})
	} else if m.FileCount() == 0 {
		result.Issues = append(result.Issues, ValidationIssue{
			Severity: SeverityWarning,
			Field:    "root",
			Message:  fmt.Sprintf("no files found under %s", m.Root),
		})
	}

	result.Issues = append(result.Issues, m.checkLayout()...)
	result.Issues = append(result.Issues, m.checkPortability()...)
	return result
}

// checkPortability warns about names that cannot be installed on every OS.
func (m *Manifest) checkPortability() []ValidationIssue {
	var issues []ValidationIssue
	warn := func(p string) {
		if problem := platform.PortabilityProblem(path.Base(p)); problem != "" {
			issues = append(issues, ValidationIssue{Severity: SeverityWarning, Field: p, Message: problem})
		}
	}
	for _, dir := range m.Dirs() {
		if dir != m.Root {
			warn(dir)
		}
		for _, f := range m.DataFiles[dir] {
			warn(f)
		}
	}
	return issues
}

// checkLayout verifies that every file sits directly in the directory it is
// listed under and that every directory lies inside the root.
func (m *Manifest) checkLayout() []ValidationIssue {
	var issues []ValidationIssue
	for _, dir := range m.Dirs() {
		if !within(m.Root, dir) {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Field:    dir,
				Message:  fmt.Sprintf("directory is outside root %s", m.Root),
			})
		}
		for _, f := range m.DataFiles[dir] {
			if path.Dir(f) != dir {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Field:    f,
					Message:  fmt.Sprintf("file is not directly inside %s", dir),
				})
			}
		}
	}
	return issues
}

func within(root, dir string) bool {
	if root == "." {
		return !strings.HasPrefix(dir, "../") && dir != ".." && !path.IsAbs(dir)
	}
	return dir == root || strings.HasPrefix(dir, strings.TrimSuffix(root, "/")+"/")
}
