// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "build archive"},
			expected: "failed to build archive",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "build archive", Resource: "dist/pkg-1.0.0.zip"},
			expected: "failed to build archive: dist/pkg-1.0.0.zip",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error at line 5")},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "collect contracts",
				Resource:  "contracts/private",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to collect contracts: contracts/private: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "install package",
				Resource:    "pkg-1.0.0.zip",
				Suggestions: []string{"Use --overwrite", "Install somewhere else with --dest"},
			},
			contains: []string{"failed to install package", "• Use --overwrite", "• Install somewhere else with --dest"},
		},
		{
			name:     "no chain when quiet",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error")},
			contains: []string{"failed to load configuration: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested chain when verbose",
			err: &ActionableError{
				Operation: "build archive",
				Cause: &ActionableError{
					Operation: "read contracts/A.sol",
					Cause:     errors.New("file not found"),
				},
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. failed to read contracts/A.sol: file not found", "2. file not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("build archive").
		WithResource("dist").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(ArchiveExistsId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "build archive" || ae.Resource != "dist" {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 3", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("Build() lost the cause")
	}
	if ae.Issue() == nil || ae.Issue().Id() != ArchiveExistsId {
		t.Errorf("Issue() = %v, want ArchiveExistsId", ae.Issue())
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want untyped nil", err)
	}
	if NewActionableError("x").Issue() != nil {
		t.Error("Issue() without a linked id should be nil")
	}
}

func TestErrorContext_ReuseDoesNotAlias(t *testing.T) {
	ctx := NewErrorContext().WithOperation("collect contracts").WithSuggestion("first")
	a := ctx.Build()
	ctx.WithSuggestion("second")
	b := ctx.Build()

	if len(a.Suggestions) != 1 {
		t.Errorf("first build suggestions = %v, want 1", a.Suggestions)
	}
	if len(b.Suggestions) != 2 {
		t.Errorf("second build suggestions = %v, want 2", b.Suggestions)
	}
}

func TestWrapHelpers(t *testing.T) {
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
	if WrapWithContext(nil, "x", "y") != nil {
		t.Error("WrapWithContext(nil) should be nil")
	}

	cause := errors.New("cause")
	if got := WrapWithContext(cause, "install package", "a.zip").Error(); got != "failed to install package: a.zip: cause" {
		t.Errorf("WrapWithContext().Error() = %q", got)
	}
	if got := WrapWithOperation(cause, "check package").Error(); got != "failed to check package: cause" {
		t.Errorf("WrapWithOperation().Error() = %q", got)
	}
}
