// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPathIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value FilesystemPath
		want  bool
	}{
		{"contracts", true},
		{"/abs/contracts", true},
		{"./contracts/token", true},
		{"", false},
		{"   ", false},
		{"con\x00tracts", false},
	}

	for _, tt := range tests {
		valid, errs := tt.value.IsValid()
		if valid != tt.want {
			t.Errorf("FilesystemPath(%q).IsValid() = %v, want %v", tt.value, valid, tt.want)
			continue
		}
		if !valid {
			if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidFilesystemPath) {
				t.Errorf("FilesystemPath(%q) errors = %v, want ErrInvalidFilesystemPath", tt.value, errs)
			}
		}
	}
}

func TestFilesystemPathSlash(t *testing.T) {
	t.Parallel()

	if got := FilesystemPath("contracts/token").Slash(); got != "contracts/token" {
		t.Errorf("Slash() = %q, want %q", got, "contracts/token")
	}
}
