// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestDescriptionTextIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value DescriptionText
		want  bool
	}{
		{"empty", "", true},
		{"single line", "Secure smart contract library", true},
		{"whitespace only", " \t ", false},
		{"multi line", "first\nsecond", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.value.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v, want %v", valid, tt.want)
			}
			if !valid && !errors.Is(errs[0], ErrInvalidDescriptionText) {
				t.Errorf("error = %v, want ErrInvalidDescriptionText", errs[0])
			}
		})
	}
}
