// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"testing"

	"github.com/contractpack/contractpack/pkg/types"
)

func validMetadata() Metadata {
	return Metadata{
		Name:        "openzeppelin-contracts",
		Version:     "5.1.0",
		Description: "Secure smart contract library",
		Author:      "OpenZeppelin",
		License:     "MIT",
	}
}

func TestMetadata_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Metadata)
		wantErr []error
	}{
		{"valid", func(*Metadata) {}, nil},
		{"version with v prefix", func(m *Metadata) { m.Version = "v5.1.0" }, nil},
		{"prerelease", func(m *Metadata) { m.Version = "5.1.0-rc.1" }, nil},
		{"build metadata", func(m *Metadata) { m.Version = "5.1.0+build.7" }, nil},
		{"missing name", func(m *Metadata) { m.Name = "" }, []error{ErrMissingField}},
		{"bad name", func(m *Metadata) { m.Name = "1contracts" }, []error{ErrInvalidName}},
		{"name with space", func(m *Metadata) { m.Name = "my contracts" }, []error{ErrInvalidName}},
		{"missing version", func(m *Metadata) { m.Version = " " }, []error{ErrMissingField}},
		{"short version", func(m *Metadata) { m.Version = "5.1" }, []error{ErrInvalidVersion}},
		{"garbage version", func(m *Metadata) { m.Version = "latest" }, []error{ErrInvalidVersion}},
		{"missing author", func(m *Metadata) { m.Author = "" }, []error{ErrMissingField}},
		{"multi-line description", func(m *Metadata) { m.Description = "a\nb" }, []error{types.ErrInvalidDescriptionText}},
		{
			"several problems",
			func(m *Metadata) {
				m.Name = ""
				m.Version = "x"
				m.Author = ""
			},
			[]error{ErrMissingField, ErrInvalidVersion},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := validMetadata()
			tt.mutate(&m)
			err := m.Validate()

			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidMetadata) {
				t.Fatalf("Validate() = %v, want ErrInvalidMetadata", err)
			}
			var metaErr *InvalidMetadataError
			if !errors.As(err, &metaErr) {
				t.Fatalf("Validate() error type = %T, want *InvalidMetadataError", err)
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("Validate() = %v, want wrapped %v", err, want)
				}
			}
		})
	}
}

func TestMetadata_ArchiveName(t *testing.T) {
	t.Parallel()

	m := validMetadata()
	if got := m.ArchiveName(); got != "openzeppelin-contracts-5.1.0" {
		t.Errorf("ArchiveName() = %q", got)
	}
	m.Version = "v5.1.0"
	if got := m.ArchiveName(); got != "openzeppelin-contracts-5.1.0" {
		t.Errorf("ArchiveName() with v prefix = %q", got)
	}
}

func TestIsSemVer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"1.0.0", true},
		{"v1.0.0", true},
		{"0.0.1-alpha", true},
		{"1.2.3+meta", true},
		{"1.2", false},
		{"1", false},
		{"", false},
		{"01.2.3", false},
		{"vv1.2.3", false},
	}
	for _, tt := range tests {
		if got := IsSemVer(tt.in); got != tt.want {
			t.Errorf("IsSemVer(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
