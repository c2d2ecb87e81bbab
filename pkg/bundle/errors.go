// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"

	"github.com/contractpack/contractpack/pkg/types"
)

var (
	// ErrArchiveExists is returned by Build when the output archive exists
	// and overwriting was not requested.
	ErrArchiveExists = errors.New("archive already exists")
	// ErrAlreadyInstalled is returned by Install when the package directory
	// exists and overwriting was not requested.
	ErrAlreadyInstalled = errors.New("package already installed")
	// ErrInvalidArchive is returned for archives that were not produced by Build.
	ErrInvalidArchive = errors.New("invalid package archive")
	// ErrUnsafeEntry is returned for archive entries that would be written
	// outside the destination directory.
	ErrUnsafeEntry = errors.New("archive entry escapes destination")
	// ErrNoManifest is returned by Build when called without a manifest.
	ErrNoManifest = errors.New("no manifest given")
	// ErrReservedEntry is returned by Build when a listed file would take the
	// archive path reserved for the generated manifest.
	ErrReservedEntry = errors.New("file name is reserved for the package manifest")
)

type (
	// ExistsError reports an output path that is already taken.
	ExistsError struct {
		Path types.FilesystemPath
		// Kind is ErrArchiveExists or ErrAlreadyInstalled.
		Kind error
	}

	// InvalidArchiveError explains why an archive was rejected.
	InvalidArchiveError struct {
		Archive types.FilesystemPath
		Reason  string
	}

	// UnsafeEntryError names the offending archive entry.
	UnsafeEntryError struct {
		Entry string
	}

	// ReservedEntryError names the file that collides with the manifest entry.
	ReservedEntryError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *ExistsError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Path)
}

// Unwrap returns the kind sentinel for errors.Is() compatibility.
func (e *ExistsError) Unwrap() error { return e.Kind }

// Error implements the error interface.
func (e *InvalidArchiveError) Error() string {
	return fmt.Sprintf("invalid package archive %s: %s", e.Archive, e.Reason)
}

// Unwrap returns ErrInvalidArchive for errors.Is() compatibility.
func (e *InvalidArchiveError) Unwrap() error { return ErrInvalidArchive }

// Error implements the error interface.
func (e *UnsafeEntryError) Error() string {
	return fmt.Sprintf("archive entry %q escapes destination", e.Entry)
}

// Unwrap returns ErrUnsafeEntry for errors.Is() compatibility.
func (e *UnsafeEntryError) Unwrap() error { return ErrUnsafeEntry }

// Error implements the error interface.
func (e *ReservedEntryError) Error() string {
	return fmt.Sprintf("cannot package %s: %v", e.Path, ErrReservedEntry)
}

// Unwrap returns ErrReservedEntry for errors.Is() compatibility.
func (e *ReservedEntryError) Unwrap() error { return ErrReservedEntry }
