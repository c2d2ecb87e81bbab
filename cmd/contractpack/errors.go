// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"io/fs"

	"github.com/contractpack/contractpack/internal/config"
	"github.com/contractpack/contractpack/internal/issue"
	"github.com/contractpack/contractpack/internal/watch"
	"github.com/contractpack/contractpack/pkg/bundle"
	"github.com/contractpack/contractpack/pkg/collect"
	"github.com/contractpack/contractpack/pkg/manifest"
)

// classify maps an error to the catalog entry that explains it, or 0 when
// none applies. Errors that already name an issue win.
func classify(err error) issue.Id {
	if err == nil {
		return 0
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.IssueId != 0 {
		return ae.IssueId
	}

	switch {
	case errors.Is(err, bundle.ErrArchiveExists):
		return issue.ArchiveExistsId
	case errors.Is(err, bundle.ErrAlreadyInstalled):
		return issue.AlreadyInstalledId
	case errors.Is(err, bundle.ErrInvalidArchive), errors.Is(err, bundle.ErrUnsafeEntry):
		return issue.InvalidArchiveId
	case errors.Is(err, manifest.ErrInvalidMetadata):
		return issue.InvalidMetadataId
	case errors.Is(err, collect.ErrInvalidPattern), errors.Is(err, config.ErrInvalidPattern):
		return issue.InvalidPatternId
	case errors.Is(err, watch.ErrNotDir):
		return issue.RootNotFoundId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	}

	if errors.Is(err, fs.ErrPermission) {
		return issue.PermissionDeniedId
	}
	return 0
}
