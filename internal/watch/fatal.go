// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"

	"github.com/fsnotify/fsnotify"
)

// rescanPath is reported when events were lost and the whole root must be
// collected again.
const rescanPath = "."

func isFatalFsnotifyError(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// isOverflow reports whether the kernel dropped events.
func isOverflow(err error) bool {
	return errors.Is(err, fsnotify.ErrEventOverflow)
}
