// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	for _, errno := range fatalErrnos {
		if !isFatalFsnotifyError(errno) {
			t.Errorf("isFatalFsnotifyError(%v) = false, want true", errno)
		}
		wrapped := fmt.Errorf("fsnotify: %w", os.NewSyscallError("watch", errno))
		if !isFatalFsnotifyError(wrapped) {
			t.Errorf("isFatalFsnotifyError(%v) = false, want true", wrapped)
		}
	}

	for _, err := range []error{
		errors.New("something went wrong"),
		fsnotify.ErrEventOverflow,
		os.ErrPermission,
	} {
		if isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = true, want false", err)
		}
	}
}

func TestIsOverflow(t *testing.T) {
	t.Parallel()

	if !isOverflow(fmt.Errorf("inotify: %w", fsnotify.ErrEventOverflow)) {
		t.Error("wrapped overflow not recognized")
	}
	if isOverflow(errors.New("queue full")) {
		t.Error("unrelated error reported as overflow")
	}
}
