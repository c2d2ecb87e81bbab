// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantLevel log.Level
		wantDebug bool
	}{
		{name: "default is info", verbose: false, wantLevel: log.InfoLevel, wantDebug: false},
		{name: "verbose is debug", verbose: true, wantLevel: log.DebugLevel, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tt.verbose)
			if got := logger.GetLevel(); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}

			logger.Debug("skipping symlink", "path", "contracts/link")
			logger.Info("collected", "files", 3)

			out := buf.String()
			if !strings.Contains(out, Prefix) {
				t.Errorf("output %q missing prefix %q", out, Prefix)
			}
			if !strings.Contains(out, "collected") {
				t.Errorf("output %q missing info line", out)
			}
			if got := strings.Contains(out, "skipping symlink"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	// Must not panic or write anywhere observable.
	Discard().Error("dropped", "err", "boom")
}
