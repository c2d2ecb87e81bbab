// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// Tree describes a fixture directory tree. Keys are slash-separated paths
// relative to the tree base. A key ending in "/" creates an empty
// directory; any other key creates a file holding the value.
type Tree map[string]string

// WriteTree materializes tree under base on the host file system.
func WriteTree(t testing.TB, base string, tree Tree) {
	t.Helper()
	for rel, content := range tree {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			MustMkdirAll(t, path, 0o755)
			continue
		}
		MustMkdirAll(t, filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// MemTree materializes tree under base in a new in-memory file system.
func MemTree(t testing.TB, base string, tree Tree) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for rel, content := range tree {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := fs.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("failed to create directory %s: %v", path, err)
			}
			continue
		}
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return fs
}
