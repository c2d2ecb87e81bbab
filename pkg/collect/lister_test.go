// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/contractpack/contractpack/internal/testutil"
)

func TestListers(t *testing.T) {
	t.Parallel()

	tree := testutil.Tree{
		"b.sol":     "",
		"a.sol":     "",
		"token/":    "",
		"access/":   "",
		"notes.txt": "",
	}
	base := t.TempDir()
	testutil.WriteTree(t, base, tree)

	listers := map[string]struct {
		lister Lister
		dir    string
	}{
		"os":    {OSLister{}, base},
		"afero": {FsLister{Fs: testutil.MemTree(t, "contracts", tree)}, "contracts"},
	}

	for name, tc := range listers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dirs, files, err := tc.lister.ListEntries(tc.dir)
			if err != nil {
				t.Fatalf("ListEntries() error = %v", err)
			}
			if want := []string{"access", "token"}; !reflect.DeepEqual(dirs, want) {
				t.Errorf("dirs = %v, want %v", dirs, want)
			}
			if want := []string{"a.sol", "b.sol", "notes.txt"}; !reflect.DeepEqual(files, want) {
				t.Errorf("files = %v, want %v", files, want)
			}

			if _, _, err := tc.lister.ListEntries(filepath.Join(tc.dir, "missing")); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("missing dir error = %v, want fs.ErrNotExist", err)
			}
			if _, _, err := tc.lister.ListEntries(filepath.Join(tc.dir, "a.sol")); !errors.Is(err, ErrNotDir) {
				t.Errorf("file error = %v, want ErrNotDir", err)
			}
		})
	}
}
