// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"path/filepath"
	"slices"
	"sort"

	"github.com/contractpack/contractpack/pkg/collect"
)

// FileName is the name of the manifest stored at the top of an archive.
const FileName = "contractpack.toml"

// Manifest lists the files of a package grouped by destination directory.
type Manifest struct {
	Metadata  Metadata            `json:"package" toml:"package"`
	Root      string              `json:"root" toml:"root"`
	DataFiles map[string][]string `json:"data_files" toml:"data_files"`
}

// New builds a Manifest from collected files, converting every path to
// slash form. files is not retained.
func New(meta Metadata, root string, files collect.DataFiles) *Manifest {
	data := make(map[string][]string, len(files))
	for dir, paths := range files {
		slashed := make([]string, len(paths))
		for i, p := range paths {
			slashed[i] = filepath.ToSlash(p)
		}
		data[filepath.ToSlash(dir)] = slashed
	}
	return &Manifest{
		Metadata:  meta,
		Root:      filepath.ToSlash(filepath.Clean(root)),
		DataFiles: data,
	}
}

// Dirs returns the directory keys in sorted order.
func (m *Manifest) Dirs() []string {
	return collect.DataFiles(m.DataFiles).Dirs()
}

// FileCount returns the number of files in the manifest.
func (m *Manifest) FileCount() int {
	return collect.DataFiles(m.DataFiles).FileCount()
}

// Files returns every file path, sorted.
func (m *Manifest) Files() []string {
	out := make([]string, 0, m.FileCount())
	for _, paths := range m.DataFiles {
		out = append(out, paths...)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both manifests describe the same package and files.
func (m *Manifest) Equal(other *Manifest) bool {
	if m.Metadata != other.Metadata || m.Root != other.Root || len(m.DataFiles) != len(other.DataFiles) {
		return false
	}
	for dir, paths := range m.DataFiles {
		otherPaths, ok := other.DataFiles[dir]
		if !ok || !slices.Equal(paths, otherPaths) {
			return false
		}
	}
	return true
}
