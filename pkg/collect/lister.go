// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// ErrNotDir is returned by a Lister when the listed path exists but is not a directory.
var ErrNotDir = errors.New("not a directory")

type (
	// Lister lists the immediate children of a directory. Names, not paths,
	// are returned, each slice sorted. Symbolic links to directories are
	// left out of both slices; every other link counts as a file.
	//
	// Implementations return an error wrapping fs.ErrNotExist when path is
	// missing and ErrNotDir when it is not a directory.
	Lister interface {
		ListEntries(path string) (dirs []string, files []string, err error)
	}

	// OSLister lists directories on the host file system.
	OSLister struct{}

	// FsLister lists directories on an afero file system.
	FsLister struct {
		Fs afero.Fs
	}
)

// ListEntries implements Lister using os.ReadDir.
func (OSLister) ListEntries(path string) (dirs, files []string, err error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return nil, nil, fmt.Errorf("%s: %w", path, ErrNotDir)
		}
		return nil, nil, err
	}

	for _, e := range entries {
		switch {
		case e.IsDir():
			dirs = append(dirs, e.Name())
		case e.Type()&fs.ModeSymlink != 0:
			if info, statErr := os.Stat(filepath.Join(path, e.Name())); statErr == nil && info.IsDir() {
				continue
			}
			files = append(files, e.Name())
		default:
			files = append(files, e.Name())
		}
	}
	return dirs, files, nil
}

// ListEntries implements Lister using afero.ReadDir.
func (l FsLister) ListEntries(path string) (dirs, files []string, err error) {
	infos, err := afero.ReadDir(l.Fs, path)
	if err != nil {
		if info, statErr := l.Fs.Stat(path); statErr == nil && !info.IsDir() {
			return nil, nil, fmt.Errorf("%s: %w", path, ErrNotDir)
		}
		return nil, nil, err
	}

	for _, info := range infos {
		switch {
		case info.IsDir():
			dirs = append(dirs, info.Name())
		case info.Mode()&fs.ModeSymlink != 0:
			if target, statErr := l.Fs.Stat(filepath.Join(path, info.Name())); statErr == nil && target.IsDir() {
				continue
			}
			files = append(files, info.Name())
		default:
			files = append(files, info.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return dirs, files, nil
}
