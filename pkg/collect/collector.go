// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

const (
	// EmptyDirsOmit leaves directories without files out of the result.
	EmptyDirsOmit EmptyDirPolicy = "omit"
	// EmptyDirsInclude records directories without files with an empty list.
	EmptyDirsInclude EmptyDirPolicy = "include"
)

var (
	// ErrInvalidPattern is returned by New for a malformed glob pattern.
	ErrInvalidPattern = errors.New("invalid glob pattern")
	// ErrInvalidEmptyDirPolicy is returned by New for an unknown EmptyDirPolicy.
	ErrInvalidEmptyDirPolicy = errors.New("invalid empty directory policy")
)

type (
	// DataFiles maps a directory path to the paths of the files it directly
	// contains, in name order.
	DataFiles map[string][]string

	// EmptyDirPolicy decides whether directories without files are recorded.
	EmptyDirPolicy string

	// Options configures a Collector. The zero value collects every file from
	// the host file system and omits empty directories.
	Options struct {
		// Lister enumerates directories. Nil means OSLister.
		Lister Lister
		// Include restricts recorded files to those whose root-relative,
		// slash-separated path matches one of these doublestar patterns.
		// Empty means every file.
		Include []string
		// Exclude drops files and whole directories whose root-relative path
		// matches one of these doublestar patterns.
		Exclude []string
		// EmptyDirs is the policy for directories without files. Empty means omit.
		EmptyDirs EmptyDirPolicy
		// Logger receives debug output about skipped entries. Nil discards it.
		Logger *log.Logger
	}

	// Collector walks directory trees into DataFiles.
	Collector struct {
		lister    Lister
		include   []string
		exclude   []string
		emptyDirs EmptyDirPolicy
		logger    *log.Logger
	}

	// WalkError reports the directory whose listing aborted a collection.
	WalkError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *WalkError) Error() string {
	return fmt.Sprintf("collect %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying listing error.
func (e *WalkError) Unwrap() error { return e.Err }

// IsValid reports whether p is a known policy. The empty value is valid and means omit.
func (p EmptyDirPolicy) IsValid() bool {
	switch p {
	case "", EmptyDirsOmit, EmptyDirsInclude:
		return true
	default:
		return false
	}
}

// Dirs returns the directory keys in sorted order.
func (d DataFiles) Dirs() []string {
	dirs := make([]string, 0, len(d))
	for dir := range d {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// FileCount returns the number of file paths across all directories.
func (d DataFiles) FileCount() int {
	n := 0
	for _, files := range d {
		n += len(files)
	}
	return n
}

// Equal reports whether d and other hold the same keys with the same
// sequences in the same order.
func (d DataFiles) Equal(other DataFiles) bool {
	if len(d) != len(other) {
		return false
	}
	for dir, files := range d {
		otherFiles, ok := other[dir]
		if !ok || !slices.Equal(files, otherFiles) {
			return false
		}
	}
	return true
}

// New builds a Collector, validating patterns and the empty directory policy.
func New(opts Options) (*Collector, error) {
	if !opts.EmptyDirs.IsValid() {
		return nil, fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidEmptyDirPolicy, opts.EmptyDirs, EmptyDirsOmit, EmptyDirsInclude)
	}
	for _, pat := range slices.Concat(opts.Include, opts.Exclude) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pat)
		}
	}

	c := &Collector{
		lister:    opts.Lister,
		include:   slices.Clone(opts.Include),
		exclude:   slices.Clone(opts.Exclude),
		emptyDirs: opts.EmptyDirs,
		logger:    opts.Logger,
	}
	if c.lister == nil {
		c.lister = OSLister{}
	}
	if c.emptyDirs == "" {
		c.emptyDirs = EmptyDirsOmit
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// Collect walks the host file system under root with default options.
func Collect(root string) (DataFiles, error) {
	c, err := New(Options{})
	if err != nil {
		return nil, err
	}
	return c.Collect(root)
}

// Collect walks root breadth-first and returns the files of every
// directory keyed by that directory's path. root is cleaned first; every
// key and file path is root joined with the names found below it.
func (c *Collector) Collect(root string) (DataFiles, error) {
	root = filepath.Clean(root)
	result := make(DataFiles)
	queue := []string{root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		dirs, files, err := c.lister.ListEntries(dir)
		if err != nil {
			switch {
			case dir == root && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNotDir)):
				c.logger.Debug("nothing to collect", "root", root, "reason", err)
				return result, nil
			case dir == root:
				c.logger.Warn("root is unreadable, nothing collected", "root", root, "err", err)
				return result, nil
			case dir != root && errors.Is(err, fs.ErrNotExist):
				// removed while the walk was running
				c.logger.Debug("directory vanished", "dir", dir)
				continue
			default:
				return nil, &WalkError{Path: dir, Err: err}
			}
		}

		rel := relPath(root, dir)
		var paths []string
		for _, name := range files {
			fileRel := joinRel(rel, name)
			if !c.keepFile(fileRel) {
				c.logger.Debug("file filtered", "path", fileRel)
				continue
			}
			paths = append(paths, filepath.Join(dir, name))
		}

		switch {
		case len(paths) > 0:
			result[dir] = paths
		case c.emptyDirs == EmptyDirsInclude:
			result[dir] = []string{}
		}

		for _, name := range dirs {
			if c.matchesAny(c.exclude, joinRel(rel, name)) {
				c.logger.Debug("directory excluded", "path", joinRel(rel, name))
				continue
			}
			queue = append(queue, filepath.Join(dir, name))
		}
	}

	return result, nil
}

func (c *Collector) keepFile(rel string) bool {
	if c.matchesAny(c.exclude, rel) {
		return false
	}
	return len(c.include) == 0 || c.matchesAny(c.include, rel)
}

func (c *Collector) matchesAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// relPath returns dir relative to root in slash form; the root itself is "".
func relPath(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}
