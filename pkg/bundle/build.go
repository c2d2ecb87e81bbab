// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/contractpack/contractpack/pkg/fspath"
	"github.com/contractpack/contractpack/pkg/manifest"
	"github.com/contractpack/contractpack/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// BuildOptions configures Build.
	BuildOptions struct {
		Manifest *manifest.Manifest
		// BaseDir resolves relative manifest paths. Defaults to the working
		// directory.
		BaseDir types.FilesystemPath
		// OutputDir receives the archive. Defaults to the working directory.
		OutputDir types.FilesystemPath
		Overwrite bool
		Logger    *log.Logger
	}

	// BuildResult describes a written archive.
	BuildResult struct {
		ArchivePath types.FilesystemPath
		// Manifest is the copy stored inside the archive, with paths
		// relative to the archive's top-level directory.
		Manifest *manifest.Manifest
	}
)

// Build writes the archive for opts.Manifest. The archive is assembled in
// a temporary file next to its final location and renamed into place, so a
// failed or cancelled build never leaves a partial archive behind.
func Build(ctx context.Context, opts BuildOptions) (result *BuildResult, err error) {
	if opts.Manifest == nil {
		return nil, ErrNoManifest
	}
	if err = opts.Manifest.Metadata.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	outputDir, err := absOrWorkdir(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	baseDir, err := absOrWorkdir(opts.BaseDir)
	if err != nil {
		return nil, err
	}

	top := opts.Manifest.Metadata.ArchiveName()
	archivePath := fspath.JoinStr(outputDir, top+".zip")
	if _, statErr := os.Stat(string(archivePath)); statErr == nil && !opts.Overwrite {
		return nil, &ExistsError{Path: archivePath, Kind: ErrArchiveExists}
	}

	if err = os.MkdirAll(string(outputDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(string(outputDir), "."+top+"-*.zip.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath) // Best-effort cleanup of the partial archive
		}
	}()

	packed := relocate(opts.Manifest)
	if err = writeArchive(ctx, tmp, top, opts.Manifest, packed, baseDir, logger); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err = os.Rename(tmpPath, string(archivePath)); err != nil {
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}

	logger.Debug("archive written", "path", archivePath, "files", packed.FileCount())
	return &BuildResult{ArchivePath: archivePath, Manifest: packed}, nil
}

func writeArchive(ctx context.Context, w io.Writer, top string, src, packed *manifest.Manifest, baseDir types.FilesystemPath, logger *log.Logger) (err error) {
	zw := zip.NewWriter(w)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to finish archive: %w", closeErr)
		}
	}()

	manifestEntry := top + "/" + manifest.FileName
	prefix, _ := archiveLayout(src.Root)
	for _, dir := range src.Dirs() {
		for _, file := range src.DataFiles[dir] {
			if top+"/"+trimPrefix(file, prefix) == manifestEntry {
				return &ReservedEntryError{Path: file}
			}
		}
	}

	var manifestBuf bytes.Buffer
	if err = packed.Encode(&manifestBuf, manifest.FormatTOML); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	header := &zip.FileHeader{Name: manifestEntry, Method: zip.Deflate}
	header.SetMode(0o644)
	mw, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	if _, err = mw.Write(manifestBuf.Bytes()); err != nil {
		return fmt.Errorf("failed to write manifest entry: %w", err)
	}

	for _, dir := range src.Dirs() {
		// Directories are recorded so that empty ones survive installation.
		if packedDir := trimPrefix(dir, prefix); packedDir != "." {
			if _, err = zw.Create(top + "/" + packedDir + "/"); err != nil {
				return fmt.Errorf("failed to create directory entry: %w", err)
			}
		}
		for _, file := range src.DataFiles[dir] {
			if err = ctx.Err(); err != nil {
				return err
			}
			entry := top + "/" + trimPrefix(file, prefix)
			if err = addFile(zw, diskPath(baseDir, file), entry); err != nil {
				return err
			}
			logger.Debug("added file", "entry", entry)
		}
	}
	return nil
}

func addFile(zw *zip.Writer, src types.FilesystemPath, entry string) (err error) {
	f, err := os.Open(string(src))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("failed to read %s: %w", src, fs.ErrInvalid)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = entry
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err = io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", entry, err)
	}
	return nil
}

// relocate returns a copy of m whose paths are relative to the parent of
// its root, which is how they are laid out inside the archive. Roots that
// end in "." or ".." are re-rooted at ".".
func relocate(m *manifest.Manifest) *manifest.Manifest {
	prefix, root := archiveLayout(m.Root)

	out := &manifest.Manifest{
		Metadata:  m.Metadata,
		Root:      root,
		DataFiles: make(map[string][]string, len(m.DataFiles)),
	}
	for dir, files := range m.DataFiles {
		moved := make([]string, len(files))
		for i, f := range files {
			moved[i] = trimPrefix(f, prefix)
		}
		out.DataFiles[trimPrefix(dir, prefix)] = moved
	}
	return out
}

// archiveLayout returns the prefix stripped from manifest paths and the
// root as seen inside the archive.
func archiveLayout(root string) (prefix, archiveRoot string) {
	prefix, archiveRoot = path.Dir(root), path.Base(root)
	if archiveRoot == "." || archiveRoot == ".." {
		return root, "."
	}
	return prefix, archiveRoot
}

func trimPrefix(p, prefix string) string {
	if prefix == "." {
		return p
	}
	if p == prefix {
		return "."
	}
	return strings.TrimPrefix(p, strings.TrimSuffix(prefix, "/")+"/")
}

func diskPath(baseDir types.FilesystemPath, slashPath string) types.FilesystemPath {
	p := fspath.FromSlash(slashPath)
	if fspath.IsAbs(p) {
		return p
	}
	return fspath.Join(baseDir, p)
}

func absOrWorkdir(p types.FilesystemPath) (types.FilesystemPath, error) {
	if p == "" {
		p = "."
	}
	if valid, errs := p.IsValid(); !valid {
		return "", errors.Join(errs...)
	}
	return fspath.Abs(p)
}
