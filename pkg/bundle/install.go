// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/contractpack/contractpack/pkg/fspath"
	"github.com/contractpack/contractpack/pkg/manifest"
	"github.com/contractpack/contractpack/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// InstallOptions configures Install.
	InstallOptions struct {
		// Source is a local archive path or an http(s) URL.
		Source string
		// DestDir receives the package directory. Defaults to the working
		// directory.
		DestDir   types.FilesystemPath
		Overwrite bool
		Logger    *log.Logger
		// HTTPClient downloads remote sources. Defaults to http.DefaultClient.
		HTTPClient *http.Client
	}

	// InstallResult describes an installed package.
	InstallResult struct {
		// Dir is the package directory, <DestDir>/<name>-<version>.
		Dir      types.FilesystemPath
		Manifest *manifest.Manifest
	}
)

// Install extracts an archive written by Build into opts.DestDir. Entries
// are extracted into a staging directory that is renamed into place only
// after the embedded manifest has been read and every file it lists was
// found, so a rejected archive leaves nothing behind.
func Install(ctx context.Context, opts InstallOptions) (result *InstallResult, err error) {
	if strings.TrimSpace(opts.Source) == "" {
		return nil, fmt.Errorf("source cannot be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	destDir, err := absOrWorkdir(opts.DestDir)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(string(destDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	archivePath := types.FilesystemPath(opts.Source)
	if isURL(opts.Source) {
		var tmpFile types.FilesystemPath
		tmpFile, err = download(ctx, opts.HTTPClient, opts.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to download package: %w", err)
		}
		defer func() { _ = os.Remove(string(tmpFile)) }() // Best-effort cleanup of temp file
		archivePath = tmpFile
	}

	zr, err := zip.OpenReader(string(archivePath))
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = zr.Close()
		return nil, &UnsafeEntryError{Entry: opts.Source}
	}
	if err != nil {
		return nil, &InvalidArchiveError{Archive: types.FilesystemPath(opts.Source), Reason: err.Error()}
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	top, err := topLevelDir(zr.File)
	if err != nil {
		return nil, &InvalidArchiveError{Archive: types.FilesystemPath(opts.Source), Reason: err.Error()}
	}

	pkgDir := fspath.JoinStr(destDir, top)
	if !fspath.Within(destDir, pkgDir) || pkgDir == destDir {
		return nil, &UnsafeEntryError{Entry: top}
	}
	if _, statErr := os.Stat(string(pkgDir)); statErr == nil && !opts.Overwrite {
		return nil, &ExistsError{Path: pkgDir, Kind: ErrAlreadyInstalled}
	}

	staging, err := os.MkdirTemp(string(destDir), "."+top+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }() // No-op once renamed into place

	extracted := make(map[string]bool, len(zr.File))
	for _, file := range zr.File {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(file.Name, top), "/")
		if rel == "" {
			continue
		}
		destPath := fspath.JoinStr(types.FilesystemPath(staging), fspath.FromSlash(rel).String())
		if !fspath.Within(types.FilesystemPath(staging), destPath) {
			return nil, &UnsafeEntryError{Entry: file.Name}
		}

		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(string(destPath), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}
		if err = os.MkdirAll(string(fspath.Dir(destPath)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err = extractFile(file, destPath); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
		extracted[path.Clean(rel)] = true
		logger.Debug("extracted", "entry", file.Name)
	}

	m, err := readInstalledManifest(types.FilesystemPath(staging))
	if err != nil {
		return nil, &InvalidArchiveError{Archive: types.FilesystemPath(opts.Source), Reason: err.Error()}
	}
	if reason := verify(m, top, extracted); reason != "" {
		return nil, &InvalidArchiveError{Archive: types.FilesystemPath(opts.Source), Reason: reason}
	}

	if opts.Overwrite {
		if err = os.RemoveAll(string(pkgDir)); err != nil {
			return nil, fmt.Errorf("failed to remove existing package: %w", err)
		}
	}
	if err = os.Rename(staging, string(pkgDir)); err != nil {
		return nil, fmt.Errorf("failed to move package into place: %w", err)
	}

	logger.Debug("package installed", "dir", pkgDir, "files", m.FileCount())
	return &InstallResult{Dir: pkgDir, Manifest: m}, nil
}

// topLevelDir returns the single directory every entry lives under and
// checks that it carries a manifest.
func topLevelDir(files []*zip.File) (string, error) {
	var top string
	hasManifest := false
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		name := f.Name
		if _, dup := seen[name]; dup {
			return "", fmt.Errorf("duplicate entry %s", name)
		}
		seen[name] = struct{}{}
		if strings.Contains(name, `\`) || path.IsAbs(name) {
			return "", &UnsafeEntryError{Entry: name}
		}
		first, rest, _ := strings.Cut(name, "/")
		if first == "" || first == "." || first == ".." {
			return "", &UnsafeEntryError{Entry: name}
		}
		if top == "" {
			top = first
		} else if first != top {
			return "", fmt.Errorf("entries span several top-level directories (%s, %s)", top, first)
		}
		if rest == manifest.FileName {
			hasManifest = true
		}
	}
	if top == "" {
		return "", fmt.Errorf("archive is empty")
	}
	if !hasManifest {
		return "", fmt.Errorf("%s/%s not found", top, manifest.FileName)
	}
	return top, nil
}

func readInstalledManifest(dir types.FilesystemPath) (m *manifest.Manifest, err error) {
	f, err := os.Open(string(fspath.JoinStr(dir, manifest.FileName)))
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return manifest.Decode(f, manifest.FormatTOML)
}

// verify checks the decoded manifest against the archive it came from and
// returns a non-empty reason when they disagree.
func verify(m *manifest.Manifest, top string, extracted map[string]bool) string {
	if err := m.Metadata.Validate(); err != nil {
		return err.Error()
	}
	if want := m.Metadata.ArchiveName(); want != top {
		return fmt.Sprintf("top-level directory %s does not match package %s", top, want)
	}
	if result := m.Check(true); !result.Valid() {
		return result.Errors()[0].Error()
	}
	for _, f := range m.Files() {
		if !extracted[path.Clean(f)] {
			return fmt.Sprintf("%s is listed in the manifest but missing from the archive", f)
		}
	}
	return ""
}

func extractFile(file *zip.File, destPath types.FilesystemPath) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	destFile, err := os.OpenFile(string(destPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: archives come from a source the user chose to install
	_, err = io.Copy(destFile, rc)
	return err
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// download fetches url into a temporary file and returns its path.
func download(ctx context.Context, client *http.Client, url string) (tmpPath types.FilesystemPath, err error) {
	if client == nil {
		client = http.DefaultClient
	}
	tmpFile, err := os.CreateTemp("", "contractpack-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath = types.FilesystemPath(tmpFile.Name())
	defer func() {
		if err != nil {
			_ = os.Remove(string(tmpPath)) // Best-effort cleanup
		}
	}()
	defer func() {
		if closeErr := tmpFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req) //nolint:gosec // URL supplied by the user
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status: %s", resp.Status)
	}
	if _, err = io.Copy(tmpFile, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save downloaded file: %w", err)
	}
	return tmpPath, nil
}
