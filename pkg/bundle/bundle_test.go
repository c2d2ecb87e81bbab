// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/contractpack/contractpack/internal/testutil"
	"github.com/contractpack/contractpack/pkg/collect"
	"github.com/contractpack/contractpack/pkg/manifest"
	"github.com/contractpack/contractpack/pkg/types"
)

var sampleTree = testutil.Tree{
	"contracts/Ownable.sol":          "contract Ownable {}",
	"contracts/token/ERC20.sol":      "contract ERC20 {}",
	"contracts/token/IERC20.sol":     "interface IERC20 {}",
	"contracts/utils/math/Math.sol":  "library Math {}",
	"contracts/mocks/":               "",
	"contracts/interfaces/README.md": "# interfaces",
}

func testMetadata() manifest.Metadata {
	return manifest.Metadata{
		Name:    "openzeppelin-contracts",
		Version: "5.1.0",
		Author:  "OpenZeppelin",
	}
}

// buildManifest collects root (relative to base) and returns its manifest.
func buildManifest(t *testing.T, base, root string, policy collect.EmptyDirPolicy) *manifest.Manifest {
	t.Helper()
	c, err := collect.New(collect.Options{EmptyDirs: policy})
	if err != nil {
		t.Fatalf("collect.New() error: %v", err)
	}
	files, err := c.Collect(filepath.Join(base, root))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	// Rebuild keys relative to base so the manifest matches a run from base.
	rel := collect.DataFiles{}
	for dir, paths := range files {
		relDir, _ := filepath.Rel(base, dir)
		relPaths := make([]string, len(paths))
		for i, p := range paths {
			relPaths[i], _ = filepath.Rel(base, p)
		}
		rel[relDir] = relPaths
	}
	return manifest.New(testMetadata(), root, rel)
}

func TestBuildInstall_RoundTrip(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	m := buildManifest(t, base, "contracts", collect.EmptyDirsOmit)

	out := t.TempDir()
	built, err := Build(context.Background(), BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(out)})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	wantArchive := filepath.Join(out, "openzeppelin-contracts-5.1.0.zip")
	if string(built.ArchivePath) != wantArchive {
		t.Errorf("ArchivePath = %q, want %q", built.ArchivePath, wantArchive)
	}
	if !built.Manifest.Equal(m) {
		t.Errorf("packed manifest differs for a relative root:\n%+v\n%+v", built.Manifest, m)
	}

	dest := t.TempDir()
	installed, err := Install(context.Background(), InstallOptions{Source: wantArchive, DestDir: types.FilesystemPath(dest)})
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	wantDir := filepath.Join(dest, "openzeppelin-contracts-5.1.0")
	if string(installed.Dir) != wantDir {
		t.Errorf("Dir = %q, want %q", installed.Dir, wantDir)
	}
	if !installed.Manifest.Equal(m) {
		t.Errorf("installed manifest = %+v, want %+v", installed.Manifest, m)
	}

	for rel, content := range sampleTree {
		if content == "" {
			continue
		}
		got, readErr := os.ReadFile(filepath.Join(wantDir, filepath.FromSlash(rel)))
		if readErr != nil {
			t.Errorf("installed file %s: %v", rel, readErr)
			continue
		}
		if string(got) != content {
			t.Errorf("installed %s = %q, want %q", rel, got, content)
		}
	}
	if _, statErr := os.Stat(filepath.Join(wantDir, manifest.FileName)); statErr != nil {
		t.Errorf("manifest not installed: %v", statErr)
	}
}

func TestBuild_EmptyDirsSurviveInstall(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	m := buildManifest(t, base, "contracts", collect.EmptyDirsInclude)
	if _, ok := m.DataFiles["contracts/mocks"]; !ok {
		t.Fatal("fixture: include policy did not record contracts/mocks")
	}

	built, err := Build(context.Background(), BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	dest := t.TempDir()
	installed, err := Install(context.Background(), InstallOptions{Source: string(built.ArchivePath), DestDir: types.FilesystemPath(dest)})
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	info, err := os.Stat(filepath.Join(string(installed.Dir), "contracts", "mocks"))
	if err != nil || !info.IsDir() {
		t.Errorf("empty directory not installed: %v", err)
	}
}

func TestBuild_AbsoluteRootIsRelocated(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	root := filepath.Join(base, "contracts")
	files, err := collect.Collect(root)
	if err != nil {
		t.Fatal(err)
	}
	m := manifest.New(testMetadata(), root, files)

	built, err := Build(context.Background(), BuildOptions{Manifest: m, OutputDir: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if built.Manifest.Root != "contracts" {
		t.Errorf("packed Root = %q, want contracts", built.Manifest.Root)
	}
	wantDirs := []string{"contracts", "contracts/interfaces", "contracts/token", "contracts/utils/math"}
	if got := built.Manifest.Dirs(); !slices.Equal(got, wantDirs) {
		t.Errorf("packed Dirs() = %v, want %v", got, wantDirs)
	}

	zr, err := zip.OpenReader(string(built.ArchivePath))
	if err != nil {
		t.Fatal(err)
	}
	defer testutil.MustClose(t, zr)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	for _, want := range []string{
		"openzeppelin-contracts-5.1.0/contractpack.toml",
		"openzeppelin-contracts-5.1.0/contracts/token/ERC20.sol",
	} {
		if !slices.Contains(names, want) {
			t.Errorf("archive entries %v missing %q", names, want)
		}
	}
}

func TestBuild_ExistingArchive(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	m := buildManifest(t, base, "contracts", collect.EmptyDirsOmit)
	out := t.TempDir()
	opts := BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(out)}

	if _, err := Build(context.Background(), opts); err != nil {
		t.Fatalf("first Build() error: %v", err)
	}
	_, err := Build(context.Background(), opts)
	if !errors.Is(err, ErrArchiveExists) {
		t.Fatalf("second Build() = %v, want ErrArchiveExists", err)
	}
	var existsErr *ExistsError
	if !errors.As(err, &existsErr) || existsErr.Path == "" {
		t.Errorf("second Build() error = %#v, want *ExistsError with path", err)
	}

	opts.Overwrite = true
	if _, err := Build(context.Background(), opts); err != nil {
		t.Errorf("Build() with Overwrite error: %v", err)
	}
}

func TestBuild_FailureLeavesNoArchive(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	m := buildManifest(t, base, "contracts", collect.EmptyDirsOmit)
	if err := os.Remove(filepath.Join(base, "contracts", "token", "ERC20.sol")); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	_, err := Build(context.Background(), BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(out)})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Build() = %v, want os.ErrNotExist", err)
	}
	assertEmptyDir(t, out)
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	m := buildManifest(t, base, "contracts", collect.EmptyDirsOmit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := t.TempDir()
	_, err := Build(ctx, BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(out)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() = %v, want context.Canceled", err)
	}
	assertEmptyDir(t, out)
}

func TestBuild_ManifestNameCollision(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	testutil.WriteTree(t, base, testutil.Tree{
		"Token.sol":         "contract Token {}",
		"contractpack.toml": "name = 'handwritten'",
	})
	m := buildManifest(t, base, ".", collect.EmptyDirsOmit)

	out := t.TempDir()
	_, err := Build(context.Background(), BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(out)})
	if !errors.Is(err, ErrReservedEntry) {
		t.Fatalf("Build() = %v, want ErrReservedEntry", err)
	}
	var reserved *ReservedEntryError
	if !errors.As(err, &reserved) || reserved.Path != "contractpack.toml" {
		t.Errorf("Build() = %#v, want *ReservedEntryError for contractpack.toml", err)
	}
	assertEmptyDir(t, out)
}

func TestBuild_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrNoManifest) {
		t.Errorf("Build(no manifest) = %v, want ErrNoManifest", err)
	}

	m := manifest.New(manifest.Metadata{Name: "x", Version: "latest", Author: "a"}, "contracts", collect.DataFiles{})
	if _, err := Build(context.Background(), BuildOptions{Manifest: m, OutputDir: types.FilesystemPath(t.TempDir())}); !errors.Is(err, manifest.ErrInvalidVersion) {
		t.Errorf("Build(bad version) = %v, want ErrInvalidVersion", err)
	}
}

func TestBuild_ZeroFiles(t *testing.T) {
	t.Parallel()

	m := manifest.New(testMetadata(), "contracts", collect.DataFiles{})
	built, err := Build(context.Background(), BuildOptions{Manifest: m, OutputDir: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("Build() of an empty package error: %v", err)
	}
	installed, err := Install(context.Background(), InstallOptions{Source: string(built.ArchivePath), DestDir: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("Install() of an empty package error: %v", err)
	}
	if installed.Manifest.FileCount() != 0 {
		t.Errorf("FileCount() = %d, want 0", installed.Manifest.FileCount())
	}
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	t.Parallel()

	archive := buildSample(t)
	dest := t.TempDir()
	opts := InstallOptions{Source: archive, DestDir: types.FilesystemPath(dest)}
	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("first Install() error: %v", err)
	}
	if _, err := Install(context.Background(), opts); !errors.Is(err, ErrAlreadyInstalled) {
		t.Fatalf("second Install() = %v, want ErrAlreadyInstalled", err)
	}

	stale := filepath.Join(dest, "openzeppelin-contracts-5.1.0", "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts.Overwrite = true
	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("Install() with Overwrite error: %v", err)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file survived overwrite: %v", err)
	}
}

func TestInstall_RejectsBadArchives(t *testing.T) {
	t.Parallel()

	const manifestTOML = `root = 'contracts'

[package]
name = 'pkg'
version = '1.0.0'
author = 'me'

[data_files]
contracts = ['contracts/A.sol']
`

	tests := []struct {
		name    string
		entries map[string]string
		wantErr error
	}{
		{
			name:    "zip slip",
			entries: map[string]string{"pkg-1.0.0/contractpack.toml": manifestTOML, "pkg-1.0.0/../../evil.sol": "x"},
			wantErr: ErrUnsafeEntry,
		},
		{
			name:    "absolute entry",
			entries: map[string]string{"/pkg-1.0.0/contractpack.toml": manifestTOML},
			wantErr: ErrUnsafeEntry,
		},
		{
			name:    "no manifest",
			entries: map[string]string{"pkg-1.0.0/contracts/A.sol": "x"},
			wantErr: ErrInvalidArchive,
		},
		{
			name:    "two top-level dirs",
			entries: map[string]string{"pkg-1.0.0/contractpack.toml": manifestTOML, "other/A.sol": "x"},
			wantErr: ErrInvalidArchive,
		},
		{
			name:    "listed file missing",
			entries: map[string]string{"pkg-1.0.0/contractpack.toml": manifestTOML},
			wantErr: ErrInvalidArchive,
		},
		{
			name:    "top dir does not match package",
			entries: map[string]string{"pkg-2.0.0/contractpack.toml": manifestTOML, "pkg-2.0.0/contracts/A.sol": "x"},
			wantErr: ErrInvalidArchive,
		},
		{
			name:    "empty archive",
			entries: map[string]string{},
			wantErr: ErrInvalidArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			archive := writeZip(t, tt.entries)
			dest := t.TempDir()
			_, err := Install(context.Background(), InstallOptions{Source: archive, DestDir: types.FilesystemPath(dest)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Install() = %v, want %v", err, tt.wantErr)
			}
			assertEmptyDir(t, dest)
		})
	}
}

func TestInstall_RejectsDuplicateEntries(t *testing.T) {
	t.Parallel()

	good := `root = 'contracts'

[package]
name = 'pkg'
version = '1.0.0'
author = 'me'

[data_files]
`
	archive := filepath.Join(t.TempDir(), "dup.zip")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, content := range []string{good, "name = 'shadowed'"} {
		w, createErr := zw.Create("pkg-1.0.0/contractpack.toml")
		if createErr != nil {
			t.Fatal(createErr)
		}
		if _, writeErr := w.Write([]byte(content)); writeErr != nil {
			t.Fatal(writeErr)
		}
	}
	testutil.MustClose(t, zw)
	testutil.MustClose(t, f)

	dest := t.TempDir()
	_, err = Install(context.Background(), InstallOptions{Source: archive, DestDir: types.FilesystemPath(dest)})
	if !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("Install() = %v, want ErrInvalidArchive", err)
	}
	assertEmptyDir(t, dest)
}

func TestInstall_NotAZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bogus.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Install(context.Background(), InstallOptions{Source: path, DestDir: types.FilesystemPath(t.TempDir())}); !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("Install() = %v, want ErrInvalidArchive", err)
	}
	if _, err := Install(context.Background(), InstallOptions{Source: " "}); err == nil {
		t.Error("Install() with empty source succeeded")
	}
}

func TestInstall_FromURL(t *testing.T) {
	t.Parallel()

	archive := buildSample(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pkg.zip" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, archive)
	}))
	defer srv.Close()

	dest := t.TempDir()
	installed, err := Install(context.Background(), InstallOptions{
		Source:     srv.URL + "/pkg.zip",
		DestDir:    types.FilesystemPath(dest),
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("Install(url) error: %v", err)
	}
	if installed.Manifest.FileCount() == 0 {
		t.Error("Install(url) installed no files")
	}

	if _, err := Install(context.Background(), InstallOptions{Source: srv.URL + "/missing.zip", DestDir: types.FilesystemPath(t.TempDir()), HTTPClient: srv.Client()}); err == nil {
		t.Error("Install() of a missing URL succeeded")
	}
}

func TestInstall_Cancelled(t *testing.T) {
	t.Parallel()

	archive := buildSample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dest := t.TempDir()
	if _, err := Install(ctx, InstallOptions{Source: archive, DestDir: types.FilesystemPath(dest)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Install() = %v, want context.Canceled", err)
	}
	assertEmptyDir(t, dest)
}

func buildSample(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	testutil.WriteTree(t, base, sampleTree)
	m := buildManifest(t, base, "contracts", collect.EmptyDirsOmit)
	built, err := Build(context.Background(), BuildOptions{Manifest: m, BaseDir: types.FilesystemPath(base), OutputDir: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return string(built.ArchivePath)
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crafted.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, createErr := zw.Create(name)
		if createErr != nil {
			t.Fatal(createErr)
		}
		if _, writeErr := w.Write([]byte(content)); writeErr != nil {
			t.Fatal(writeErr)
		}
	}
	testutil.MustClose(t, zw)
	testutil.MustClose(t, f)
	return path
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("%s not empty: %v", dir, names)
	}
}
