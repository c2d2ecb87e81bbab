// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/contractpack/contractpack/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FormatJSON renders the manifest as indented JSON.
	FormatJSON Format = "json"
	// FormatTOML renders the manifest as TOML, the form stored in archives.
	FormatTOML Format = "toml"
	// FormatCUE renders the manifest as CUE conforming to #Manifest.
	FormatCUE Format = "cue"
	// FormatText renders a human-readable listing. It cannot be decoded.
	FormatText Format = "text"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown manifest format")

//go:embed manifest_schema.cue
var manifestSchema []byte

// Format names a manifest encoding.
type Format string

// Formats lists every supported format name.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatTOML, FormatCUE}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Encode writes m to w in format f.
func (m *Manifest) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(m)
	case FormatCUE:
		_, err := io.WriteString(w, m.cue())
		return err
	case FormatText:
		_, err := io.WriteString(w, m.text())
		return err
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

// Decode reads a manifest written by Encode in format f.
func Decode(r io.Reader, f Format) (*Manifest, error) {
	var m Manifest
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			return nil, fmt.Errorf("decode json manifest: %w", err)
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&m); err != nil {
			return nil, fmt.Errorf("decode toml manifest: %w", err)
		}
	case FormatCUE:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read cue manifest: %w", err)
		}
		result, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest", cueutil.WithFilename("manifest.cue"))
		if err != nil {
			return nil, err
		}
		m = *result.Value
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
	if m.DataFiles == nil {
		m.DataFiles = map[string][]string{}
	}
	return &m, nil
}

func (m *Manifest) cue() string {
	var sb strings.Builder

	sb.WriteString("// Generated by contractpack.\n\n")
	sb.WriteString("\"package\": {\n")
	fmt.Fprintf(&sb, "\tname:    %q\n", m.Metadata.Name)
	fmt.Fprintf(&sb, "\tversion: %q\n", m.Metadata.Version)
	fmt.Fprintf(&sb, "\tauthor:  %q\n", m.Metadata.Author)
	writeOptional := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "\t%s: %q\n", label, value)
		}
	}
	writeOptional("description", string(m.Metadata.Description))
	writeOptional("author_email", m.Metadata.AuthorEmail)
	writeOptional("license", m.Metadata.License)
	writeOptional("url", m.Metadata.URL)
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "root: %q\n\n", m.Root)

	sb.WriteString("data_files: {\n")
	for _, dir := range m.Dirs() {
		quoted := make([]string, len(m.DataFiles[dir]))
		for i, f := range m.DataFiles[dir] {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		fmt.Fprintf(&sb, "\t%q: [%s]\n", dir, strings.Join(quoted, ", "))
	}
	sb.WriteString("}\n")

	return sb.String()
}

func (m *Manifest) text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", m.Metadata.Name, m.Metadata.Version)
	fmt.Fprintf(&sb, "root: %s\n", m.Root)
	dirs := m.Dirs()
	fmt.Fprintf(&sb, "files: %d in %d directories\n", m.FileCount(), len(dirs))
	for _, dir := range dirs {
		fmt.Fprintf(&sb, "\n%s\n", dir)
		for _, f := range m.DataFiles[dir] {
			fmt.Fprintf(&sb, "  %s\n", f)
		}
	}

	return sb.String()
}
