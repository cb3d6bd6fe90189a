// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"runx-cli/pkg/fspath"
	"runx-cli/pkg/types"
)

// FileName is the package descriptor file name inside a package directory.
const FileName = "package.json"

var (
	// ErrNoManifest is returned when a package directory has no package.json.
	ErrNoManifest = errors.New("no package manifest")

	// ErrAmbiguousBin is the sentinel error wrapped by AmbiguousBinError.
	ErrAmbiguousBin = errors.New("ambiguous bin entry")
)

type (
	// Manifest is the subset of package.json runx needs to resolve a
	// package directory to an executable entry. The bin field is
	// shape-fuzzy in the wild (string or object), so it is decoded
	// separately in UnmarshalJSON.
	Manifest struct {
		Name string
		Main string

		// binPath is set when "bin" is a plain string.
		binPath string
		// binMap is set when "bin" is an object of name -> path.
		binMap map[string]string
	}

	// AmbiguousBinError is returned when a manifest declares several bin
	// entries and none matches the package name, so no single candidate
	// can be chosen without guessing.
	AmbiguousBinError struct {
		PackageName string
		Candidates  []string
	}
)

// Error implements the error interface for AmbiguousBinError.
func (e *AmbiguousBinError) Error() string {
	return fmt.Sprintf(
		"package %q declares multiple executables (%s) and none matches the package name; name one explicitly",
		e.PackageName, strings.Join(e.Candidates, ", "),
	)
}

// Unwrap returns ErrAmbiguousBin for errors.Is() compatibility.
func (e *AmbiguousBinError) Unwrap() error { return ErrAmbiguousBin }

// UnmarshalJSON decodes the fields runx cares about, tolerating the two
// shapes of "bin" npm accepts.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name string          `json:"name"`
		Main string          `json:"main"`
		Bin  json.RawMessage `json:"bin"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Name = raw.Name
	m.Main = raw.Main

	if len(raw.Bin) == 0 {
		return nil
	}

	var binStr string
	if err := json.Unmarshal(raw.Bin, &binStr); err == nil {
		m.binPath = binStr
		return nil
	}

	var binMap map[string]string
	if err := json.Unmarshal(raw.Bin, &binMap); err != nil {
		return fmt.Errorf("unsupported bin field shape: %w", err)
	}
	m.binMap = binMap
	return nil
}

// HasBin reports whether the manifest declares any executable entry.
func (m *Manifest) HasBin() bool {
	return m.binPath != "" || len(m.binMap) > 0
}

// BinNames returns the declared executable names, sorted, for the object
// shape of bin. The string shape has a single implicit name (the package's
// trailing name segment).
func (m *Manifest) BinNames() []string {
	if m.binPath != "" {
		name := m.Name
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		return []string{name}
	}
	names := make([]string, 0, len(m.binMap))
	for name := range m.binMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BinTarget selects the executable entry path for this package, relative to
// the package root. Selection rules:
//   - string bin: that path, unconditionally
//   - single-entry object: that entry
//   - multi-entry object: the entry whose name matches the package name
//     case-insensitively; no match is an AmbiguousBinError, never a silent
//     first-candidate fallback
func (m *Manifest) BinTarget() (string, error) {
	if m.binPath != "" {
		return m.binPath, nil
	}
	if len(m.binMap) == 0 {
		return "", fmt.Errorf("package %q declares no executable entry", m.Name)
	}
	if len(m.binMap) == 1 {
		for _, p := range m.binMap {
			return p, nil
		}
	}

	want := m.Name
	if i := strings.LastIndex(want, "/"); i >= 0 {
		want = want[i+1:]
	}
	for name, p := range m.binMap {
		if strings.EqualFold(name, want) {
			return p, nil
		}
	}
	return "", &AmbiguousBinError{PackageName: m.Name, Candidates: m.BinNames()}
}

// EntryPoint computes the file a package directory resolves to:
// bin, falling back to main, falling back to the conventional index.js.
// The returned path is relative to the package root.
func (m *Manifest) EntryPoint() (string, error) {
	if m.HasBin() {
		return m.BinTarget()
	}
	if m.Main != "" {
		return m.Main, nil
	}
	return "index.js", nil
}

// Load reads and decodes the package.json inside dir.
// A missing file is reported as ErrNoManifest so callers can translate it
// into their own not-found semantics.
func Load(dir types.FilesystemPath) (*Manifest, error) {
	path := fspath.JoinStr(dir, FileName)
	data, err := os.ReadFile(path.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}
