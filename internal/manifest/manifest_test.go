// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"runx-cli/pkg/types"
)

func mustDecode(t *testing.T, data string) *Manifest {
	t.Helper()
	var m Manifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	return &m
}

func TestManifest_BinShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		wantHasBin bool
		wantNames  []string
	}{
		{
			name:       "string bin",
			data:       `{"name": "cowsay", "bin": "cli.js"}`,
			wantHasBin: true,
			wantNames:  []string{"cowsay"},
		},
		{
			name:       "string bin on scoped package",
			data:       `{"name": "@scope/cowsay", "bin": "cli.js"}`,
			wantHasBin: true,
			wantNames:  []string{"cowsay"},
		},
		{
			name:       "object bin",
			data:       `{"name": "tool", "bin": {"b": "b.js", "a": "a.js"}}`,
			wantHasBin: true,
			wantNames:  []string{"a", "b"},
		},
		{
			name:       "no bin",
			data:       `{"name": "lib", "main": "index.js"}`,
			wantHasBin: false,
			wantNames:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := mustDecode(t, tt.data)
			if got := m.HasBin(); got != tt.wantHasBin {
				t.Errorf("HasBin() = %v, want %v", got, tt.wantHasBin)
			}
			if got := m.BinNames(); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("BinNames() = %v, want %v", got, tt.wantNames)
			}
		})
	}
}

func TestManifest_BinShapeRejected(t *testing.T) {
	t.Parallel()

	var m Manifest
	err := json.Unmarshal([]byte(`{"name": "x", "bin": 42}`), &m)
	if err == nil {
		t.Fatal("expected an error for a numeric bin field")
	}
}

func TestManifest_BinTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr error
	}{
		{
			name: "string bin wins unconditionally",
			data: `{"name": "cowsay", "bin": "cli.js"}`,
			want: "cli.js",
		},
		{
			name: "single object entry",
			data: `{"name": "anything", "bin": {"other-name": "run.js"}}`,
			want: "run.js",
		},
		{
			name: "multi entry matching package name",
			data: `{"name": "tool", "bin": {"helper": "h.js", "tool": "t.js"}}`,
			want: "t.js",
		},
		{
			name: "multi entry case-insensitive match",
			data: `{"name": "Tool", "bin": {"helper": "h.js", "tool": "t.js"}}`,
			want: "t.js",
		},
		{
			name: "multi entry scoped package match",
			data: `{"name": "@scope/tool", "bin": {"helper": "h.js", "tool": "t.js"}}`,
			want: "t.js",
		},
		{
			name:    "multi entry without a match is ambiguous",
			data:    `{"name": "pkg", "bin": {"alpha": "a.js", "beta": "b.js"}}`,
			wantErr: ErrAmbiguousBin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := mustDecode(t, tt.data)
			got, err := m.BinTarget()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BinTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestManifest_AmbiguousBinError_Candidates(t *testing.T) {
	t.Parallel()

	m := mustDecode(t, `{"name": "pkg", "bin": {"beta": "b.js", "alpha": "a.js"}}`)
	_, err := m.BinTarget()

	var ambiguous *AmbiguousBinError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("err = %v, want AmbiguousBinError", err)
	}
	if want := []string{"alpha", "beta"}; !reflect.DeepEqual(ambiguous.Candidates, want) {
		t.Errorf("Candidates = %v, want %v", ambiguous.Candidates, want)
	}
}

func TestManifest_EntryPoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"bin beats main", `{"name": "x", "bin": "cli.js", "main": "index.js"}`, "cli.js"},
		{"main fallback", `{"name": "x", "main": "lib/entry.js"}`, "lib/entry.js"},
		{"conventional default", `{"name": "x"}`, "index.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := mustDecode(t, tt.data)
			got, err := m.EntryPoint()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := `{"name": "cowsay", "bin": "cli.js"}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(types.FilesystemPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "cowsay" {
		t.Errorf("Name = %q, want %q", m.Name, "cowsay")
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(types.FilesystemPath(t.TempDir()))
	if !errors.Is(err, ErrNoManifest) {
		t.Fatalf("err = %v, want ErrNoManifest", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(types.FilesystemPath(dir))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if errors.Is(err, ErrNoManifest) {
		t.Error("a malformed manifest must not be reported as missing")
	}
}
