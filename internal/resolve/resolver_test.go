// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"runx-cli/pkg/types"
)

func TestResolve_EmptyPath(t *testing.T) {
	t.Parallel()

	target, err := Resolve("", Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Kind != KindNotFound {
		t.Errorf("Kind = %q, want %q", target.Kind, KindNotFound)
	}
}

func TestResolve_LocalBinScriptExtension(t *testing.T) {
	t.Parallel()

	// Trusted local entries with a script extension are accepted without
	// touching the filesystem.
	for _, name := range []string{"tool.js", "tool.cjs", "tool.mjs", "TOOL.JS"} {
		path := types.FilesystemPath(filepath.Join("nonexistent", name))
		target, err := Resolve(path, Context{LocalBin: true})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if target.Kind != KindScript {
			t.Errorf("%s: Kind = %q, want %q", name, target.Kind, KindScript)
		}
		if target.Path != path {
			t.Errorf("%s: Path = %q, want %q", name, target.Path, path)
		}
	}
}

func TestResolve_ShebangScript(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shebang classification is not used on windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "cli")
	if err := os.WriteFile(path, []byte("#!/usr/bin/env node\nconsole.log(1)\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	target, err := Resolve(types.FilesystemPath(path), Context{})
	if err != nil {
		t.Fatal(err)
	}
	if target.Kind != KindScript {
		t.Errorf("Kind = %q, want %q", target.Kind, KindScript)
	}
}

func TestResolve_OpaqueBinary(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shebang classification is not used on windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexec true\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	target, err := Resolve(types.FilesystemPath(path), Context{})
	if err != nil {
		t.Fatal(err)
	}
	if target.Kind != KindBinary {
		t.Errorf("Kind = %q, want %q", target.Kind, KindBinary)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shebang classification is not used on windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "cli")
	if err := os.WriteFile(path, []byte("#!/usr/bin/env node\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	first, err := Resolve(types.FilesystemPath(path), Context{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve(types.FilesystemPath(path), Context{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("resolution is not idempotent: %+v vs %+v", first, second)
	}
}

func TestResolve_PackageDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pkg := filepath.Join(dir, "cowsay")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "cowsay", "bin": "cli.js"}`
	if err := os.WriteFile(filepath.Join(pkg, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "cli.js"), []byte("#!/usr/bin/env node\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	target, err := Resolve(types.FilesystemPath(pkg), Context{LocalBin: true})
	if err != nil {
		t.Fatal(err)
	}
	if target.Kind != KindScript {
		t.Errorf("Kind = %q, want %q", target.Kind, KindScript)
	}
	if got := target.Path.String(); filepath.Base(got) != "cli.js" {
		t.Errorf("Path = %q, want a cli.js entry", got)
	}
}

func TestResolve_PackageDirMainFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pkg := filepath.Join(dir, "lib")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "lib", "main": "lib/entry.js"}`
	if err := os.WriteFile(filepath.Join(pkg, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(pkg, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "lib", "entry.js"), []byte("module.exports = {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	target, err := Resolve(types.FilesystemPath(pkg), Context{LocalBin: true})
	if err != nil {
		t.Fatal(err)
	}
	if target.Kind != KindScript {
		t.Errorf("Kind = %q, want %q", target.Kind, KindScript)
	}
	if !strings.HasSuffix(target.Path.String(), "entry.js") {
		t.Errorf("Path = %q, want the main entry", target.Path)
	}
}

func TestResolve_PackageDirWithoutManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pkg := filepath.Join(dir, "empty")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(types.FilesystemPath(pkg), Context{LocalBin: true})
	var notFound *CommandNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want CommandNotFoundError", err)
	}
	if notFound.Name != "empty" {
		t.Errorf("Name = %q, want %q", notFound.Name, "empty")
	}
}

func TestResolve_PackageDirMissingEntry(t *testing.T) {
	t.Parallel()

	// The conventional index fallback only holds when the file exists.
	dir := t.TempDir()
	pkg := filepath.Join(dir, "hollow")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "package.json"), []byte(`{"name": "hollow"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(types.FilesystemPath(pkg), Context{LocalBin: true})
	var notFound *CommandNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want CommandNotFoundError", err)
	}
}

func TestResolve_PackageDirSelfReference(t *testing.T) {
	t.Parallel()

	// A manifest whose entry points back at its own directory must
	// terminate as not-found instead of recursing forever.
	dir := t.TempDir()
	pkg := filepath.Join(dir, "loop")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "loop", "main": "."}`
	if err := os.WriteFile(filepath.Join(pkg, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(types.FilesystemPath(pkg), Context{LocalBin: true})
	if !errors.Is(err, ErrCommandNotFound) {
		t.Fatalf("err = %v, want ErrCommandNotFound", err)
	}
}

func TestLocalBinEntry(t *testing.T) {
	t.Parallel()

	got := LocalBinEntry("/proj", "eslint").String()
	want := filepath.Join("/proj", "node_modules", ".bin", "eslint")
	if got != want {
		t.Errorf("LocalBinEntry() = %q, want %q", got, want)
	}
}

func TestFindOnSearchPath_Absent(t *testing.T) {
	tests := []struct {
		name            string
		installDisabled bool
		wantCode        types.ExitCode
	}{
		{"install allowed", false, types.ExitFailure},
		{"install disabled", true, types.ExitCommandNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindOnSearchPath("definitely-not-a-real-command-5f2a", tt.installDisabled)
			var notFound *CommandNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("err = %v, want CommandNotFoundError", err)
			}
			if got := notFound.ExitCode(); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestFindOnSearchPath_Found(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are POSIX-specific")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "mytool")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	got, err := FindOnSearchPath("mytool", false)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != bin {
		t.Errorf("FindOnSearchPath() = %q, want %q", got, bin)
	}
}
