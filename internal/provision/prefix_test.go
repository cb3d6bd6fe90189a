// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"runx-cli/pkg/types"
)

func TestNewPrefix(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	prefix, release, err := NewPrefix(types.FilesystemPath(cache))
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	want := filepath.Join(cache, prefixDirName, strconv.Itoa(os.Getpid()))
	if prefix.Root.String() != want {
		t.Errorf("Root = %q, want %q", prefix.Root, want)
	}
	if prefix.OwnerPid != os.Getpid() {
		t.Errorf("OwnerPid = %d, want %d", prefix.OwnerPid, os.Getpid())
	}

	info, err := os.Stat(prefix.Root.String())
	if err != nil {
		t.Fatalf("prefix was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("prefix root is not a directory")
	}
}

func TestNewPrefix_ReleaseRemovesEverything(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	prefix, release, err := NewPrefix(types.FilesystemPath(cache))
	if err != nil {
		t.Fatal(err)
	}

	// Simulate installed content under the prefix.
	nested := filepath.Join(prefix.Root.String(), "lib", "node_modules", "cowsay")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "cli.js"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	release()

	if _, err := os.Stat(prefix.Root.String()); !os.IsNotExist(err) {
		t.Errorf("prefix still exists after release: %v", err)
	}
}

func TestNewPrefix_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	prefix, release, err := NewPrefix(types.FilesystemPath(cache))
	if err != nil {
		t.Fatal(err)
	}

	release()
	release()
	release()

	if _, err := os.Stat(prefix.Root.String()); !os.IsNotExist(err) {
		t.Error("prefix survived repeated releases")
	}
}

func TestPrefix_ClearBin(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	prefix, release, err := NewPrefix(types.FilesystemPath(cache))
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	// Stale content from a crashed predecessor with the same pid.
	if err := os.MkdirAll(prefix.Bin.String(), 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(prefix.Bin.String(), "old-tool")
	if err := os.WriteFile(stale, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := prefix.ClearBin(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(prefix.Bin.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("bin directory still has %d entries", len(entries))
	}
}

func TestPrefix_ClearBinMissingDir(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	prefix, release, err := NewPrefix(types.FilesystemPath(cache))
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	// A fresh prefix has no bin directory yet; that is not an error.
	if err := prefix.ClearBin(); err != nil {
		t.Fatalf("ClearBin on a fresh prefix: %v", err)
	}
}
