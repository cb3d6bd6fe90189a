// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"runx-cli/internal/manifest"
	"runx-cli/pkg/fspath"
	"runx-cli/pkg/types"
)

// maxManifestHops bounds recursive resolution through package manifests.
// A chain deeper than this (or one that revisits a directory) is treated
// as a command-not-found, never an infinite loop.
const maxManifestHops = 16

type (
	// Kind discriminates what a candidate path resolved to.
	Kind string

	// Target is the result of resolving a candidate path. Consumers never
	// mutate it; resolving the same path twice without filesystem changes
	// yields an identical Target.
	Target struct {
		Kind Kind
		Path types.FilesystemPath
	}

	// Context carries the caller's knowledge about the candidate.
	Context struct {
		// LocalBin marks the candidate as an entry of the local project's
		// binary directory. Local entries are trusted: script extensions
		// are accepted without content inspection and directories are
		// resolved through their manifests.
		LocalBin bool

		depth   int
		visited map[string]bool
	}
)

const (
	// KindNotFound means no candidate was supplied.
	KindNotFound Kind = "not-found"
	// KindScript means the target is a node interpreter script.
	KindScript Kind = "script"
	// KindBinary means the target did not announce an interpreter; the
	// caller falls back to treating it as an opaque executable.
	KindBinary Kind = "binary"
)

// scriptExts are extensions a trusted local-bin entry may carry to be
// accepted as a script without inspection.
var scriptExts = map[string]bool{".js": true, ".cjs": true, ".mjs": true}

// Resolve determines what the candidate path refers to. It never installs
// anything and never mutates the search path.
func Resolve(path types.FilesystemPath, ctx Context) (Target, error) {
	if path == "" {
		return Target{Kind: KindNotFound}, nil
	}

	if ctx.LocalBin {
		if scriptExts[strings.ToLower(fspath.Ext(path))] {
			return Target{Kind: KindScript, Path: path}, nil
		}

		info, err := os.Stat(path.String())
		if err == nil && info.IsDir() {
			return resolvePackageDir(path, ctx)
		}
	}

	if runtime.GOOS == "windows" {
		script, ok, err := resolveShim(path)
		if err != nil {
			return Target{}, err
		}
		if !ok {
			return Target{Kind: KindBinary, Path: path}, nil
		}
		return Target{Kind: KindScript, Path: script}, nil
	}

	isScript, err := HasInterpreterDirective(path)
	if err != nil {
		return Target{}, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if isScript {
		return Target{Kind: KindScript, Path: path}, nil
	}
	return Target{Kind: KindBinary, Path: path}, nil
}

// resolvePackageDir reads the directory's manifest and recursively resolves
// its entry point (bin, falling back to main, falling back to index.js).
func resolvePackageDir(dir types.FilesystemPath, ctx Context) (Target, error) {
	if ctx.visited == nil {
		ctx.visited = make(map[string]bool)
	}
	key := fspath.Clean(dir).String()
	if ctx.visited[key] || ctx.depth >= maxManifestHops {
		return Target{}, &CommandNotFoundError{Name: fspath.Base(dir)}
	}
	ctx.visited[key] = true
	ctx.depth++

	m, err := manifest.Load(dir)
	if err != nil {
		if errors.Is(err, manifest.ErrNoManifest) {
			return Target{}, &CommandNotFoundError{Name: fspath.Base(dir)}
		}
		return Target{}, err
	}

	entry, err := m.EntryPoint()
	if err != nil {
		return Target{}, err
	}

	entryPath := fspath.JoinStr(dir, entry)
	if _, statErr := os.Stat(entryPath.String()); statErr != nil {
		if os.IsNotExist(statErr) {
			// The manifest names an entry that was never installed.
			return Target{}, &CommandNotFoundError{Name: fspath.Base(dir)}
		}
		return Target{}, fmt.Errorf("inspecting %s: %w", entryPath, statErr)
	}

	target, err := Resolve(entryPath, ctx)
	if err != nil {
		var notFound *CommandNotFoundError
		if errors.As(err, &notFound) {
			return Target{}, &CommandNotFoundError{Name: fspath.Base(dir)}
		}
		return Target{}, err
	}
	if target.Kind == KindNotFound {
		return Target{}, &CommandNotFoundError{Name: fspath.Base(dir)}
	}
	return target, nil
}

// LocalBinDir returns the local project's binary directory under cwd.
func LocalBinDir(cwd types.FilesystemPath) types.FilesystemPath {
	return fspath.JoinStr(cwd, "node_modules", ".bin")
}

// LocalBinEntry returns the path a command would occupy in the local
// project's binary directory. Existence is not checked.
func LocalBinEntry(cwd types.FilesystemPath, name string) types.FilesystemPath {
	return fspath.JoinStr(LocalBinDir(cwd), name)
}
