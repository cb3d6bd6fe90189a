// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	"runx-cli/pkg/fspath"
	"runx-cli/pkg/types"
)

// prefixDirName is the directory under the npm cache that holds all
// ephemeral prefixes. Kept npx-compatible so stale directories from either
// tool are recognizable.
const prefixDirName = "_npx"

// Prefix is a process-scoped ephemeral installation root. Exactly one
// exists per invocation; the owner pid in the path keeps concurrent
// invocations on the same machine from ever contending.
type Prefix struct {
	Root     types.FilesystemPath
	Bin      types.FilesystemPath
	OwnerPid int
}

// NewPrefix creates the ephemeral prefix under cacheRoot synchronously,
// parents included, and returns it together with its release func. The
// release func removes the prefix recursively, runs at most once, swallows
// removal failures, and never panics: exit-time cleanup must not crash or
// block the process. Callers must defer the release immediately, before
// any installation attempt, so a crash mid-install never leaks the
// directory.
func NewPrefix(cacheRoot types.FilesystemPath) (*Prefix, func(), error) {
	pid := os.Getpid()
	root := fspath.JoinStr(cacheRoot, prefixDirName, strconv.Itoa(pid))

	if err := os.MkdirAll(root.String(), 0o755); err != nil {
		return nil, func() {}, fmt.Errorf("creating ephemeral prefix %s: %w", root, err)
	}

	p := &Prefix{
		Root:     root,
		Bin:      binDirFor(root),
		OwnerPid: pid,
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			defer func() { _ = recover() }()
			_ = os.RemoveAll(root.String())
		})
	}
	return p, release, nil
}

// ClearBin removes any stale contents of the binary subdirectory, handling
// prior unclean state (e.g. a pid reused after a crash that predates the
// release registration).
func (p *Prefix) ClearBin() error {
	entries, err := os.ReadDir(p.Bin.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("listing %s: %w", p.Bin, err)
	}
	for _, entry := range entries {
		stale := fspath.JoinStr(p.Bin, entry.Name())
		if err := os.RemoveAll(stale.String()); err != nil {
			return fmt.Errorf("removing stale %s: %w", stale, err)
		}
	}
	return nil
}

// binDirFor returns where npm places executables for a global install into
// root: <root>/bin on POSIX, the prefix root itself on Windows.
func binDirFor(root types.FilesystemPath) types.FilesystemPath {
	if runtime.GOOS == "windows" {
		return root
	}
	return fspath.JoinStr(root, "bin")
}
