// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"runx-cli/internal/npm"
	"runx-cli/pkg/types"
)

type (
	// Provisioner installs packages into an ephemeral prefix via npm.
	Provisioner struct {
		npm       *npm.Invoker
		cacheRoot types.FilesystemPath // optional override; npm is asked otherwise
		logger    *log.Logger
	}

	// Outcome records what a provisioning run produced. Added and Updated
	// are zero when the installer emitted no structured report.
	Outcome struct {
		Added   int
		Updated int
		Prefix  types.FilesystemPath
		BinPath types.FilesystemPath
	}

	// Options configures a single Ensure run.
	Options struct {
		Quiet bool
	}
)

// New creates a Provisioner. cacheRoot may be empty, in which case the
// package manager's own configuration is queried for its cache directory.
func New(invoker *npm.Invoker, cacheRoot types.FilesystemPath, logger *log.Logger) *Provisioner {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Provisioner{npm: invoker, cacheRoot: cacheRoot, logger: logger}
}

// Ensure installs the given specs into a fresh ephemeral prefix and
// splices the prefix's binary directory to the front of PATH, ahead of any
// local-project binary directory, so explicitly requested packages take
// precedence for the remainder of the invocation.
//
// The returned release func is non-nil on every path, including failures,
// and must be deferred by the caller as soon as Ensure returns: the prefix
// is registered for teardown before the install begins, so a crash
// mid-install never leaks the directory. Install failures are not retried;
// npm's exit code is preserved in the returned error.
func (p *Provisioner) Ensure(ctx context.Context, specs []types.PackageSpec, opts Options) (*Outcome, func(), error) {
	release := func() {}

	cacheRoot := p.cacheRoot
	if cacheRoot == "" {
		dir, err := p.npm.CacheDir(ctx)
		if err != nil {
			return nil, release, fmt.Errorf("determining npm cache directory: %w", err)
		}
		cacheRoot = dir
	}

	prefix, release, err := NewPrefix(cacheRoot)
	if err != nil {
		return nil, release, err
	}
	p.logger.Debug("created ephemeral prefix", "root", prefix.Root, "pid", prefix.OwnerPid)

	if err := prefix.ClearBin(); err != nil {
		return nil, release, err
	}

	report, err := p.npm.Install(ctx, prefix.Root, specs, opts.Quiet)
	if err != nil {
		return nil, release, err
	}

	SpliceSearchPath(prefix.Bin)

	outcome := &Outcome{
		Prefix:  prefix.Root,
		BinPath: prefix.Bin,
	}
	if report != nil {
		outcome.Added = report.Added
		outcome.Updated = report.Updated
	}
	p.logger.Debug("provisioned packages", "added", outcome.Added, "updated", outcome.Updated, "bin", outcome.BinPath)
	return outcome, release, nil
}

// SpliceSearchPath puts dir at the very front of the process's executable
// search path for the remainder of the invocation. Callers layer
// precedence by splicing in reverse order; the last splice wins.
func SpliceSearchPath(dir types.FilesystemPath) {
	current := os.Getenv("PATH")
	if current == "" {
		os.Setenv("PATH", dir.String())
		return
	}
	os.Setenv("PATH", dir.String()+string(filepath.ListSeparator)+current)
}
