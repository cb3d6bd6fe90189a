// SPDX-License-Identifier: MPL-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"runx-cli/internal/config"
	"runx-cli/internal/execute"
	"runx-cli/internal/manifest"
	"runx-cli/internal/npm"
	"runx-cli/internal/provision"
	"runx-cli/internal/resolve"
	"runx-cli/internal/tui"
	"runx-cli/pkg/fspath"
	"runx-cli/pkg/types"
)

type (
	// Request is the parsed invocation intent, built once by the CLI and
	// immutable afterwards.
	Request struct {
		// CommandName is the command to resolve and run. Empty in call
		// mode when packages alone define the intent.
		CommandName string
		// CallString is the raw command string for call mode; when set,
		// it runs through the system shell instead of script resolution.
		CallString string
		// PackageSpecs are explicitly requested packages, in order.
		PackageSpecs []types.PackageSpec
		// Args are the trailing arguments, passed through untouched.
		Args []string

		// RequireExisting forbids installation (exit 127 when absent).
		RequireExisting bool
		// ForceInstall skips the confirmation prompt.
		ForceInstall bool
		// PackageRequested forces re-resolution through provisioning even
		// if a same-named binary already exists on the path.
		PackageRequested bool
		// IgnoreExisting skips the existence short-circuit.
		IgnoreExisting bool
		// AlwaysSpawn disables process takeover.
		AlwaysSpawn bool
		// NodeArgs are raw interpreter-flag values (whitespace-split
		// before use).
		NodeArgs []string
		Quiet    bool

		// NpmPath, UserConfig, and CacheDir are collaborator overrides.
		NpmPath    types.FilesystemPath
		UserConfig types.FilesystemPath
		CacheDir   types.FilesystemPath
	}

	// App wires the resolver, provisioner, and execution engine for one
	// invocation.
	App struct {
		cfg    *config.Config
		logger *log.Logger

		// confirm and stdinIsTTY are swapped out in tests.
		confirm    func(title string, def bool) (bool, error)
		stdinIsTTY func() bool
	}
)

// New creates an App.
func New(cfg *config.Config, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		confirm: func(title string, def bool) (bool, error) {
			return tui.Confirm(tui.ConfirmOptions{Title: title, Default: def})
		},
		stdinIsTTY: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// Run executes one invocation end to end and returns the exit code the
// process should terminate with. The returned error is nil for operational
// child failures (the child already reported); it is non-nil for failures
// of runx itself.
func (a *App) Run(ctx context.Context, req Request) (types.ExitCode, error) {
	if err := validate(req); err != nil {
		return types.ExitFailure, err
	}

	specs := effectiveSpecs(req)
	if req.CommandName == "" && req.CallString == "" && len(specs) > 0 {
		// A bare --package invocation runs the command the package
		// conventionally installs.
		req.CommandName = specs[0].BinaryName()
	}

	a.spliceLocalBin()

	// Rendezvous: the existence check and the conditional run-script env
	// gathering overlap; both must complete before any install decision.
	existing, npmEnv, rvErr := a.rendezvous(ctx, req)
	if err := rvErr; err != nil {
		var notFound *resolve.CommandNotFoundError
		if !errors.As(err, &notFound) {
			return ExitCodeFor(err), err
		}
		if req.RequireExisting {
			// Absent and installation explicitly disabled.
			return ExitCodeFor(err), err
		}
		// Graceful fallback into the install path.
		existing = ""
	}

	provisioned := false
	if a.needsProvisioning(req, existing) {
		if req.RequireExisting {
			err := &resolve.CommandNotFoundError{Name: req.CommandName, InstallDisabled: true}
			return err.ExitCode(), err
		}
		outcome, release, err := a.provision(ctx, req, specs)
		defer release()
		if err != nil {
			return ExitCodeFor(err), err
		}
		provisioned = true

		if req.CommandName != "" {
			existing = findProvisionedBinary(outcome.BinPath, req.CommandName)
			if existing == "" {
				err := &resolve.CommandNotFoundError{Name: req.CommandName}
				return err.ExitCode(), err
			}
		}
	}

	target, err := resolve.Resolve(existing, resolve.Context{LocalBin: provisioned || isLocalBinPath(existing)})
	if err != nil {
		return ExitCodeFor(err), err
	}

	execReq := execute.Request{
		Command:  req.CommandName,
		Args:     req.Args,
		NodeArgs: execute.SplitNodeArgs(req.NodeArgs),
		// Takeover would outlive the deferred prefix cleanup, so a
		// provisioned target always spawns.
		AlwaysSpawn: req.AlwaysSpawn || a.cfg.AlwaysSpawn || provisioned,
		CallMode:    req.CallString != "",
		Env:         mergedEnv(npmEnv),
		Logger:      a.logger,
	}
	if execReq.CallMode {
		execReq.Command = req.CallString
	}

	a.logger.Debug("handing off", "target", target.Kind, "cmd", npm.RenderCommand(append([]string{execReq.Command}, req.Args...)))

	outcome, err := execute.Run(ctx, target, execReq)
	if err != nil {
		if errors.Is(err, execute.ErrNodeArgsWithoutScript) {
			return types.ExitFailure, &UsageError{Msg: err.Error()}
		}
		return ExitCodeFor(err), err
	}
	return outcome.ExitCode, nil
}

func validate(req Request) error {
	if req.CommandName == "" && req.CallString == "" && len(req.PackageSpecs) == 0 {
		return &UsageError{Msg: "nothing to run: supply a command, --package, or --call"}
	}
	if req.RequireExisting && req.PackageRequested {
		return &UsageError{Msg: "--no-install cannot be combined with --package"}
	}
	for _, spec := range req.PackageSpecs {
		if valid, errs := spec.IsValid(); !valid {
			return errs[0]
		}
	}
	return nil
}

// effectiveSpecs infers the package specifier from the command name when
// none was given explicitly: `runx cowsay` provisions "cowsay" on demand.
func effectiveSpecs(req Request) []types.PackageSpec {
	if len(req.PackageSpecs) > 0 {
		return req.PackageSpecs
	}
	if req.CommandName == "" {
		return nil
	}
	return []types.PackageSpec{types.PackageSpec(req.CommandName)}
}

// spliceLocalBin puts the project's node_modules/.bin on the search path
// so the child and call-mode shell strings can reach sibling tools. It
// runs before any provisioning splice, which lands in front of it; the
// resulting order is ephemeral prefix, local project, pre-existing path.
func (a *App) spliceLocalBin() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	localBin := resolve.LocalBinDir(types.FilesystemPath(cwd))
	info, err := os.Stat(localBin.String())
	if err != nil || !info.IsDir() {
		return
	}
	provision.SpliceSearchPath(localBin)
}

func (a *App) npmOverride(req Request) types.FilesystemPath {
	if req.NpmPath != "" {
		return req.NpmPath
	}
	return types.FilesystemPath(a.cfg.NpmPath)
}

// rendezvous issues the existence check and the conditional env gathering
// concurrently and jointly awaits both. A failure in either surfaces
// before any installation decision is made.
func (a *App) rendezvous(ctx context.Context, req Request) (types.FilesystemPath, map[string]string, error) {
	var (
		existing types.FilesystemPath
		npmEnv   map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if req.CommandName == "" || req.IgnoreExisting || req.PackageRequested {
			return nil
		}

		// Local project binaries are trusted without a search-path
		// lookup.
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determining working directory: %w", err)
		}
		local := resolve.LocalBinEntry(types.FilesystemPath(cwd), req.CommandName)
		if info, err := os.Stat(local.String()); err == nil && !info.IsDir() {
			existing = local
			return nil
		}

		path, err := resolve.FindOnSearchPath(req.CommandName, req.RequireExisting)
		if err != nil {
			return err
		}
		existing = path
		return nil
	})

	if req.CallString != "" {
		g.Go(func() error {
			// A directory without a package manifest has no run-script
			// environment to gather; that is not a failure.
			if _, statErr := os.Stat(manifest.FileName); os.IsNotExist(statErr) {
				return nil
			}
			bin, err := npm.Locate(a.npmOverride(req))
			if err != nil {
				return err
			}
			env, err := npm.NewInvoker(bin, req.UserConfig, a.logger).RunEnv(gctx)
			if err != nil {
				return fmt.Errorf("gathering run-script environment: %w", err)
			}
			npmEnv = env
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", npmEnv, err
	}
	return existing, npmEnv, nil
}

func (a *App) needsProvisioning(req Request, existing types.FilesystemPath) bool {
	if req.PackageRequested {
		return true
	}
	if req.CallString != "" && req.CommandName == "" {
		// Call mode without a command resolves nothing; packages are
		// provisioned only when explicitly requested.
		return len(req.PackageSpecs) > 0
	}
	return existing == ""
}

func (a *App) provision(ctx context.Context, req Request, specs []types.PackageSpec) (*provision.Outcome, func(), error) {
	if len(specs) == 0 {
		return nil, func() {}, &UsageError{Msg: "no package to install"}
	}

	// npm is a dependency of the install path only; an invocation that
	// resolves on the search path never looks for it.
	bin, err := npm.Locate(a.npmOverride(req))
	if err != nil {
		return nil, func() {}, err
	}
	invoker := npm.NewInvoker(bin, req.UserConfig, a.logger)
	a.logger.Debug("delegating installs", "npm", invoker.Bin())

	ok, err := a.confirmInstall(req, specs)
	if err != nil {
		return nil, func() {}, err
	}
	if !ok {
		return nil, func() {}, ErrUserDeclined
	}

	cacheRoot := req.CacheDir
	if cacheRoot == "" {
		cacheRoot = types.FilesystemPath(a.cfg.CacheDir)
	}

	prov := provision.New(invoker, cacheRoot, a.logger)
	return prov.Ensure(ctx, specs, provision.Options{Quiet: req.Quiet})
}

// confirmInstall applies the confirmation policy: forced installs skip the
// prompt, the "never" policy declines without asking, and otherwise the
// user decides. Under the default "auto" policy a non-interactive stdin
// declines rather than prompt; the input stream belongs to the child.
func (a *App) confirmInstall(req Request, specs []types.PackageSpec) (bool, error) {
	if req.ForceInstall {
		return true, nil
	}
	switch a.cfg.Install.Prompt {
	case config.PromptNever:
		return false, nil
	case config.PromptAlways:
	default:
		if !a.stdinIsTTY() {
			return false, nil
		}
	}

	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.String()
	}
	sort.Strings(names)
	title := fmt.Sprintf("Install %s into a temporary prefix?", strings.Join(names, ", "))
	return a.confirm(title, true)
}

// findProvisionedBinary locates the installed command inside the ephemeral
// bin directory, matching case-insensitively.
func findProvisionedBinary(binDir types.FilesystemPath, name string) types.FilesystemPath {
	entries, err := os.ReadDir(binDir.String())
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		base := strings.TrimSuffix(entry.Name(), ".cmd")
		if strings.EqualFold(base, name) {
			return fspath.JoinStr(binDir, entry.Name())
		}
	}
	return ""
}

func isLocalBinPath(path types.FilesystemPath) bool {
	if path == "" {
		return false
	}
	p := strings.ReplaceAll(path.String(), "\\", "/")
	return strings.Contains(p, "node_modules/.bin/")
}

// mergedEnv overlays npm's run-script environment onto the process
// environment. A nil npmEnv inherits the environment unchanged.
func mergedEnv(npmEnv map[string]string) []string {
	if len(npmEnv) == 0 {
		return nil
	}
	env := os.Environ()
	for key, value := range npmEnv {
		env = append(env, key+"="+value)
	}
	return env
}
