// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"runx-cli/internal/resolve"
	"runx-cli/pkg/types"
)

// ErrNodeArgsWithoutScript is returned when interpreter flags were
// requested but no interpreter script could be resolved to apply them to.
var ErrNodeArgsWithoutScript = errors.New("node arguments are only meaningful when running a resolvable script")

type (
	// Request is the execution intent for one invocation. Immutable once
	// built by the orchestrator.
	Request struct {
		// Command is the bare command name, or the raw command string in
		// call mode.
		Command string
		// Args are the original trailing arguments, passed through
		// untouched.
		Args []string
		// NodeArgs are interpreter flags, pre-split via SplitNodeArgs.
		NodeArgs []string
		// AlwaysSpawn disables process takeover.
		AlwaysSpawn bool
		// CallMode runs Command through the system shell instead of
		// resolving a script.
		CallMode bool
		// Env is the child environment; nil inherits the current one.
		Env []string

		// Stdin, Stdout, Stderr default to the process's own streams.
		Stdin          io.Reader
		Stdout, Stderr io.Writer

		Logger *log.Logger
	}

	// Outcome is the terminal value of an invocation. A successful
	// takeover never produces one; the replacing image exits instead, so
	// Takeover is false on every outcome a caller can actually observe.
	Outcome struct {
		ExitCode types.ExitCode
		Takeover bool
	}
)

// Run consumes the resolved target (or a not-found target) and the
// invocation intent, and hands off execution per the decision table:
// in-process takeover for plain interpreter scripts, child spawn for
// everything else. An operational child failure (non-zero exit) is
// translated into the outcome's exit code without an extra message; any
// other failure is returned as a fatal error.
func Run(ctx context.Context, target resolve.Target, req Request) (Outcome, error) {
	logger := req.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	script := target.Kind == resolve.KindScript

	// Interpreter flags bind to a script's runtime; with any other target
	// there is no runtime invocation to attach them to, and dropping them
	// silently would change what the user asked for.
	if !script && len(req.NodeArgs) > 0 {
		return Outcome{}, ErrNodeArgsWithoutScript
	}

	if script && canTakeOver(req, target.Path) {
		node, err := findNode()
		if err != nil {
			return Outcome{}, err
		}
		argv := append([]string{node, target.Path.String()}, req.Args...)
		logger.Debug("taking over process", "argv", argv)
		if err := takeover(node, argv, childEnv(req)); err != nil {
			// Exec failed in place; fall through to a plain spawn so the
			// command still runs.
			logger.Debug("process takeover failed, spawning instead", "err", err)
		}
	}

	argv := composeSpawnArgv(target, req)
	if len(argv) == 0 {
		return Outcome{}, fmt.Errorf("nothing to execute")
	}
	if script {
		node, err := findNode()
		if err != nil {
			return Outcome{}, err
		}
		argv = append([]string{node}, argv...)
	}

	return spawn(ctx, argv, req, logger)
}

// canTakeOver applies the takeover guards: the caller did not force
// spawning, no interpreter flags were requested, no shell was requested,
// the platform supports exec-in-place, and the target is not the currently
// running executable.
func canTakeOver(req Request, script types.FilesystemPath) bool {
	if !takeoverSupported || req.AlwaysSpawn || req.CallMode || len(req.NodeArgs) > 0 {
		return false
	}
	self, err := os.Executable()
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(script.String())
	if err != nil {
		return false
	}
	return abs != self
}

// composeSpawnArgv builds the child argument vector (without the runtime
// binary prefix for scripts; Run prepends that).
func composeSpawnArgv(target resolve.Target, req Request) []string {
	switch {
	case req.CallMode:
		shell, shellArg := systemShell()
		return []string{shell, shellArg, req.Command}
	case target.Kind == resolve.KindScript:
		argv := append([]string{}, req.NodeArgs...)
		argv = append(argv, target.Path.String())
		return append(argv, req.Args...)
	case target.Kind == resolve.KindBinary:
		return append([]string{target.Path.String()}, req.Args...)
	default:
		return append([]string{req.Command}, req.Args...)
	}
}

func spawn(ctx context.Context, argv []string, req Request, logger *log.Logger) (Outcome, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = childEnv(req)

	cmd.Stdin = req.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = req.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = req.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	logger.Debug("spawning child", "argv", argv)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Operational: the child already produced its own
			// diagnostics; mirror its exit code verbatim.
			return Outcome{ExitCode: types.ExitCode(exitErr.ExitCode())}, nil
		}
		return Outcome{}, fmt.Errorf("executing %s: %w", argv[0], err)
	}
	return Outcome{ExitCode: types.ExitSuccess}, nil
}

func childEnv(req Request) []string {
	if req.Env != nil {
		return req.Env
	}
	return os.Environ()
}

// findNode locates the node runtime binary on the (possibly spliced)
// search path.
func findNode() (string, error) {
	path, err := exec.LookPath("node")
	if err != nil {
		return "", fmt.Errorf("locating node runtime: %w", err)
	}
	return path, nil
}
