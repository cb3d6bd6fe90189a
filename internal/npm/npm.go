// SPDX-License-Identifier: MPL-2.0

package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"runx-cli/pkg/types"
)

// ErrNpmNotFound is returned when no npm binary can be located.
var ErrNpmNotFound = errors.New("npm not found on PATH")

type (
	// Invoker shells out to a concrete npm binary. The zero value is not
	// usable; construct with Locate or NewInvoker.
	Invoker struct {
		bin        types.FilesystemPath
		userConfig types.FilesystemPath
		logger     *log.Logger
	}

	// InstallReport is npm's machine-readable install summary. The report
	// is optional and shape-fuzzy: older npm versions emit nothing, newer
	// ones emit counts or arrays. Absent fields stay zero.
	InstallReport struct {
		Added   int
		Updated int
	}

	// InstallError is returned when npm exits non-zero during an install.
	// The installer's own exit code is preserved for propagation.
	InstallError struct {
		Specs []types.PackageSpec
		Code  types.ExitCode
	}
)

// Error implements the error interface for InstallError.
func (e *InstallError) Error() string {
	specs := make([]string, len(e.Specs))
	for i, s := range e.Specs {
		specs[i] = s.String()
	}
	return fmt.Sprintf("installing %s failed with exit code %s", strings.Join(specs, ", "), e.Code)
}

// NewInvoker wraps an already-located npm binary.
func NewInvoker(bin, userConfig types.FilesystemPath, logger *log.Logger) *Invoker {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Invoker{bin: bin, userConfig: userConfig, logger: logger}
}

// Locate finds the npm binary: the override wins when supplied, otherwise
// the search path is consulted. A missing npm is ErrNpmNotFound.
func Locate(override types.FilesystemPath) (types.FilesystemPath, error) {
	if override != "" {
		return override, nil
	}
	path, err := exec.LookPath("npm")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrNpmNotFound
		}
		return "", fmt.Errorf("looking up npm on PATH: %w", err)
	}
	return types.FilesystemPath(path), nil
}

// Bin returns the npm binary this invoker shells out to.
func (i *Invoker) Bin() types.FilesystemPath { return i.bin }

// ConfigQuery runs `npm config get <key>` and returns the trimmed stdout.
func (i *Invoker) ConfigQuery(ctx context.Context, key string) (string, error) {
	args := []string{"config", "get", key}
	cmd := exec.CommandContext(ctx, i.bin.String(), i.withUserConfig(args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	i.logger.Debug("querying npm config", "key", key)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("npm config get %s: %w: %s", key, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CacheDir asks npm for its cache directory.
func (i *Invoker) CacheDir(ctx context.Context) (types.FilesystemPath, error) {
	out, err := i.ConfigQuery(ctx, "cache")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("npm reported an empty cache directory")
	}
	return types.FilesystemPath(out), nil
}

// Install materializes the given specs into prefix via
// `npm install --global --prefix <prefix> --loglevel error --json`.
// Install output is captured; npm's own stderr passes through unless quiet.
// A non-zero exit is an InstallError carrying npm's exit code. The JSON
// report is parsed best-effort: a nil report with a nil error means npm
// emitted nothing structured.
func (i *Invoker) Install(ctx context.Context, prefix types.FilesystemPath, specs []types.PackageSpec, quiet bool) (*InstallReport, error) {
	args := []string{"install"}
	for _, spec := range specs {
		args = append(args, spec.String())
	}
	args = append(args,
		"--global",
		"--prefix", prefix.String(),
		"--loglevel", "error",
		"--json",
	)

	cmd := exec.CommandContext(ctx, i.bin.String(), i.withUserConfig(args)...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if quiet {
		cmd.Stderr = nil
	} else {
		cmd.Stderr = os.Stderr
	}

	i.logger.Debug("installing packages", "specs", specs, "prefix", prefix)
	if err := cmd.Run(); err != nil {
		return nil, &InstallError{Specs: specs, Code: exitCodeOf(err)}
	}

	return parseInstallReport(stdout.Bytes()), nil
}

// RunEnv runs `npm run env --parseable` and returns the KEY=VALUE pairs it
// prints. Lines that are not assignments are skipped.
func (i *Invoker) RunEnv(ctx context.Context) (map[string]string, error) {
	args := []string{"run", "env", "--parseable"}
	cmd := exec.CommandContext(ctx, i.bin.String(), i.withUserConfig(args)...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("npm run env: %w", err)
	}

	env := make(map[string]string)
	for _, line := range strings.Split(stdout.String(), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env, nil
}

func (i *Invoker) withUserConfig(args []string) []string {
	if i.userConfig == "" {
		return args
	}
	return append(args, "--userconfig", i.userConfig.String())
}

// parseInstallReport decodes npm's --json install summary. Both the
// numeric shape ({"added": 2}) and the array shape ({"added": [...]}) are
// accepted; anything undecodable yields a nil report, not an error.
func parseInstallReport(out []byte) *InstallReport {
	var raw struct {
		Added   json.RawMessage `json:"added"`
		Updated json.RawMessage `json:"updated"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil
	}

	report := &InstallReport{
		Added:   countOf(raw.Added),
		Updated: countOf(raw.Updated),
	}
	return report
}

func countOf(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return len(items)
	}
	return 0
}

func exitCodeOf(err error) types.ExitCode {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return types.ExitCode(exitErr.ExitCode())
	}
	return types.ExitFailure
}
