// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"runx-cli/internal/app"
	"runx-cli/internal/config"
	"runx-cli/internal/issue"
	"runx-cli/internal/npm"
	"runx-cli/internal/resolve"
	"runx-cli/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	flagPackages       []string
	flagCall           string
	flagYes            bool
	flagNoInstall      bool
	flagQuiet          bool
	flagNpm            string
	flagUserConfig     string
	flagAlwaysSpawn    bool
	flagNodeArgs       []string
	flagIgnoreExisting bool
	flagCache          string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "runx [flags] <command> [args...]",
		Short: "Run commands from npm packages, installing them on demand",
		Long: TitleStyle.Render("runx") + SubtitleStyle.Render(" - Run commands from npm packages, installing them on demand") + `

runx resolves a command against your local project binaries and your
search path. When the command is absent, it installs the providing
package into a throwaway prefix, runs the command, and cleans the
prefix up afterwards. Nothing persists between invocations.

` + SubtitleStyle.Render("Examples:") + `
  runx cowsay hello             Run cowsay, installing it if needed
  runx -p cowsay@2 cowsay hi    Pin the providing package version
  runx --no-install eslint .    Fail (127) instead of installing
  runx -c 'tsc && node dist'    Run a shell string with npm run-script env
  runx -n --inspect mocha       Pass flags to the node runtime`,
		Args: cobra.ArbitraryArgs,
		RunE: runRoot,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/runx/config.toml)")

	rootCmd.Flags().StringSliceVarP(&flagPackages, "package", "p", nil, "package(s) to install before running the command")
	rootCmd.Flags().StringVarP(&flagCall, "call", "c", "", "run a command string in the system shell with the npm run-script environment")
	rootCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "install without the confirmation prompt")
	rootCmd.Flags().BoolVar(&flagNoInstall, "no-install", false, "never install; exit 127 when the command is absent")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress runx output (the command's own output is untouched)")
	rootCmd.Flags().StringVar(&flagNpm, "npm", "", "npm binary to delegate installation to")
	rootCmd.Flags().StringVar(&flagUserConfig, "userconfig", "", "npm userconfig file to forward")
	rootCmd.Flags().BoolVar(&flagAlwaysSpawn, "always-spawn", false, "run scripts in a child process instead of replacing runx")
	rootCmd.Flags().StringSliceVarP(&flagNodeArgs, "node-arg", "n", nil, "argument(s) for the node runtime (whitespace-split)")
	rootCmd.Flags().BoolVar(&flagIgnoreExisting, "ignore-existing", false, "skip the existence check and always provision")
	rootCmd.Flags().StringVar(&flagCache, "cache", "", "cache root the ephemeral prefix is created under")

	// Everything after the command name belongs to the command, not runx.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && flagCall == "" && len(flagPackages) == 0 {
		return cmd.Help()
	}

	req := app.Request{
		CallString:       flagCall,
		RequireExisting:  flagNoInstall,
		ForceInstall:     flagYes,
		PackageRequested: len(flagPackages) > 0,
		IgnoreExisting:   flagIgnoreExisting,
		AlwaysSpawn:      flagAlwaysSpawn,
		NodeArgs:         flagNodeArgs,
		Quiet:            flagQuiet,
		NpmPath:          types.FilesystemPath(flagNpm),
		UserConfig:       types.FilesystemPath(flagUserConfig),
		CacheDir:         types.FilesystemPath(flagCache),
	}
	for _, p := range flagPackages {
		req.PackageSpecs = append(req.PackageSpecs, types.PackageSpec(p))
	}
	if len(args) > 0 {
		req.CommandName = args[0]
		req.Args = args[1:]
	}

	logger := newLogger()
	application := app.New(config.Get(), logger)

	code, err := application.Run(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrUsage) {
			return err
		}
		reportFailure(err)
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: code}
	}
	if code != types.ExitSuccess {
		// The child already spoke for itself; mirror its exit code.
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: code}
	}
	return nil
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	switch {
	case flagQuiet:
		logger.SetLevel(log.ErrorLevel)
	case verbose:
		logger.SetLevel(log.DebugLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// reportFailure writes the failure to stderr: the matching issue page when
// one exists, then the error itself (with its chain in verbose mode).
func reportFailure(err error) {
	if flagQuiet {
		return
	}
	if id, ok := issueIdFor(err); ok {
		if rendered, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
	}
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
}

// issueIdFor maps a failure to its issue page.
func issueIdFor(err error) (issue.Id, bool) {
	var notFound *resolve.CommandNotFoundError
	var install *npm.InstallError

	switch {
	case errors.Is(err, npm.ErrNpmNotFound):
		return issue.NpmNotFoundId, true
	case errors.As(err, &notFound):
		return issue.CommandNotFoundId, true
	case errors.As(err, &install):
		return issue.InstallFailedId, true
	case errors.Is(err, app.ErrUserDeclined):
		return issue.UserDeclinedId, true
	}
	return 0, false
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose and quiet from config if not set via flags
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
	if cfg != nil && !flagQuiet {
		flagQuiet = cfg.UI.Quiet
	}
}
