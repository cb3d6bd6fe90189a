// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"runx-cli/internal/issue"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "runx"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

type (
	// Config is the runx configuration. Every field has a working zero
	// value; a missing config file is not an error.
	Config struct {
		// NpmPath overrides where the npm binary is looked up.
		NpmPath string `mapstructure:"npm_path" toml:"npm_path"`
		// CacheDir overrides the cache root the ephemeral prefix is
		// derived from.
		CacheDir string `mapstructure:"cache_dir" toml:"cache_dir"`
		// AlwaysSpawn disables process takeover globally.
		AlwaysSpawn bool `mapstructure:"always_spawn" toml:"always_spawn"`

		Install InstallConfig `mapstructure:"install" toml:"install"`
		UI      UIConfig      `mapstructure:"ui" toml:"ui"`
	}

	// InstallConfig controls on-demand installation behavior.
	InstallConfig struct {
		// Prompt is the confirmation policy: always, never, or auto
		// (prompt only when stdin is a terminal).
		Prompt PromptMode `mapstructure:"prompt" toml:"prompt"`
	}

	// UIConfig controls output behavior.
	UIConfig struct {
		Quiet   bool `mapstructure:"quiet" toml:"quiet"`
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}

	// PromptMode is the install-confirmation policy.
	PromptMode string

	// InvalidPromptModeError is returned when a PromptMode is not one of
	// the recognized values.
	InvalidPromptModeError struct {
		Value PromptMode
	}
)

const (
	// PromptAuto prompts only when stdin is a terminal.
	PromptAuto PromptMode = "auto"
	// PromptAlways forces the confirmation prompt.
	PromptAlways PromptMode = "always"
	// PromptNever forbids installation without explicit --yes.
	PromptNever PromptMode = "never"
)

// ErrInvalidPromptMode is the sentinel error wrapped by InvalidPromptModeError.
var ErrInvalidPromptMode = errors.New("invalid prompt mode")

// Error implements the error interface for InvalidPromptModeError.
func (e *InvalidPromptModeError) Error() string {
	return fmt.Sprintf("invalid prompt mode %q (must be auto, always, or never)", e.Value)
}

// Unwrap returns ErrInvalidPromptMode for errors.Is() compatibility.
func (e *InvalidPromptModeError) Unwrap() error { return ErrInvalidPromptMode }

// IsValid returns whether the PromptMode is a recognized value.
func (m PromptMode) IsValid() (bool, []error) {
	switch m {
	case PromptAuto, PromptAlways, PromptNever:
		return true, nil
	}
	return false, []error{&InvalidPromptModeError{Value: m}}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Install: InstallConfig{Prompt: PromptAuto},
	}
}

// ConfigDir returns the runx configuration directory using platform
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application
// Support, and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration file, falling back to defaults when no file
// exists. An unreadable or malformed file is an error; a missing one is not.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("npm_path", defaults.NpmPath)
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("always_spawn", defaults.AlwaysSpawn)
	v.SetDefault("install.prompt", string(defaults.Install.Prompt))
	v.SetDefault("ui.quiet", defaults.UI.Quiet)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	if configFilePathOverride != "" {
		v.SetConfigFile(configFilePathOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && configFilePathOverride == "" {
			return defaults, nil
		}
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("Check the TOML syntax").
			WithSuggestion("Run 'runx config init' to recreate a default file").
			Wrap(err).
			BuildError()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(v.ConfigFileUsed()).
			Wrap(err).
			BuildError()
	}

	if valid, errs := cfg.Install.Prompt.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(v.ConfigFileUsed()).
			Wrap(errs[0]).
			BuildError()
	}

	return cfg, nil
}
