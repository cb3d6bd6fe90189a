// SPDX-License-Identifier: MPL-2.0

package config

import (
	"sync"
)

var (
	configMu sync.Mutex
	cached   *Config

	// configFilePathOverride is set via the --config flag.
	configFilePathOverride string
	// configDirOverride lets tests redirect the config directory.
	configDirOverride string
)

// SetConfigFilePathOverride points Load at a specific config file.
func SetConfigFilePathOverride(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFilePathOverride = path
	cached = nil
}

// SetConfigDirOverride redirects the config directory (test hook).
func SetConfigDirOverride(dir string) {
	configMu.Lock()
	defer configMu.Unlock()
	configDirOverride = dir
	cached = nil
}

// Get returns the cached configuration, loading it on first use. Load
// failures degrade to defaults here; callers that must surface them use
// Load directly.
func Get() *Config {
	configMu.Lock()
	defer configMu.Unlock()

	if cached != nil {
		return cached
	}
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	cached = cfg
	return cfg
}
