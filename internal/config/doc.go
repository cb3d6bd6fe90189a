// SPDX-License-Identifier: MPL-2.0

// Package config loads the runx configuration file and exposes defaults.
// Configuration is optional; every key has a working zero-state.
package config
