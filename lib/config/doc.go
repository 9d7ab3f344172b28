// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the punchlist
// server.
//
// Configuration is loaded from a single file specified by either the
// PUNCHLIST_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- the flat server configuration
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other punchlist packages.
package config
