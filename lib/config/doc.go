// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for weavedump.
//
// Configuration comes from at most one file, named by the --config
// flag or the WEAVEDUMP_CONFIG environment variable. There is no
// automatic discovery. Without either, the built-in defaults apply.
// Values in the file are loaded over [Default], and command-line
// flags override both.
//
// Files are YAML unless they end in .json or .jsonc, which are parsed
// as JSON with comments and trailing commas. Unknown keys are errors
// in both formats.
//
// ${VAR} and ${VAR:-default} patterns in the gateway URL and the
// output recipients are expanded from the environment after loading.
//
// Key exports:
//
//   - [Config] -- gateway, retry, and output settings
//   - [Default] -- the built-in defaults
//   - [Resolve], [Load], and [LoadFile] -- the entry points for loading
//   - [Config.Validate] -- reports every problem at once
//
// This package depends on no other weavedump packages.
package config
