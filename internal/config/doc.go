// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gpterm.
//
// A single *Config is built once at process start and passed down to the
// completion client, the conversation and the CLI. Nothing below the CLI
// reads the environment on its own.
//
// # Key Types
//
//   - Config: main configuration structure
//   - ProviderConfig: which completion backend to talk to
//   - CredentialsConfig: organization and API key, environment only
//   - StorageConfig: conversation persistence backend
//   - UIConfig: code highlighting style and colour switch
//
// # Configuration Precedence
//
// Configuration is assembled from (later wins):
//   - Built-in defaults
//   - ~/.gpterm/config.toml
//   - Environment variables (OPENAI_*, GPTERM_*, ...)
//   - Command line flags (applied by the CLI)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
