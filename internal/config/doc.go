// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for astra.
//
// # Key Types
//
//   - Config: main configuration structure
//   - BackendConfig: REST and websocket endpoints
//   - AgentConfig: agent name and streaming timings
//   - UIConfig, LoggingConfig: presentation and log output
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ASTRA_*)
//   - ~/.astra/config.toml (or $ASTRA_HOME/config.toml)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	idle := cfg.Agent.ChunkIdle()
//
// Watch for edits while the TUI runs:
//
//	stop, err := config.Watch(path, func(c *config.Config) { ... })
package config
