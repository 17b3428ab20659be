// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for threadline.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation, and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Chat backend base URL and endpoint paths
//   - ThreadConfig: Thread id and graph name sent with every message
//   - CacheConfig: Tool result cache location
//   - UIConfig: Theme, wrapping and rendering toggles
//   - Watcher: fsnotify-based reloader for a config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (THREADLINE_*)
//   - ~/.threadline/config.toml
//   - ~/.threadline/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Follow edits while the TUI runs:
//
//	w, err := config.Watch(ctx, path, func(cfg *config.Config) {
//	    program.Send(chat.ConfigReloadedMsg{Config: cfg})
//	}, nil)
package config
