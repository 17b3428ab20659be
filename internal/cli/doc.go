// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// threadline.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and command-specific flags
//   - Env: Loaded configuration plus the backend client and result cache
//   - ArgParser: Subcommand, flag and positional parsing for command words
//
// # Usage
//
// Parse and dispatch:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(args)
//	// ... other commands
//	}
//	cli.HandleErrorAndExit(err, args.JSON)
//
// # Commands Overview
//
//   - chat: Line-mode conversation with input history
//   - ask: One message, reply on stdout (pipe friendly)
//   - history: Print a thread's transcript
//   - cache: List, read and clear cached tool results
//   - config: Show, get and set configuration values
//
// history, cache, config and version accept --json.
package cli
