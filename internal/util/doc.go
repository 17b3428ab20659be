// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across threadline.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: column-aware truncation with an ellipsis
//   - StringWidth, PadRight: terminal width math via go-runewidth
//   - FirstLine: first non-blank line of a block of text
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - ExpandHome: resolve a leading "~" in configured paths
//
// # Usage
//
//	// Fit a tool title into a card header
//	title := util.TruncateWidth(entry.Title, width-4)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0600)
package util
