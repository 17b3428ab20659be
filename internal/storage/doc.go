// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps tool results the server asked the client to cache.
//
// A custom_tool_result event with should_cache set, a tool name and a string
// output is written here under the key "tool_result_<name>". The latest
// output per tool wins. The transcript itself is never persisted.
//
// # Key Types
//
//   - ToolResultStore: SQLite-backed key/value store (pure Go driver)
//   - Entry: one cached result with its tool name, thread and timestamp
//
// # Usage
//
//	store, err := storage.Open("~/.threadline/tool_results.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Put(ctx, threadID, "weather", output)
//	entry, err := store.Get(ctx, "weather")
package storage
