// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema creates the cache tables.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per cache key (tool_result_<name>)
CREATE TABLE IF NOT EXISTS tool_results (
    key TEXT PRIMARY KEY,
    tool TEXT NOT NULL,
    thread_id TEXT NOT NULL DEFAULT '',
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL  -- Unix nanoseconds
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_tool_results_updated ON tool_results(updated_at);
`

// initMetadata records the schema version on first open.
const initMetadata = `INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');`
