// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/threadline/internal/util"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound    = errors.New("tool result not found")
	ErrInvalidName = errors.New("tool name is empty")
	ErrClosed      = errors.New("store is closed")
)

// KeyPrefix is prepended to the tool name to form the cache key.
const KeyPrefix = "tool_result_"

// Key returns the cache key for a tool name.
func Key(tool string) string {
	return KeyPrefix + tool
}

// =============================================================================
// TOOL RESULT STORE
// =============================================================================

// Entry is one cached tool result.
type Entry struct {
	Key       string
	Tool      string
	ThreadID  string
	Value     string
	UpdatedAt time.Time
}

// ToolResultStore is a SQLite-backed cache of tool outputs.
type ToolResultStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens (or creates) the cache database at path. A leading "~" is
// expanded to the home directory.
func Open(path string) (*ToolResultStore, error) {
	path, err := util.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &ToolResultStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *ToolResultStore) Path() string {
	return s.path
}

// Close releases the database.
func (s *ToolResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Put stores the latest output of a tool, replacing any earlier value.
func (s *ToolResultStore) Put(ctx context.Context, threadID, tool, value string) error {
	if strings.TrimSpace(tool) == "" {
		return ErrInvalidName
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_results (key, tool, thread_id, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			tool = excluded.tool,
			thread_id = excluded.thread_id,
			value = excluded.value,
			updated_at = excluded.updated_at`,
		Key(tool), tool, threadID, value, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store tool result: %w", err)
	}

	log.Printf("TOOL_RESULT_CACHED | tool=%s thread=%s bytes=%d", tool, threadID, len(value))
	return nil
}

// Get returns the cached output of a tool.
func (s *ToolResultStore) Get(ctx context.Context, tool string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return Entry{}, ErrClosed
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT key, tool, thread_id, value, updated_at FROM tool_results WHERE key = ?`, Key(tool))

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read tool result: %w", err)
	}
	return e, nil
}

// List returns every cached result, newest first.
func (s *ToolResultStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, tool, thread_id, value, updated_at FROM tool_results ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tool results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool result: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the cached output of a tool. Deleting a missing entry
// returns ErrNotFound.
func (s *ToolResultStore) Delete(ctx context.Context, tool string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tool_results WHERE key = ?`, Key(tool))
	if err != nil {
		return fmt.Errorf("failed to delete tool result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every cached result and returns how many were removed.
func (s *ToolResultStore) Clear(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tool_results`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear tool results: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		updated int64
	)
	if err := sc.Scan(&e.Key, &e.Tool, &e.ThreadID, &e.Value, &updated); err != nil {
		return Entry{}, err
	}
	e.UpdatedAt = time.Unix(0, updated)
	return e, nil
}
