// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cache_cmd.go - Tool result cache commands for threadline CLI.
//
// Command: cache [subcommand]
// Short:   Inspect cached tool results
//
// Subcommands:
//   list (default)      List cached tool results
//   get NAME            Print the cached output of tool NAME
//   delete NAME         Remove one entry
//   clear               Remove every entry
//
// Examples:
//   threadline cache
//   threadline cache get search --json
//   threadline cache clear --confirm
//
// Flags:
//   --confirm, -y       Skip the confirmation prompt for clear
//   --json              Output in JSON format
//
// Cache Location:
//   ~/.threadline/cache.db (cache.path in the config file)
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/storage"
	"github.com/jeranaias/threadline/internal/util"
)

// =============================================================================
// CACHE COMMAND HANDLER
// =============================================================================

// HandleCache handles the "cache" command.
func HandleCache(args Args) error {
	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}
	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p := NewArgParser(args.Raw)

	switch args.Subcommand {
	case "", "list", "ls":
		return cacheList(ctx, os.Stdout, store, args.JSON, time.Now())
	case "get", "show":
		if args.Name == "" {
			return ErrMissingArgument("tool name", "threadline cache get NAME")
		}
		return cacheGet(ctx, os.Stdout, store, args.Name, args.JSON)
	case "delete", "rm":
		if args.Name == "" {
			return ErrMissingArgument("tool name", "threadline cache delete NAME")
		}
		return cacheDelete(ctx, os.Stdout, store, args.Name, args.JSON)
	case "clear":
		skip := p.BoolFlag("confirm") || p.BoolFlag("y") || p.BoolFlag("yes")
		if !skip {
			if !IsTTY() {
				return &ValidationError{Field: "confirm", Reason: "refusing to clear without a terminal", Example: "threadline cache clear --confirm"}
			}
			if !confirm(os.Stdin, os.Stdout, "Delete every cached tool result?") {
				fmt.Println("Aborted.")
				return nil
			}
		}
		return cacheClear(ctx, os.Stdout, store, args.JSON)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown cache subcommand",
			Example: "threadline cache [list|get|delete|clear]",
		}
	}
}

// openCache opens the configured store. The cache command works on a
// disabled cache too, as long as the file exists.
func openCache(cfg *config.Config) (*storage.ToolResultStore, error) {
	if !cfg.Cache.Enabled {
		path, err := util.ExpandHome(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, &CommandError{Command: "cache", Action: "open", Reason: "tool result cache is disabled (cache.enabled = false)"}
		}
	}
	store, err := storage.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func cacheList(ctx context.Context, w io.Writer, store *storage.ToolResultStore, jsonMode bool, now time.Time) error {
	entries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}

	if jsonMode {
		data := make([]CacheEntryData, 0, len(entries))
		for _, e := range entries {
			data = append(data, NewCacheEntryData(e, false))
		}
		return NewJSONResponse("cache list", data).Print()
	}

	fmt.Fprintln(w, TitleStyle.Render("Cached Tool Results"))
	fmt.Fprintln(w, RenderSeparator(60))
	if len(entries) == 0 {
		fmt.Fprintln(w, DimStyle.Render("  (empty)"))
	}
	var total int64
	for _, e := range entries {
		size := int64(len(e.Value))
		total += size
		fmt.Fprintf(w, "  %s %s %10s  %s\n",
			util.PadRight(util.TruncateWidth(e.Tool, 24), 24),
			util.PadRight(util.TruncateWidth(e.ThreadID, 12), 12),
			formatBytes(size),
			DimStyle.Render(formatAge(e.UpdatedAt, now)))
	}
	fmt.Fprintln(w, RenderSeparator(60))
	fmt.Fprintf(w, "%d entries, %s | %s\n", len(entries), formatBytes(total), DimStyle.Render(store.Path()))
	return nil
}

func cacheGet(ctx context.Context, w io.Writer, store *storage.ToolResultStore, name string, jsonMode bool) error {
	e, err := store.Get(ctx, name)
	if err != nil {
		return cacheError(name, err)
	}
	if jsonMode {
		return NewJSONResponse("cache get", NewCacheEntryData(e, true)).Print()
	}
	io.WriteString(w, e.Value)
	if !strings.HasSuffix(e.Value, "\n") {
		io.WriteString(w, "\n")
	}
	return nil
}

func cacheDelete(ctx context.Context, w io.Writer, store *storage.ToolResultStore, name string, jsonMode bool) error {
	if err := store.Delete(ctx, name); err != nil {
		return cacheError(name, err)
	}
	if jsonMode {
		return NewJSONResponse("cache delete", map[string]string{"deleted": storage.Key(name)}).Print()
	}
	fmt.Fprintf(w, "%s deleted %s\n", SuccessStyle.Render("[OK]"), name)
	return nil
}

func cacheClear(ctx context.Context, w io.Writer, store *storage.ToolResultStore, jsonMode bool) error {
	n, err := store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if jsonMode {
		return NewJSONResponse("cache clear", map[string]int64{"deleted": n}).Print()
	}
	fmt.Fprintf(w, "%s removed %d entries\n", SuccessStyle.Render("[OK]"), n)
	return nil
}

func cacheError(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &NotFoundError{Resource: "tool result", ID: name}
	case errors.Is(err, storage.ErrInvalidName):
		return &ValidationError{Field: "tool name", Reason: "must not be empty"}
	}
	return err
}
