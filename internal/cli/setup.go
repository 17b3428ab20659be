// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - Shared command setup: configuration, backend client, cache.

package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/threadline/internal/client"
	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/storage"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// LoadConfig loads the config file (--config or the default location) and
// applies command-line overrides on top of file and environment values.
func LoadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if args.ConfigPath != "" {
		path = args.ConfigPath
		cfg, err = config.LoadFromPath(path)
	} else {
		path, err = config.ActivePath()
		if err != nil {
			return nil, "", err
		}
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config: %w", err)
	}

	ApplyFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// ApplyFlags copies command-line overrides into cfg. --new-thread wins over
// --thread.
func ApplyFlags(cfg *config.Config, args Args) {
	if args.BaseURL != "" {
		cfg.Server.BaseURL = strings.TrimSpace(args.BaseURL)
	}
	if args.Thread != "" {
		cfg.Thread.ID = strings.TrimSpace(args.Thread)
	}
	if args.NewThread {
		cfg.Thread.ID = uuid.NewString()
	}
	if args.Graph != "" {
		cfg.Thread.Graph = strings.TrimSpace(args.Graph)
	}
	if args.NoMarkdown {
		cfg.UI.RenderMarkdown = false
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env bundles what the conversation commands need.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Client     *client.Client
	Cache      *storage.ToolResultStore // nil when disabled or unavailable
}

// Setup loads configuration and opens the backend client and cache. A cache
// that fails to open is reported and skipped; it never stops a command.
func Setup(args Args) (*Env, error) {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config:     cfg,
		ConfigPath: path,
		Client: client.New(cfg.Server.BaseURL).
			WithPaths(cfg.Server.HistoryPath, cfg.Server.SendPath).
			WithUserAgent("threadline/" + Version),
	}

	if cfg.Cache.Enabled {
		store, err := storage.Open(cfg.Cache.Path)
		if err != nil {
			log.Printf("CACHE_OPEN_FAILED | path=%s err=%v", cfg.Cache.Path, err)
			if !args.Quiet {
				fmt.Fprintf(os.Stderr, "%s tool result cache unavailable: %v\n", WarningStyle.Render("[!]"), err)
			}
		} else {
			env.Cache = store
		}
	}

	if args.NewThread && !args.Quiet {
		fmt.Fprintf(os.Stderr, "thread %s\n", cfg.Thread.ID)
	}
	return env, nil
}

// NewSession creates a session for the configured thread publishing to sink.
func (e *Env) NewSession(sink session.Sink) *session.Session {
	opts := session.Options{
		ThreadID: e.Config.Thread.ID,
		Graph:    e.Config.Thread.Graph,
	}
	if e.Cache != nil {
		opts.Cache = e.Cache
	}
	return session.New(e.Client, sink, opts)
}

// Timeout is the configured request timeout for history loads.
func (e *Env) Timeout() time.Duration {
	return time.Duration(e.Config.Server.TimeoutSecs) * time.Second
}

// HistoryContext derives a context bounded by the configured timeout.
func (e *Env) HistoryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, e.Timeout())
}

// Close releases the cache.
func (e *Env) Close() error {
	if e.Cache != nil {
		return e.Cache.Close()
	}
	return nil
}
