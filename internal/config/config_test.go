// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolateHome points the config directory at a fresh temp dir and clears
// every THREADLINE_* override.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, name := range []string{
		"THREADLINE_BASE_URL", "THREADLINE_THREAD", "THREADLINE_GRAPH",
		"THREADLINE_CACHE", "THREADLINE_CACHE_PATH", "THREADLINE_THEME",
	} {
		t.Setenv(name, "")
	}
	return home
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://localhost:8000/api" {
		t.Errorf("Expected default base URL 'http://localhost:8000/api', got '%s'", cfg.Server.BaseURL)
	}
	if cfg.Server.HistoryPath != "/chat/json" {
		t.Errorf("Expected history path '/chat/json', got '%s'", cfg.Server.HistoryPath)
	}
	if cfg.Server.SendPath != "/chat/tokens" {
		t.Errorf("Expected send path '/chat/tokens', got '%s'", cfg.Server.SendPath)
	}
	if cfg.Thread.ID != "1" || cfg.Thread.Graph != "common" {
		t.Errorf("Expected thread 1/common, got %s/%s", cfg.Thread.ID, cfg.Thread.Graph)
	}
	if cfg.UI.WordWrap != 100 {
		t.Errorf("Expected word wrap 100, got %d", cfg.UI.WordWrap)
	}
	if !cfg.Cache.Enabled {
		t.Error("Expected cache enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"https base url", func(c *Config) { c.Server.BaseURL = "https://chat.example.com/api" }, ""},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/api" }, "server.base_url"},
		{"ftp base url", func(c *Config) { c.Server.BaseURL = "ftp://host/api" }, "server.base_url"},
		{"history path without slash", func(c *Config) { c.Server.HistoryPath = "chat/json" }, "server.history_path"},
		{"send path without slash", func(c *Config) { c.Server.SendPath = "tokens" }, "server.send_path"},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSecs = 0 }, "server.timeout_secs"},
		{"blank thread", func(c *Config) { c.Thread.ID = "  " }, "thread.id"},
		{"blank graph", func(c *Config) { c.Thread.Graph = "" }, "thread.graph"},
		{"cache without path", func(c *Config) { c.Cache.Path = "" }, "cache.path"},
		{"disabled cache without path", func(c *Config) { c.Cache.Enabled = false; c.Cache.Path = "" }, ""},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"uppercase theme", func(c *Config) { c.UI.Theme = "DARK" }, ""},
		{"narrow wrap", func(c *Config) { c.UI.WordWrap = 5 }, "ui.word_wrap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Expected ValidateErrors, got %v", err)
			}
			found := false
			for _, v := range verrs {
				if v.Field == tt.wantErr {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error on field %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_LoadFromPathTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
base_url = "https://chat.example.com/api"

[thread]
id = "42"

[ui]
theme = "light"
render_markdown = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	if cfg.Server.BaseURL != "https://chat.example.com/api" {
		t.Errorf("Expected base URL from file, got '%s'", cfg.Server.BaseURL)
	}
	if cfg.Server.SendPath != "/chat/tokens" {
		t.Errorf("Expected default send path to survive, got '%s'", cfg.Server.SendPath)
	}
	if cfg.Thread.ID != "42" || cfg.Thread.Graph != "common" {
		t.Errorf("Expected thread 42/common, got %s/%s", cfg.Thread.ID, cfg.Thread.Graph)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Expected theme 'light', got '%s'", cfg.UI.Theme)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("Expected render_markdown=false from file")
	}
	if !cfg.UI.HighlightJSON {
		t.Error("Expected highlight_json default to survive")
	}
}

func TestConfig_LoadFromPathJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"thread":{"graph":"research"}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	if cfg.Thread.Graph != "research" {
		t.Errorf("Expected graph 'research', got '%s'", cfg.Thread.Graph)
	}
}

func TestConfig_LoadFromPathInvalid(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nbase_url ="), 0600))
	if _, err := LoadFromPath(bad); err == nil {
		t.Error("Expected decode error for malformed TOML")
	}

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[ui]\ntheme = \"neon\"\n"), 0600))
	if _, err := LoadFromPath(invalid); err == nil {
		t.Error("Expected validation error for unknown theme")
	}
}

func TestConfig_LoadPrefersTOML(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".threadline")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[thread]\nid = \"toml\"\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"thread":{"id":"json"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	if cfg.Thread.ID != "toml" {
		t.Errorf("Expected TOML to win, got thread '%s'", cfg.Thread.ID)
	}

	active, err := ActivePath()
	require.NoError(t, err)
	if filepath.Base(active) != "config.toml" {
		t.Errorf("Expected active path config.toml, got %s", active)
	}
}

func TestConfig_LoadWithoutFiles(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	if cfg.Thread.ID != "1" {
		t.Errorf("Expected default thread '1', got '%s'", cfg.Thread.ID)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("THREADLINE_BASE_URL", "http://10.0.0.5:9000/api")
	t.Setenv("THREADLINE_THREAD", "env-thread")
	t.Setenv("THREADLINE_GRAPH", "env-graph")
	t.Setenv("THREADLINE_CACHE", "false")
	t.Setenv("THREADLINE_THEME", "dark")

	cfg, err := Load()
	require.NoError(t, err)

	if cfg.Server.BaseURL != "http://10.0.0.5:9000/api" {
		t.Errorf("Expected env base URL, got '%s'", cfg.Server.BaseURL)
	}
	if cfg.Thread.ID != "env-thread" || cfg.Thread.Graph != "env-graph" {
		t.Errorf("Expected env thread/graph, got %s/%s", cfg.Thread.ID, cfg.Thread.Graph)
	}
	if cfg.Cache.Enabled {
		t.Error("Expected THREADLINE_CACHE=false to disable the cache")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Expected theme 'dark', got '%s'", cfg.UI.Theme)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	cfg := Default()
	cfg.Thread.ID = "saved"
	cfg.UI.WordWrap = 80

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(cfg, tomlPath))
	loaded, err := LoadFromPath(tomlPath)
	require.NoError(t, err)
	if *loaded != *cfg {
		t.Errorf("Expected TOML round trip to preserve config, got %+v", loaded)
	}

	info, err := os.Stat(tomlPath)
	require.NoError(t, err)
	if perm := info.Mode().Perm(); perm != 0600 && os.PathSeparator == '/' {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	loaded, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	if loaded.UI.WordWrap != 80 {
		t.Errorf("Expected word wrap 80 from JSON, got %d", loaded.UI.WordWrap)
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("thread.graph")
	require.NoError(t, err)
	if val != "common" {
		t.Errorf("Get('thread.graph') = %v, want 'common'", val)
	}

	require.NoError(t, cfg.Set("ui.word_wrap", "72"))
	if cfg.UI.WordWrap != 72 {
		t.Errorf("Expected word wrap 72 after Set, got %d", cfg.UI.WordWrap)
	}

	require.NoError(t, cfg.Set("ui.render-markdown", "no"))
	if cfg.UI.RenderMarkdown {
		t.Error("Expected render_markdown false after Set")
	}

	require.NoError(t, cfg.Set("server.timeout_secs", 45))
	if cfg.Server.TimeoutSecs != 45 {
		t.Errorf("Expected timeout 45, got %d", cfg.Server.TimeoutSecs)
	}

	if _, err := cfg.Get("server.nope"); err == nil {
		t.Error("Expected error for unknown key")
	}
	if _, err := cfg.Get("server"); err == nil {
		t.Error("Expected error for section key")
	}
	if err := cfg.Set("ui.word_wrap", "wide"); err == nil {
		t.Error("Expected error for non-numeric word wrap")
	}
	if err := cfg.Set("ui.theme", 3); err == nil {
		t.Error("Expected error assigning int to string field")
	}
}

func TestConfig_GetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}

func TestConfig_Watch(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	_, err := Watch(ctx, path, func(cfg *Config) { reloaded <- cfg }, nil)
	require.NoError(t, err)

	updated := Default()
	updated.UI.Theme = "light"
	require.NoError(t, SaveTOML(updated, path))

	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("Expected reloaded theme 'light', got '%s'", cfg.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected reload after config change")
	}
}

func TestConfig_WatchReportsInvalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failures := make(chan error, 4)
	_, err := Watch(ctx, path, func(*Config) {
		t.Error("Expected no reload for an invalid file")
	}, func(err error) { failures <- err })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	select {
	case err := <-failures:
		if err == nil {
			t.Error("Expected a non-nil reload error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected reload error after invalid write")
	}
}
