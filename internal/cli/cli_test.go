// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/threadline/internal/client"
	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/storage"
	"github.com/jeranaias/threadline/internal/transcript"
)

// =============================================================================
// PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		argv        []string
		wantCommand Command
		validate    func(*testing.T, Args)
	}{
		{
			name:        "no arguments starts the TUI",
			argv:        nil,
			wantCommand: CmdTUI,
		},
		{
			name:        "global flag without command",
			argv:        []string{"--thread", "42"},
			wantCommand: CmdTUI,
			validate: func(t *testing.T, a Args) {
				if a.Thread != "42" {
					t.Errorf("Expected thread 42, got %q", a.Thread)
				}
			},
		},
		{
			name:        "ask with raw and inline flag",
			argv:        []string{"ask", "--raw", "hello", "world", "--thread=7"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "hello world" {
					t.Errorf("Expected query %q, got %q", "hello world", a.Query)
				}
				if !a.RawOutput {
					t.Error("Expected RawOutput to be set")
				}
				if a.Thread != "7" {
					t.Errorf("Expected thread 7, got %q", a.Thread)
				}
			},
		},
		{
			name:        "chat with new thread",
			argv:        []string{"chat", "--new-thread", "--graph", "research"},
			wantCommand: CmdChat,
			validate: func(t *testing.T, a Args) {
				if !a.NewThread {
					t.Error("Expected NewThread to be set")
				}
				if a.Graph != "research" {
					t.Errorf("Expected graph research, got %q", a.Graph)
				}
			},
		},
		{
			name:        "repl alias",
			argv:        []string{"repl"},
			wantCommand: CmdChat,
		},
		{
			name:        "log alias",
			argv:        []string{"log", "--json"},
			wantCommand: CmdHistory,
			validate: func(t *testing.T, a Args) {
				if !a.JSON {
					t.Error("Expected JSON to be set")
				}
			},
		},
		{
			name:        "cache get with name",
			argv:        []string{"cache", "GET", "search", "--json"},
			wantCommand: CmdCache,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "get" {
					t.Errorf("Expected subcommand get, got %q", a.Subcommand)
				}
				if a.Name != "search" {
					t.Errorf("Expected name search, got %q", a.Name)
				}
			},
		},
		{
			name:        "config set",
			argv:        []string{"config", "set", "ui.theme", "dark"},
			wantCommand: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "set" || a.Name != "ui.theme" {
					t.Errorf("Expected set ui.theme, got %q %q", a.Subcommand, a.Name)
				}
				if len(a.Raw) != 3 {
					t.Errorf("Expected 3 raw args, got %v", a.Raw)
				}
			},
		},
		{
			name:        "version flag",
			argv:        []string{"--version"},
			wantCommand: CmdVersion,
		},
		{
			name:        "help flag",
			argv:        []string{"-h"},
			wantCommand: CmdHelp,
		},
		{
			name:        "unknown command",
			argv:        []string{"chta"},
			wantCommand: CmdUnknown,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "chta" {
					t.Errorf("Expected subcommand chta, got %q", a.Subcommand)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != tt.wantCommand {
				t.Errorf("Expected command %s, got %s", tt.wantCommand, cmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestHandleUnknownSuggests(t *testing.T) {
	err := HandleUnknown(Args{Subcommand: "hsitory"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"history"`)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"clear", "--confirm", "extra", "--limit", "5", "--since=today"})

	if p.Subcommand() != "clear" {
		t.Errorf("Expected subcommand clear, got %q", p.Subcommand())
	}
	if !p.BoolFlag("confirm") {
		t.Error("Expected --confirm to be a bool flag")
	}
	if p.Positional(1) != "extra" {
		t.Errorf("Expected positional extra after a bool flag, got %q", p.Positional(1))
	}
	if p.Flag("limit") != "5" {
		t.Errorf("Expected limit 5, got %q", p.Flag("limit"))
	}
	if p.Flag("since") != "today" {
		t.Errorf("Expected since today, got %q", p.Flag("since"))
	}
	if !p.HasFlag("--limit") || p.HasFlag("missing") {
		t.Error("HasFlag mismatch")
	}
	if p.Positional(9) != "" || len(p.PositionalFrom(9)) != 0 {
		t.Error("Expected empty results out of range")
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	p := NewArgParser(nil)
	if p.Subcommand() != "" {
		t.Errorf("Expected no subcommand, got %q", p.Subcommand())
	}
}

// =============================================================================
// SUGGESTION TESTS (suggest.go)
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chta", "chat"},
		{"histroy", "history"},
		{"cahce", "cache"},
		{"chat", ""},
		{"x", ""},
		{"completely-different", ""},
	}
	for _, tt := range tests {
		if got := SuggestCommand(tt.input); got != tt.want {
			t.Errorf("SuggestCommand(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneralError},
		{"usage", ErrMissingArgument("message", "threadline ask hi"), ExitUsageError},
		{"not found", &NotFoundError{Resource: "tool result", ID: "x"}, ExitNotFoundError},
		{"store not found", fmt.Errorf("get: %w", storage.ErrNotFound), ExitNotFoundError},
		{"config", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, ExitConfigError},
		{"canceled", fmt.Errorf("send failed: %w", context.Canceled), ExitInterrupted},
		{"timeout", fmt.Errorf("load: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"status", &client.StatusError{Code: 502}, ExitNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

// =============================================================================
// SETUP TESTS (setup.go, ask.go)
// =============================================================================

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	ApplyFlags(cfg, Args{
		BaseURL:    " http://backend:9000/api ",
		Thread:     "42",
		Graph:      "research",
		NoMarkdown: true,
	})
	assert.Equal(t, "http://backend:9000/api", cfg.Server.BaseURL)
	assert.Equal(t, "42", cfg.Thread.ID)
	assert.Equal(t, "research", cfg.Thread.Graph)
	assert.False(t, cfg.UI.RenderMarkdown)

	ApplyFlags(cfg, Args{Thread: "42", NewThread: true})
	assert.NotEqual(t, "42", cfg.Thread.ID)
	assert.Len(t, cfg.Thread.ID, 36)
}

func TestAskQuery(t *testing.T) {
	q, err := askQuery("  hello  ", strings.NewReader("ignored"), false)
	require.NoError(t, err)
	assert.Equal(t, "hello", q)

	q, err = askQuery("", strings.NewReader("from a pipe\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "from a pipe", q)

	_, err = askQuery("", strings.NewReader(""), true)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = askQuery("", strings.NewReader("   \n"), false)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	big := strings.Repeat("a", MaxStdinMessage+1)
	_, err = askQuery("", strings.NewReader(big), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin exceeds")
}

// =============================================================================
// LINE PRINTER TESTS (print.go)
// =============================================================================

func textUnit(key, content string, loading bool) *transcript.Unit {
	return &transcript.Unit{Key: key, Role: transcript.RoleAssistant, Kind: transcript.KindText, Content: content, IsLoading: loading}
}

func change(u *transcript.Unit) []transcript.Change {
	return []transcript.Change{{Op: transcript.OpReplace, Key: u.Key, Unit: u}}
}

func TestLinePrinterStreamsDeltas(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newLinePrinter(&out, &errOut, false)

	p.Changes(change(&transcript.Unit{Key: "u1", Role: transcript.RoleUser, Kind: transcript.KindText, Content: "hi"}))
	p.Changes(change(textUnit("a1", "", true)))
	p.Changes(change(textUnit("a1", "Hel", false)))
	p.Changes(change(textUnit("a1", "Hello", false)))
	p.Finish()

	got := out.String()
	assert.NotContains(t, got, "you>", "user units are not echoed while sending")
	assert.Contains(t, got, "assistant> Hello\n")
	assert.Equal(t, 1, strings.Count(got, "Hel"), "deltas must not repeat printed text")
}

func TestLinePrinterRewritesDivergentText(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrinter(&out, &out, true)

	p.Changes(change(textUnit("a1", "draft", false)))
	p.Changes(change(textUnit("a1", "final", false)))
	p.Finish()

	assert.Equal(t, "draft\nfinal\n", out.String())
}

func TestLinePrinterToolStatusChanges(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrinter(&out, &out, false)

	tool := func(status transcript.Status) *transcript.Unit {
		return &transcript.Unit{
			Key:  "t1",
			Role: transcript.RoleAssistant,
			Kind: transcript.KindToolChain,
			Items: []transcript.ToolEntry{
				{Title: "search", Status: status},
			},
		}
	}
	p.Changes(change(tool(transcript.StatusPending)))
	p.Changes(change(tool(transcript.StatusPending)))
	p.Changes(change(tool(transcript.StatusSuccess)))

	assert.Equal(t, 2, strings.Count(out.String(), "search"))
}

func TestLinePrinterRawSkipsTools(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrinter(&out, &out, true)
	p.Changes(change(&transcript.Unit{
		Key:   "t1",
		Kind:  transcript.KindToolChain,
		Items: []transcript.ToolEntry{{Title: "search", Status: transcript.StatusPending}},
	}))
	p.Changes(change(&transcript.Unit{Key: "f1", Kind: transcript.KindFile, File: &transcript.Attachment{Name: "report.csv"}}))
	assert.Empty(t, out.String())
}

func TestLinePrinterEchoUser(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrinter(&out, &out, false)
	p.SetEchoUser(true)
	p.Changes(change(&transcript.Unit{Key: "u1", Role: transcript.RoleUser, Kind: transcript.KindText, Content: "earlier question"}))
	assert.Contains(t, out.String(), "you> earlier question")
}

func TestLinePrinterNotices(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newLinePrinter(&out, &errOut, false)

	p.Notice(session.Notice{Level: session.LevelWarning, Text: "slow backend"})
	p.Notice(session.Notice{Level: session.LevelError, Text: "stream failed"})
	assert.Contains(t, errOut.String(), "[!] slow backend")
	assert.Contains(t, errOut.String(), "[X] stream failed")

	errOut.Reset()
	p.quietErrors = true
	p.Notice(session.Notice{Level: session.LevelError, Text: "stream failed"})
	p.Notice(session.Notice{Level: session.LevelInfo, Text: "canceled"})
	assert.NotContains(t, errOut.String(), "stream failed")
	assert.Contains(t, errOut.String(), "[i] canceled")
	assert.Empty(t, out.String())
}

func TestRenderTranscriptPlain(t *testing.T) {
	units := []*transcript.Unit{
		{Key: "u1", Role: transcript.RoleUser, Kind: transcript.KindText, Content: "find it"},
		{Key: "t1", Role: transcript.RoleAssistant, Kind: transcript.KindToolChain, Items: []transcript.ToolEntry{
			{Title: "search", Status: transcript.StatusSuccess, Description: "line one\nline two"},
		}},
		{Key: "f1", Role: transcript.RoleAssistant, Kind: transcript.KindFile, File: &transcript.Attachment{Name: "out.csv", Description: "results"}},
		{Key: "a1", Role: transcript.RoleAssistant, Kind: transcript.KindText, Content: "Found **it**."},
	}

	var buf bytes.Buffer
	renderTranscript(&buf, units, nil)
	got := buf.String()

	assert.Contains(t, got, "you> find it")
	assert.Contains(t, got, "search")
	assert.Contains(t, got, "      line two")
	assert.Contains(t, got, "[file] out.csv - results")
	assert.Contains(t, got, "Found **it**.")
}

// =============================================================================
// CACHE COMMAND TESTS (cache_cmd.go)
// =============================================================================

func openTestStore(t *testing.T) *storage.ToolResultStore {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCacheCommands(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Put(ctx, "7", "search", "three results"))

	var buf bytes.Buffer
	require.NoError(t, cacheList(ctx, &buf, store, false, time.Now().Add(time.Minute)))
	assert.Contains(t, buf.String(), "search")
	assert.Contains(t, buf.String(), "1 entries")

	buf.Reset()
	require.NoError(t, cacheGet(ctx, &buf, store, "search", false))
	assert.Equal(t, "three results\n", buf.String())

	err := cacheGet(ctx, &buf, store, "missing", false)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	buf.Reset()
	require.NoError(t, cacheDelete(ctx, &buf, store, "search", false))
	assert.Contains(t, buf.String(), "deleted search")
	assert.Equal(t, ExitNotFoundError, GetExitCode(cacheDelete(ctx, &buf, store, "search", false)))

	require.NoError(t, store.Put(ctx, "7", "a", "1"))
	require.NoError(t, store.Put(ctx, "7", "b", "2"))
	buf.Reset()
	require.NoError(t, cacheClear(ctx, &buf, store, false))
	assert.Contains(t, buf.String(), "removed 2 entries")
}

func TestOpenCacheDisabledWithoutFile(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	cfg.Cache.Path = filepath.Join(t.TempDir(), "none.db")

	_, err := openCache(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

// =============================================================================
// CONFIG COMMAND TESTS (config.go)
// =============================================================================

func TestConfigSetAndGet(t *testing.T) {
	t.Setenv("THREADLINE_THEME", "")
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, configSet(path, "ui.theme", "light"))
	require.NoError(t, configSet(path, "thread.graph", "research"))

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "research", cfg.Thread.Graph)

	var buf bytes.Buffer
	require.NoError(t, configGet(&buf, cfg, "thread.graph", false))
	assert.Equal(t, "research\n", buf.String())

	assert.Equal(t, ExitUsageError, GetExitCode(configGet(&buf, cfg, "nope.key", false)))
}

func TestConfigSetRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	err := configSet(path, "ui.theme", "neon")
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	err = configSet(path, "server.unknown", "x")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestConfigShow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, configShow(&buf, config.Default(), filepath.Join(t.TempDir(), "config.toml"), false))
	got := buf.String()
	assert.Contains(t, got, "server.base_url")
	assert.Contains(t, got, "http://localhost:8000/api")
	assert.Contains(t, got, "defaults in use")
}
