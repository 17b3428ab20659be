// threadline - A terminal client for streaming chat backends.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/threadline/internal/cli"
	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdCache:
		err = cli.HandleCache(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		err = cli.HandleUnknown(args)
	}
	cli.HandleErrorAndExit(err, args.JSON)
}

// runTUI starts the full-screen chat.
func runTUI(args cli.Args) error {
	// The alt screen owns stdout; logs go to a file or nowhere.
	if args.Debug {
		f, err := tea.LogToFile("threadline-debug.log", "debug")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	env, err := cli.Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	sink := chat.NewProgramSink(nil)
	sess := env.NewSession(sink)

	m := chat.New(sess, env.Config)
	m.SetVersion(Version)

	p := tea.NewProgram(m, tea.WithAltScreen())
	sink.Bind(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchConfig(ctx, p, env.ConfigPath, args)

	log.Printf("TUI_START | thread=%s graph=%s base_url=%s", sess.ThreadID(), sess.Graph(), env.Config.Server.BaseURL)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running threadline: %w", err)
	}
	return nil
}

// watchConfig forwards reloaded configuration to the program. Command-line
// overrides are reapplied so a file edit never moves the open thread.
func watchConfig(ctx context.Context, p *tea.Program, path string, args cli.Args) {
	onReload := func(cfg *config.Config) {
		cli.ApplyFlags(cfg, args)
		p.Send(chat.ConfigReloadedMsg{Config: cfg})
	}
	onError := func(err error) {
		p.Send(chat.NoticeMsg{Notice: session.Notice{
			Level: session.LevelWarning,
			Text:  "config not reloaded: " + err.Error(),
			Err:   err,
		}})
	}
	if _, err := config.Watch(ctx, path, onReload, onError); err != nil {
		log.Printf("CONFIG_WATCH_SKIPPED | path=%s err=%v", path, err)
	}
}
