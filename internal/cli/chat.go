// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-mode chat for threadline CLI.
//
// Command: chat
// Short:   Chat with the backend without the full-screen UI
// Aliases: repl
//
// Examples:
//   threadline chat                   Continue the configured thread
//   threadline chat --thread 42       Continue thread 42
//   threadline chat --new-thread      Start over on a fresh thread
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /history            Reprint the transcript
//   /thread             Show the thread id and graph
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the reply in progress
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/ui/styles"
)

var promptStyle = lipgloss.NewStyle().
	Foreground(styles.Cyan).
	Bold(true)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads saved input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads one line, adding it to history when non-empty.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history (owner read/write only) and restores the terminal.
func (c *ChatCLI) Close() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	printer := newLinePrinter(os.Stdout, os.Stderr, false)
	sess := env.NewSession(printer)

	if !args.Quiet {
		printWelcome(os.Stdout, sess)
	}

	// Replay the existing thread, user lines included.
	printer.SetEchoUser(true)
	ctx, cancel := env.HistoryContext(context.Background())
	err = sess.LoadHistory(ctx)
	cancel()
	printer.Finish()
	printer.SetEchoUser(false)
	if err != nil {
		return fmt.Errorf("failed to load history: %s: %w", session.Describe(err), err)
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if !handleSlashCommand(os.Stdout, line, sess, env) {
				return nil
			}
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		sendLine(sess, printer, line)
	}
}

// sendLine sends one message. Ctrl+C cancels the reply without leaving chat.
func sendLine(sess *session.Session, printer *linePrinter, text string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := sess.Send(ctx, text)
	printer.Finish()
	if err != nil && ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("[Cancelled]"))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a slash command and reports whether chat continues.
func handleSlashCommand(w io.Writer, cmd string, sess *session.Session, env *Env) bool {
	parts := strings.Fields(cmd)
	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?", "/":
		printChatHelp(w)
	case "/quit", "/q", "/exit":
		return false
	case "/history":
		var md = newMarkdown(GetTerminalWidth() - 4)
		if !env.Config.UI.RenderMarkdown {
			md = nil
		}
		renderTranscript(w, sess.Units(), md)
	case "/thread":
		fmt.Fprintf(w, "%s %s\n", DimStyle.Render("thread"), sess.ThreadID())
		fmt.Fprintf(w, "%s %s\n", DimStyle.Render("graph "), sess.Graph())
	default:
		fmt.Fprintf(os.Stderr, "%s unknown command: %s (type /help for commands)\n",
			ErrorStyle.Render("[Error]"), parts[0])
	}
	return true
}

// =============================================================================
// DISPLAY
// =============================================================================

func printWelcome(w io.Writer, sess *session.Session) {
	fmt.Fprintln(w, TitleStyle.Render("threadline chat"))
	fmt.Fprintln(w, SeparatorStyle.Render(strings.Repeat("─", 30)))
	fmt.Fprintf(w, "%s %s | %s %s\n",
		DimStyle.Render("thread"), sess.ThreadID(),
		DimStyle.Render("graph"), sess.Graph())
	fmt.Fprintln(w, DimStyle.Render("Type a message and press Enter. Commands: /help, /quit"))
	fmt.Fprintln(w)
}

func printChatHelp(w io.Writer) {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Reprint the transcript"},
		{"/thread", "Show the thread id and graph"},
		{"/quit, /q", "Exit chat"},
		{"Ctrl+C", "Cancel the reply in progress"},
	}
	fmt.Fprintln(w, TitleStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(w, "  %s  %s\n", SuccessStyle.Render(fmt.Sprintf("%-12s", c.cmd)), DimStyle.Render(c.desc))
	}
}
