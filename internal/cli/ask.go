// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single message command handler for threadline CLI.
//
// Command: ask [message]
// Short:   Send one message and print the reply
//
// Examples:
//   threadline ask "What changed in the last deploy?"
//   threadline ask --raw "Draft a status update" > update.md
//   git diff | threadline ask
//
// Flags:
//   -r, --raw           Print only the assistant text, unformatted
//   --no-markdown       Stream plain text even on a terminal
//   --thread ID         Send to a specific thread
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jeranaias/threadline/internal/session"
)

// MaxStdinMessage caps a message read from stdin (1 MiB).
const MaxStdinMessage = 1 << 20

// HandleAsk handles the "ask" command.
//
// Output mode:
//   - --raw: assistant text streamed as-is, nothing else
//   - stdout is a terminal with markdown on: the finished turn is rendered
//     with glamour
//   - otherwise: text and tool lines streamed as they arrive
func HandleAsk(args Args) error {
	query, err := askQuery(args.Query, os.Stdin, IsTTY())
	if err != nil {
		return err
	}

	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rendered := !args.RawOutput && IsStdoutTTY() && env.Config.UI.RenderMarkdown

	out := io.Writer(os.Stdout)
	if rendered {
		out = io.Discard
	}
	printer := newLinePrinter(out, os.Stderr, args.RawOutput)
	printer.quietErrors = true
	sess := env.NewSession(printer)

	err = sess.Send(ctx, query)
	printer.Finish()
	if err != nil {
		return fmt.Errorf("send failed: %s: %w", session.Describe(err), err)
	}

	if rendered {
		units := sess.Units()
		if len(units) > 0 {
			units = units[1:] // the message just sent
		}
		renderTranscript(os.Stdout, units, newMarkdown(GetTerminalWidth()-4))
	}
	return nil
}

// askQuery returns the message from the arguments, or from stdin when it is
// piped and no arguments were given.
func askQuery(arg string, stdin io.Reader, stdinIsTTY bool) (string, error) {
	if q := strings.TrimSpace(arg); q != "" {
		return q, nil
	}
	if stdinIsTTY {
		return "", ErrMissingArgument("message", `threadline ask "your message"`)
	}
	data, err := io.ReadAll(io.LimitReader(stdin, MaxStdinMessage+1))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) > MaxStdinMessage {
		return "", &ValidationError{Field: "message", Reason: fmt.Sprintf("stdin exceeds %s", formatBytes(MaxStdinMessage))}
	}
	q := strings.TrimSpace(string(data))
	if q == "" {
		return "", ErrMissingArgument("message", `threadline ask "your message"`)
	}
	return q, nil
}
