// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Transcript printing for threadline CLI.
//
// Command: history
// Short:   Print the transcript of a thread
// Aliases: log
//
// Examples:
//   threadline history
//   threadline history --thread 42 --no-markdown
//   threadline history --json | jq '.data.units[].content'
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/transcript"
)

// HandleHistory handles the "history" command.
func HandleHistory(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	// Replayed units are collected from the session once loading finishes.
	printer := newLinePrinter(io.Discard, os.Stderr, false)
	printer.quietErrors = true
	sess := env.NewSession(printer)

	ctx, cancel := env.HistoryContext(context.Background())
	defer cancel()
	if err := sess.LoadHistory(ctx); err != nil {
		return fmt.Errorf("failed to load history: %s: %w", session.Describe(err), err)
	}

	units := sess.Units()
	if args.JSON {
		return NewJSONResponse("history", newHistoryData(sess.ThreadID(), units)).Print()
	}

	if len(units) == 0 {
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s thread %s has no messages\n", DimStyle.Render("[i]"), sess.ThreadID())
		}
		return nil
	}

	md := newMarkdown(GetTerminalWidth() - 4)
	if !env.Config.UI.RenderMarkdown || !IsStdoutTTY() {
		md = nil
	}
	renderTranscript(os.Stdout, units, md)
	return nil
}

func newHistoryData(threadID string, units []*transcript.Unit) HistoryData {
	data := HistoryData{ThreadID: threadID, Units: make([]UnitData, 0, len(units))}
	for _, u := range units {
		data.Units = append(data.Units, NewUnitData(u))
	}
	return data
}
