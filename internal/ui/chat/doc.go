// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat screen for threadline.

The screen shows one thread's transcript and an input line. The transcript
is never read from the session directly: the session publishes unit changes
through a ProgramSink, which turns them into ChangesMsg values, and the model
applies them to its own transcript.List. Sends and the history load run as
Bubble Tea commands so Update never blocks on the network.

# Key Types

  - Model: Bubble Tea model (header, viewport, input line, status bar)
  - Conversation: what the model drives; *session.Session implements it
  - ProgramSink: session.Sink that forwards into a *tea.Program
  - KeyMap: key bindings

# Streaming

Token changes arrive far faster than a terminal can usefully redraw. A
rate-limited pacer folds bursts into at most DefaultMaxFPS viewport rebuilds
per second, and the unit renderer only redraws units whose pointer changed.

Sending while a reply streams supersedes it; Esc cancels the send in flight.

# Usage

	sink := chat.NewProgramSink(nil)
	sess := session.New(backend, sink, opts)
	p := tea.NewProgram(chat.New(sess, cfg), tea.WithAltScreen())
	sink.Bind(p)
	_, err := p.Run()
*/
package chat
