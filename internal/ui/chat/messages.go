// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/transcript"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ChangesMsg carries transcript changes published by the session.
type ChangesMsg struct {
	Changes []transcript.Change
}

// NoticeMsg carries a session notice.
type NoticeMsg struct {
	Notice session.Notice
}

// HistoryLoadedMsg reports the end of the initial history load. Err is
// informational; the session already published a notice for it.
type HistoryLoadedMsg struct {
	Err error
}

// SendDoneMsg reports that one Send returned.
type SendDoneMsg struct {
	Err error
}

// ConfigReloadedMsg delivers a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// SINK
// =============================================================================

// Sender is the part of *tea.Program the sink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards session output into a running Bubble Tea program.
// The session calls it while holding its lock, so Update must never call
// a locking Session method; it only ever runs sends and loads as commands.
type ProgramSink struct {
	program Sender
}

// NewProgramSink creates a sink for program. Bind may be used instead when
// the program is created after the session.
func NewProgramSink(program Sender) *ProgramSink {
	return &ProgramSink{program: program}
}

// Bind sets the program messages are sent to.
func (s *ProgramSink) Bind(program Sender) {
	s.program = program
}

// Changes implements session.Sink.
func (s *ProgramSink) Changes(changes []transcript.Change) {
	if s.program != nil {
		s.program.Send(ChangesMsg{Changes: changes})
	}
}

// Notice implements session.Sink.
func (s *ProgramSink) Notice(n session.Notice) {
	if s.program != nil {
		s.program.Send(NoticeMsg{Notice: n})
	}
}
