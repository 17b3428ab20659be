// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"github.com/jeranaias/threadline/internal/protocol"
)

// =============================================================================
// TURN TRANSITIONS
// =============================================================================

// BeginTurn appends the user's message and waits for the reply. Any reply
// still streaming is abandoned where it stands and stops loading.
func (s *State) BeginTurn(text string) []Change {
	changes := s.stopLoading()
	s.stream = nil
	s.turn = TurnAwaiting
	return append(changes, s.appendUnit(&Unit{
		Role:    RoleUser,
		Kind:    KindText,
		Content: text,
	}))
}

// Token appends one chunk of assistant text.
//
// The first token of a turn appends a new assistant unit; later tokens
// replace it with the extended content. Tokens after the turn closed are
// ignored.
func (s *State) Token(text string) []Change {
	if s.turn == TurnClosed {
		return nil
	}

	if s.turn != TurnStreaming || s.stream == nil {
		rec := &streamRecord{}
		rec.buf.WriteString(text)
		ch := s.appendUnit(&Unit{
			Role:      RoleAssistant,
			Kind:      KindText,
			Content:   text,
			IsLoading: text == "",
			Copyable:  true,
		})
		rec.key = ch.Key
		s.stream = rec
		s.turn = TurnStreaming
		return []Change{ch}
	}

	if text == "" {
		return nil
	}
	s.stream.buf.WriteString(text)

	u := s.Unit(s.stream.key).with()
	u.Content = s.stream.buf.String()
	u.IsLoading = false
	return []Change{s.replaceUnit(u)}
}

// End closes the turn. The assistant unit keeps what it has; a reply that
// never received content stops showing as loading.
func (s *State) End() []Change {
	if s.turn == TurnClosed {
		return nil
	}

	changes := s.stopLoading()
	s.stream = nil
	s.turn = TurnClosed
	return changes
}

// stopLoading clears the loading flag of the streaming reply, if set.
func (s *State) stopLoading() []Change {
	if s.stream == nil {
		return nil
	}
	u := s.Unit(s.stream.key)
	if u == nil || !u.IsLoading {
		return nil
	}
	c := u.with()
	c.IsLoading = false
	return []Change{s.replaceUnit(c)}
}

// StreamingKey returns the key of the assistant unit receiving tokens, or ""
// when no reply is streaming.
func (s *State) StreamingKey() string {
	if s.stream == nil {
		return ""
	}
	return s.stream.key
}

// =============================================================================
// LIVE EVENTS
// =============================================================================

// Apply reduces one live stream event. Tool events never interrupt the
// assistant reply; tokens that follow them keep extending the same unit.
func (s *State) Apply(ev protocol.Event) []Change {
	switch e := ev.(type) {
	case protocol.TokenEvent:
		return s.Token(e.Content)

	case protocol.ToolCallEvent:
		id := e.ID
		if id == "" {
			id = s.syntheticID("tool")
		}
		return s.OnCall(id, e.Name, e.Args, e.Status)

	case protocol.ToolResultEvent:
		id := e.ID
		if id == "" {
			id = s.syntheticID("tool")
		}
		return s.OnResult(id, e.Name, e.Status, e.Output)

	case protocol.EndEvent:
		return s.End()
	}
	return nil
}
