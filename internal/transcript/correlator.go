// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"encoding/json"

	"github.com/jeranaias/threadline/internal/normalize"
)

// Placeholder text for tool entries.
const (
	NoArguments      = "no arguments"
	WaitingForResult = "waiting for result…"
	untitledTool     = "tool call"
)

// =============================================================================
// TOOL-CALL CORRELATION
// =============================================================================

// OnCall records the start of a tool call.
//
// The first sighting of id appends a tool_chain unit with one entry. A
// repeated id appends another entry to the same unit, unless an earlier
// result created an entry that no call has claimed yet; that entry is
// claimed instead, keeping its resolved status.
func (s *State) OnCall(id, name string, args json.RawMessage, initialStatus string) []Change {
	entry := ToolEntry{
		Title:       toolTitle(name),
		Status:      callStatus(initialStatus),
		Description: describeArgs(args),
	}

	rec, ok := s.tools[id]
	if !ok {
		unit := &Unit{
			Role:  RoleAssistant,
			Kind:  KindToolChain,
			Items: []ToolEntry{entry},
		}
		ch := s.appendUnit(unit)
		s.tools[id] = &ToolRecord{UnitKey: ch.Key, Entries: unit.Items}
		return []Change{ch}
	}

	entries := append([]ToolEntry(nil), rec.Entries...)
	if len(rec.unclaimed) > 0 {
		i := rec.unclaimed[0]
		rec.unclaimed = rec.unclaimed[1:]
		if name != "" {
			entries[i].Title = entry.Title
		}
	} else {
		entries = append(entries, entry)
	}
	return []Change{s.setEntries(rec, entries)}
}

// OnResult records the outcome of a tool call.
//
// The most recent pending entry under id is resolved. With overlapping calls
// that share one id this is LIFO, which may not match the call the result
// actually answers. When every entry is already resolved the last one is
// overwritten. An id never seen gets a placeholder entry, resolved at once,
// which a later call claims.
func (s *State) OnResult(id, name, status string, output json.RawMessage) []Change {
	rec, existed := s.tools[id]
	if !existed {
		rec = &ToolRecord{}
		s.tools[id] = rec
	}

	entries := append([]ToolEntry(nil), rec.Entries...)
	i := lastPending(entries)
	if i < 0 && len(entries) > 0 {
		i = len(entries) - 1
	}
	if i < 0 {
		entries = append(entries, ToolEntry{
			Title:       toolTitle(name),
			Status:      StatusPending,
			Description: WaitingForResult,
		})
		i = len(entries) - 1
		rec.unclaimed = append(rec.unclaimed, i)
	}

	entries[i].Status = resultStatus(status)
	entries[i].Description = describeOutput(output)

	if !existed {
		unit := &Unit{
			Role:  RoleAssistant,
			Kind:  KindToolChain,
			Items: entries,
		}
		ch := s.appendUnit(unit)
		rec.UnitKey = ch.Key
		rec.Entries = entries
		return []Change{ch}
	}
	return []Change{s.setEntries(rec, entries)}
}

// setEntries swaps in a new entries slice and a new unit value.
func (s *State) setEntries(rec *ToolRecord, entries []ToolEntry) Change {
	rec.Entries = entries
	u := s.Unit(rec.UnitKey).with()
	u.Items = entries
	return s.replaceUnit(u)
}

// =============================================================================
// HELPERS
// =============================================================================

func lastPending(entries []ToolEntry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].Resolved() {
			return i
		}
	}
	return -1
}

func toolTitle(name string) string {
	if name == "" {
		return untitledTool
	}
	return "invoke " + name
}

func describeArgs(args json.RawMessage) string {
	args = normalize.Loose(args)
	if normalize.IsEmpty(args) {
		return NoArguments
	}
	return normalize.Pretty(args)
}

func describeOutput(output json.RawMessage) string {
	return normalize.Pretty(normalize.Loose(output))
}
