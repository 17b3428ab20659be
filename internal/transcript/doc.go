// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript reduces history records and live stream events into an
// ordered list of display units.
//
// All mutable bookkeeping (the unit list, tool-call records keyed by call id,
// and the streaming buffer of the assistant reply in flight) lives in a State
// value. A State is not safe for concurrent use; one goroutine applies events
// to it in wire order.
//
// # Key Types
//
//   - State: the reducer; owns units, tool records and the turn machine
//   - Unit: one display unit (text, tool_chain or file_attachment)
//   - ToolEntry: one call inside a tool_chain unit
//   - Change: what an operation did (append or replace one unit)
//   - KeyAllocator: hands out unit keys k-0, k-1, ...
//
// # Updates
//
// Units are never edited in place. Every transition stores a fresh *Unit at
// the same key and returns it in a Change, so a renderer can compare pointers
// to find what needs redrawing. Each operation touches at most the units it
// reports.
//
// # Usage
//
//	st := transcript.NewState()
//	changes, err := st.LoadHistory(body)
//	changes = st.BeginTurn("hello")
//	for _, ev := range events {
//	    changes = st.Apply(ev)
//	}
package transcript
