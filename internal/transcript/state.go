// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strconv"
	"strings"
)

// =============================================================================
// TURN STATE
// =============================================================================

// Turn is the state of the assistant reply in flight.
type Turn int

const (
	// TurnNone means no turn has started.
	TurnNone Turn = iota
	// TurnAwaiting means a message was sent and no token has arrived.
	TurnAwaiting
	// TurnStreaming means tokens are being appended to an assistant unit.
	TurnStreaming
	// TurnClosed means the stream ended. The last unit keeps its content.
	TurnClosed
)

// String returns the turn name.
func (t Turn) String() string {
	switch t {
	case TurnAwaiting:
		return "awaiting"
	case TurnStreaming:
		return "streaming"
	case TurnClosed:
		return "closed"
	default:
		return "none"
	}
}

// =============================================================================
// RECORDS
// =============================================================================

// ToolRecord ties a tool-call id to the unit that displays it.
type ToolRecord struct {
	UnitKey string
	Entries []ToolEntry

	// unclaimed holds indexes of entries a result created before any call
	// was seen. A later call under the same id takes one over instead of
	// opening a new entry.
	unclaimed []int
}

// streamRecord accumulates the assistant reply in flight.
type streamRecord struct {
	key string
	buf strings.Builder
}

// =============================================================================
// STATE
// =============================================================================

// State is the transcript reducer.
type State struct {
	keys  *KeyAllocator
	units []*Unit
	index map[string]int
	tools map[string]*ToolRecord

	turn   Turn
	stream *streamRecord

	synthetic int // counter for ids the server left out
}

// NewState creates an empty transcript using the process-wide key allocator.
func NewState() *State {
	return NewStateWithKeys(&processKeys)
}

// NewStateWithKeys creates an empty transcript that draws keys from a.
func NewStateWithKeys(a *KeyAllocator) *State {
	return &State{
		keys:  a,
		index: make(map[string]int),
		tools: make(map[string]*ToolRecord),
	}
}

// Units returns the units in display order. The slice is a copy; the units
// themselves are shared and must not be modified.
func (s *State) Units() []*Unit {
	out := make([]*Unit, len(s.units))
	copy(out, s.units)
	return out
}

// Len returns the number of units.
func (s *State) Len() int {
	return len(s.units)
}

// Unit returns the current unit at key, or nil.
func (s *State) Unit(key string) *Unit {
	i, ok := s.index[key]
	if !ok {
		return nil
	}
	return s.units[i]
}

// Turn returns the state of the current assistant turn.
func (s *State) Turn() Turn {
	return s.turn
}

// Tool returns a copy of the record for a tool-call id.
func (s *State) Tool(id string) (ToolRecord, bool) {
	rec, ok := s.tools[id]
	if !ok {
		return ToolRecord{}, false
	}
	c := *rec
	c.Entries = append([]ToolEntry(nil), rec.Entries...)
	c.unclaimed = nil
	return c, true
}

// =============================================================================
// UNIT LIST PRIMITIVES
// =============================================================================

func (s *State) appendUnit(u *Unit) Change {
	u.Key = s.keys.Next()
	s.index[u.Key] = len(s.units)
	s.units = append(s.units, u)
	return Change{Op: OpAppend, Key: u.Key, Unit: u}
}

func (s *State) replaceUnit(u *Unit) Change {
	s.units[s.index[u.Key]] = u
	return Change{Op: OpReplace, Key: u.Key, Unit: u}
}

func (s *State) syntheticID(prefix string) string {
	id := prefix + "-" + strconv.Itoa(s.synthetic)
	s.synthetic++
	return id
}
