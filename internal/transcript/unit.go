// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import "strings"

// =============================================================================
// ENUMS
// =============================================================================

// Role determines placement of a unit.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind discriminates the payload of a unit.
type Kind string

const (
	KindText      Kind = "text"
	KindToolChain Kind = "tool_chain"
	KindFile      Kind = "file_attachment"
)

// Status is the lifecycle state of one tool call.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Resolved reports whether the status is terminal.
func (s Status) Resolved() bool {
	return s == StatusSuccess || s == StatusError
}

// resultStatus maps a result's wire status. Missing means success; anything
// other than "success" is an error.
func resultStatus(s string) Status {
	if s == "" || strings.EqualFold(s, string(StatusSuccess)) {
		return StatusSuccess
	}
	return StatusError
}

// callStatus maps the optional initial status of a call.
func callStatus(s string) Status {
	switch {
	case strings.EqualFold(s, string(StatusSuccess)):
		return StatusSuccess
	case strings.EqualFold(s, string(StatusError)):
		return StatusError
	}
	return StatusPending
}

// =============================================================================
// UNIT
// =============================================================================

// ToolEntry is one call inside a tool_chain unit.
type ToolEntry struct {
	Title       string
	Status      Status
	Description string // arguments while pending, output once resolved
}

// Attachment is the payload of a file_attachment unit.
type Attachment struct {
	Name        string
	Description string
	Text        string
}

// Unit is one renderable transcript entry. Treat it as immutable: the State
// replaces it rather than editing it.
type Unit struct {
	Key       string
	Role      Role
	Kind      Kind
	Content   string      // KindText
	Items     []ToolEntry // KindToolChain
	File      *Attachment // KindFile
	IsLoading bool        // assistant reply with no content yet
	Copyable  bool        // assistant text the user may want to copy out
}

// Pending returns the number of unresolved tool entries.
func (u *Unit) Pending() int {
	n := 0
	for _, it := range u.Items {
		if !it.Resolved() {
			n++
		}
	}
	return n
}

// Resolved reports whether the entry has a terminal status.
func (e ToolEntry) Resolved() bool {
	return e.Status.Resolved()
}

// with returns a shallow copy of u. Slices are shared until the caller
// replaces them.
func (u *Unit) with() *Unit {
	c := *u
	return &c
}

// =============================================================================
// CHANGES
// =============================================================================

// Op says what happened to a unit.
type Op int

const (
	// OpAppend means the unit was added at the end of the list.
	OpAppend Op = iota
	// OpReplace means the unit at Key was swapped for a new value.
	OpReplace
)

// String returns the op name.
func (o Op) String() string {
	if o == OpReplace {
		return "replace"
	}
	return "append"
}

// Change is one unit-level effect of an operation.
type Change struct {
	Op   Op
	Key  string
	Unit *Unit
}
