// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jeranaias/threadline/internal/normalize"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Wire values of the "type" discriminator.
const (
	TypeToken      = "AIMessageChunk"
	TypeToolCall   = "custom_tool_call"
	TypeToolResult = "custom_tool_result"
	TypeEnd        = "end"
)

// ErrNotObject is returned for frames that are not a JSON object.
var ErrNotObject = errors.New("frame is not a JSON object")

// Event is one decoded stream event.
type Event interface {
	// Type returns the wire discriminator.
	Type() string
	sealed()
}

// TokenEvent is one chunk of assistant text.
type TokenEvent struct {
	Content string
}

// ToolCallEvent reports that the agent started a tool.
type ToolCallEvent struct {
	ID     string          // empty when the server sent none
	Name   string          // empty when the server sent none
	Args   json.RawMessage // JSON-encoded strings are already unwrapped
	Status string          // initial status, usually empty
}

// ToolResultEvent reports a finished tool.
type ToolResultEvent struct {
	ID          string
	Name        string
	Status      string // empty means success
	Output      json.RawMessage
	ShouldCache bool
}

// EndEvent closes the current turn.
type EndEvent struct{}

// UnknownEvent is any object with an unrecognized type. It is ignored.
type UnknownEvent struct {
	Kind string
	Raw  json.RawMessage
}

func (TokenEvent) Type() string      { return TypeToken }
func (ToolCallEvent) Type() string   { return TypeToolCall }
func (ToolResultEvent) Type() string { return TypeToolResult }
func (EndEvent) Type() string        { return TypeEnd }
func (e UnknownEvent) Type() string  { return e.Kind }

func (TokenEvent) sealed()      {}
func (ToolCallEvent) sealed()   {}
func (ToolResultEvent) sealed() {}
func (EndEvent) sealed()        {}
func (UnknownEvent) sealed()    {}

// CacheValue returns the output to store when the server asked for the
// result to be cached. Only named tools with string output qualify.
func (e ToolResultEvent) CacheValue() (string, bool) {
	if !e.ShouldCache || e.Name == "" || !normalize.IsString(e.Output) {
		return "", false
	}
	return gjson.ParseBytes(e.Output).Str, true
}

// =============================================================================
// PARSING
// =============================================================================

// ParseEvent decodes one frame payload. Invalid JSON and non-objects return
// an error; the caller drops the frame and keeps reading.
func ParseEvent(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid event JSON (%d bytes)", len(data))
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return nil, ErrNotObject
	}

	kind := r.Get("type").String()
	switch kind {
	case TypeToken:
		content := r.Get("content")
		if !content.Exists() {
			// A chunk without content carries nothing to append.
			return UnknownEvent{Kind: kind, Raw: clone(data)}, nil
		}
		return TokenEvent{Content: normalize.Content(json.RawMessage(content.Raw))}, nil

	case TypeToolCall:
		return ToolCallEvent{
			ID:     first(r, "tool_call_id", "id").String(),
			Name:   firstString(r, "name", "function.name", "tool_name"),
			Args:   normalize.Loose(rawOf(first(r, "args", "function.arguments", "input"))),
			Status: r.Get("status").String(),
		}, nil

	case TypeToolResult:
		return ToolResultEvent{
			ID:          first(r, "tool_call_id", "id").String(),
			Name:        r.Get("name").String(),
			Status:      r.Get("status").String(),
			Output:      rawOf(first(r, "content", "output", "result", "data")),
			ShouldCache: r.Get("should_cache").Type == gjson.True,
		}, nil

	case TypeEnd:
		return EndEvent{}, nil
	}

	return UnknownEvent{Kind: kind, Raw: clone(data)}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// first returns the first path that is present and not null.
func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// firstString returns the first path that holds a non-empty string form.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func rawOf(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

func clone(b []byte) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}
