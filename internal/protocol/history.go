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
// HISTORY TYPES
// =============================================================================

// Kinds of history record.
const (
	KindHuman = "human"
	KindAI    = "ai"
	KindTool  = "tool"
)

// ErrNotArray is returned when a history body is not a JSON array.
var ErrNotArray = errors.New("history is not a JSON array")

// Message is one stored conversation record.
type Message struct {
	// Kind is KindHuman, KindAI, KindTool, or whatever the server sent.
	Kind    string
	Content json.RawMessage

	// ai records
	ToolCalls []ToolCall

	// tool records
	ToolCallID string
	Name       string
	Status     string // empty means success
	Output     json.RawMessage
}

// ToolCall is one invocation nested in an ai record.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// HasText reports whether the message content renders to anything other
// than whitespace.
func (m Message) HasText() bool {
	for _, c := range normalize.Content(m.Content) {
		switch c {
		case ' ', '\t', '\n', '\r':
		default:
			return true
		}
	}
	return false
}

// =============================================================================
// DECODING
// =============================================================================

// SplitHistory checks that data is a JSON array and returns its elements in
// order. Elements are decoded one at a time with DecodeMessage so that a bad
// record does not spoil the rest.
func SplitHistory(data []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid history JSON (%d bytes)", len(data))
	}
	r := gjson.ParseBytes(data)
	if !r.IsArray() {
		return nil, ErrNotArray
	}

	var out []json.RawMessage
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, json.RawMessage(v.Raw))
		return true
	})
	return out, nil
}

// DecodeMessage decodes one history record.
func DecodeMessage(raw json.RawMessage) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return Message{}, fmt.Errorf("invalid message JSON")
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return Message{}, fmt.Errorf("message is %s, not an object", r.Type)
	}

	msg := Message{
		Kind:    messageKind(r),
		Content: rawOf(r.Get("content")),
	}

	switch msg.Kind {
	case KindAI:
		calls, err := decodeToolCalls(r)
		if err != nil {
			return Message{}, err
		}
		msg.ToolCalls = calls

	case KindTool:
		msg.ToolCallID = first(r, "tool_call_id", "tool_call.id", "id").String()
		msg.Name = firstString(r, "name", "tool_name")
		msg.Status = r.Get("status").String()
		msg.Output = rawOf(first(r, "output", "result", "data", "content"))
	}

	return msg, nil
}

func messageKind(r gjson.Result) string {
	if t := r.Get("type").String(); t != "" {
		return t
	}
	switch r.Get("role").String() {
	case "user":
		return KindHuman
	case "assistant":
		return KindAI
	case "tool":
		return KindTool
	}
	return ""
}

func decodeToolCalls(r gjson.Result) ([]ToolCall, error) {
	list := first(r, "tool_calls", "additional_kwargs.tool_calls")
	if !list.Exists() {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("tool_calls is %s, not an array", list.Type)
	}

	var (
		calls []ToolCall
		err   error
	)
	list.ForEach(func(_, c gjson.Result) bool {
		if !c.IsObject() {
			err = fmt.Errorf("tool call %d is not an object", len(calls))
			return false
		}
		calls = append(calls, ToolCall{
			ID:   first(c, "id", "tool_call_id", "call_id").String(),
			Name: firstString(c, "function.name", "name"),
			Args: normalize.Loose(rawOf(first(c, "function.arguments", "args", "input", "parameters"))),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return calls, nil
}
