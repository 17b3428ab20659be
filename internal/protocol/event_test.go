// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEventToken(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"AIMessageChunk","content":"He"}`))
	require.NoError(t, err)

	tok, ok := ev.(TokenEvent)
	require.True(t, ok, "expected TokenEvent, got %T", ev)
	if tok.Content != "He" {
		t.Errorf("Expected content 'He', got %q", tok.Content)
	}
	if ev.Type() != TypeToken {
		t.Errorf("Expected type %s, got %s", TypeToken, ev.Type())
	}
}

func TestParseEventTokenPartsContent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"AIMessageChunk","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`))
	require.NoError(t, err)

	tok := ev.(TokenEvent)
	if tok.Content != "ab" {
		t.Errorf("Expected parts to be flattened to 'ab', got %q", tok.Content)
	}
}

func TestParseEventTokenWithoutContent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"AIMessageChunk"}`))
	require.NoError(t, err)
	if _, ok := ev.(UnknownEvent); !ok {
		t.Errorf("Expected chunk without content to be ignored, got %T", ev)
	}
}

func TestParseEventToolCallFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantID   string
		wantName string
		wantArgs string
	}{
		{
			name:     "primary fields",
			data:     `{"type":"custom_tool_call","tool_call_id":"c1","name":"search","args":{"q":"go"}}`,
			wantID:   "c1",
			wantName: "search",
			wantArgs: `{"q":"go"}`,
		},
		{
			name:     "function shape",
			data:     `{"type":"custom_tool_call","id":"c2","function":{"name":"fetch","arguments":"{\"url\":\"x\"}"}}`,
			wantID:   "c2",
			wantName: "fetch",
			wantArgs: `{"url":"x"}`,
		},
		{
			name:     "tool_name and input",
			data:     `{"type":"custom_tool_call","tool_name":"calc","input":"1+1"}`,
			wantID:   "",
			wantName: "calc",
			wantArgs: `"1+1"`,
		},
		{
			name:     "null id falls through",
			data:     `{"type":"custom_tool_call","tool_call_id":null,"id":"c3","name":"x"}`,
			wantID:   "c3",
			wantName: "x",
			wantArgs: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.data))
			require.NoError(t, err)
			call, ok := ev.(ToolCallEvent)
			require.True(t, ok, "expected ToolCallEvent, got %T", ev)

			if call.ID != tt.wantID {
				t.Errorf("Expected id %q, got %q", tt.wantID, call.ID)
			}
			if call.Name != tt.wantName {
				t.Errorf("Expected name %q, got %q", tt.wantName, call.Name)
			}
			if string(call.Args) != tt.wantArgs {
				t.Errorf("Expected args %s, got %s", tt.wantArgs, call.Args)
			}
		})
	}
}

func TestParseEventToolResult(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantOutput string
	}{
		{"content", `{"type":"custom_tool_result","tool_call_id":"x","content":"42"}`, `"42"`},
		{"output", `{"type":"custom_tool_result","id":"x","output":{"n":1}}`, `{"n":1}`},
		{"result", `{"type":"custom_tool_result","id":"x","result":[1]}`, `[1]`},
		{"data", `{"type":"custom_tool_result","id":"x","data":true}`, `true`},
		{"content wins", `{"type":"custom_tool_result","id":"x","content":"a","output":"b"}`, `"a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.data))
			require.NoError(t, err)
			res, ok := ev.(ToolResultEvent)
			require.True(t, ok, "expected ToolResultEvent, got %T", ev)

			if res.ID != "x" {
				t.Errorf("Expected id 'x', got %q", res.ID)
			}
			if string(res.Output) != tt.wantOutput {
				t.Errorf("Expected output %s, got %s", tt.wantOutput, res.Output)
			}
		})
	}
}

func TestToolResultCacheValue(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		want   string
		wantOK bool
	}{
		{"cacheable", `{"type":"custom_tool_result","name":"weather","content":"sunny","should_cache":true}`, "sunny", true},
		{"flag off", `{"type":"custom_tool_result","name":"weather","content":"sunny"}`, "", false},
		{"flag not bool", `{"type":"custom_tool_result","name":"weather","content":"sunny","should_cache":"yes"}`, "", false},
		{"no name", `{"type":"custom_tool_result","content":"sunny","should_cache":true}`, "", false},
		{"object output", `{"type":"custom_tool_result","name":"w","content":{"a":1},"should_cache":true}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.data))
			require.NoError(t, err)
			got, ok := ev.(ToolResultEvent).CacheValue()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestParseEventEndAndUnknown(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"end"}`))
	require.NoError(t, err)
	if _, ok := ev.(EndEvent); !ok {
		t.Errorf("Expected EndEvent, got %T", ev)
	}

	ev, err = ParseEvent([]byte(`{"type":"metadata","run_id":"r"}`))
	require.NoError(t, err)
	unk, ok := ev.(UnknownEvent)
	require.True(t, ok, "expected UnknownEvent, got %T", ev)
	if unk.Kind != "metadata" {
		t.Errorf("Expected kind 'metadata', got %q", unk.Kind)
	}
}

func TestParseEventErrors(t *testing.T) {
	if _, err := ParseEvent([]byte(`{"type":`)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
	if _, err := ParseEvent([]byte(`oops`)); err == nil {
		t.Error("Expected error for non-JSON payload")
	}
	_, err := ParseEvent([]byte(`[1,2]`))
	if !errors.Is(err, ErrNotObject) {
		t.Errorf("Expected ErrNotObject, got %v", err)
	}
}
