// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/threadline/internal/protocol"
	"github.com/jeranaias/threadline/internal/sse"
)

// feedStream runs body through the decoder and parser into st, the same path
// a live send takes.
func feedStream(t *testing.T, st *State, body string) {
	t.Helper()
	err := sse.Stream(context.Background(), strings.NewReader(body), func(f sse.Frame) error {
		ev, err := protocol.ParseEvent(f.Data)
		if err != nil {
			return nil
		}
		st.Apply(ev)
		return nil
	})
	require.NoError(t, err)
	st.End()
}

func contents(units []*Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = string(u.Role) + ":" + u.Content
	}
	return out
}

// =============================================================================
// TOKEN STREAMING
// =============================================================================

func TestTokenConcatenation(t *testing.T) {
	tests := [][]string{
		{"Hello"},
		{"He", "llo"},
		{"a", "", "b", "c"},
		{"", "late start"},
		{"多", "字节", " ✓"},
	}

	for _, tokens := range tests {
		st := newTestState()
		st.BeginTurn("q")
		for _, tok := range tokens {
			st.Token(tok)
		}

		units := st.Units()
		require.Len(t, units, 2)
		want := strings.Join(tokens, "")
		if units[1].Content != want {
			t.Errorf("Expected %q, got %q", want, units[1].Content)
		}
	}
}

func TestTokenReplacesWithNewIdentity(t *testing.T) {
	st := newTestState()
	st.BeginTurn("q")
	user := st.Units()[0]

	first := st.Token("a")
	second := st.Token("b")

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	if first[0].Op != OpAppend || second[0].Op != OpReplace {
		t.Errorf("Expected append then replace, got %s then %s", first[0].Op, second[0].Op)
	}
	if first[0].Key != second[0].Key {
		t.Errorf("Expected same key, got %s and %s", first[0].Key, second[0].Key)
	}
	if first[0].Unit == second[0].Unit {
		t.Error("Expected a new unit value on replace")
	}
	if first[0].Unit.Content != "a" {
		t.Errorf("Expected earlier value to keep 'a', got %q", first[0].Unit.Content)
	}
	if st.Units()[0] != user {
		t.Error("Expected untouched units to keep their identity")
	}
}

func TestLoadingFlag(t *testing.T) {
	st := newTestState()
	st.BeginTurn("q")

	changes := st.Token("")
	if !changes[0].Unit.IsLoading {
		t.Error("Expected empty first token to mark the unit loading")
	}
	if !changes[0].Unit.Copyable {
		t.Error("Expected assistant text to be copyable")
	}

	if more := st.Token(""); len(more) != 0 {
		t.Errorf("Expected empty token to change nothing, got %d changes", len(more))
	}

	changes = st.Token("x")
	if changes[0].Unit.IsLoading {
		t.Error("Expected content to clear the loading flag")
	}
}

func TestEndClearsLoading(t *testing.T) {
	st := newTestState()
	st.BeginTurn("q")
	key := st.Token("")[0].Key

	changes := st.End()
	require.Len(t, changes, 1)
	if changes[0].Key != key || changes[0].Unit.IsLoading {
		t.Errorf("Expected loading cleared on %s, got %+v", key, changes[0])
	}
	if st.Turn() != TurnClosed {
		t.Errorf("Expected closed turn, got %s", st.Turn())
	}
	if st.End() != nil {
		t.Error("Expected second End to be a no-op")
	}
}

func TestTurnTransitions(t *testing.T) {
	st := newTestState()
	if st.Turn() != TurnNone {
		t.Fatalf("Expected none, got %s", st.Turn())
	}

	st.BeginTurn("q")
	if st.Turn() != TurnAwaiting {
		t.Errorf("Expected awaiting, got %s", st.Turn())
	}

	st.Token("a")
	if st.Turn() != TurnStreaming {
		t.Errorf("Expected streaming, got %s", st.Turn())
	}
	if st.StreamingKey() == "" {
		t.Error("Expected a streaming key")
	}

	st.End()
	if st.Turn() != TurnClosed || st.StreamingKey() != "" {
		t.Errorf("Expected closed with no stream, got %s/%q", st.Turn(), st.StreamingKey())
	}

	if changes := st.Token("late"); changes != nil {
		t.Error("Expected tokens after close to be ignored")
	}
	if st.Units()[1].Content != "a" {
		t.Errorf("Expected final content 'a', got %q", st.Units()[1].Content)
	}
}

func TestBeginTurnAbandonsStream(t *testing.T) {
	st := newTestState()
	st.BeginTurn("one")
	st.Token("partial")
	st.BeginTurn("two")
	st.Token("fresh")

	want := []string{"user:one", "assistant:partial", "user:two", "assistant:fresh"}
	got := contents(st.Units())
	require.Equal(t, want, got)
}

func TestBeginTurnStopsAbandonedLoading(t *testing.T) {
	st := newTestState()
	st.BeginTurn("one")
	st.Token("")
	loading := st.Units()[1]
	require.True(t, loading.IsLoading)

	changes := st.BeginTurn("two")
	require.Len(t, changes, 2)
	if changes[0].Op != OpReplace || changes[0].Key != loading.Key || changes[0].Unit.IsLoading {
		t.Errorf("Expected the abandoned reply to stop loading first, got %+v", changes[0])
	}
	if changes[1].Op != OpAppend || changes[1].Unit.Role != RoleUser {
		t.Errorf("Expected the user message appended second, got %+v", changes[1])
	}
	for _, u := range st.Units() {
		if u.IsLoading {
			t.Errorf("Expected no unit left loading, got %s", u.Key)
		}
	}
}

// =============================================================================
// LIVE EVENTS
// =============================================================================

func TestToolEventsDoNotInterruptReply(t *testing.T) {
	st := newTestState()
	st.BeginTurn("q")

	body := strings.Join([]string{
		`data: {"type":"AIMessageChunk","content":"Let me "}`,
		`data: {"type":"custom_tool_call","tool_call_id":"t1","name":"search","args":{"q":"x"}}`,
		`data: {"type":"AIMessageChunk","content":"check. "}`,
		`data: {"type":"custom_tool_result","tool_call_id":"t1","content":"found"}`,
		`data: {"type":"AIMessageChunk","content":"Done."}`,
		`data: [DONE]`,
		``,
	}, "\n")
	feedStream(t, st, body)

	units := st.Units()
	require.Len(t, units, 3)
	if units[1].Kind != KindText || units[1].Content != "Let me check. Done." {
		t.Errorf("Expected one uninterrupted reply, got %q", units[1].Content)
	}
	if units[2].Kind != KindToolChain {
		t.Fatalf("Expected tool card after reply, got %s", units[2].Kind)
	}
	if units[2].Items[0].Status != StatusSuccess || units[2].Items[0].Description != "found" {
		t.Errorf("Expected resolved card, got %+v", units[2].Items[0])
	}
}

func TestMissingIDsSynthesized(t *testing.T) {
	st := newTestState()
	st.Apply(protocol.ToolCallEvent{Name: "a"})
	st.Apply(protocol.ToolCallEvent{Name: "b"})
	st.Apply(protocol.ToolResultEvent{Output: raw(`"r"`)})

	if st.Len() != 3 {
		t.Fatalf("Expected each id-less event to get its own card, got %d units", st.Len())
	}
	if _, ok := st.Tool("tool-0"); !ok {
		t.Error("Expected synthesized id tool-0")
	}
	if _, ok := st.Tool("tool-2"); !ok {
		t.Error("Expected synthesized id tool-2")
	}
}

func TestEndEventClosesTurn(t *testing.T) {
	st := newTestState()
	st.BeginTurn("q")
	st.Apply(protocol.TokenEvent{Content: "x"})
	st.Apply(protocol.EndEvent{})
	st.Apply(protocol.TokenEvent{Content: "y"})

	if st.Turn() != TurnClosed {
		t.Errorf("Expected closed, got %s", st.Turn())
	}
	if got := st.Units()[1].Content; got != "x" {
		t.Errorf("Expected 'x', got %q", got)
	}
}

func TestUnknownEventIgnored(t *testing.T) {
	st := newTestState()
	if changes := st.Apply(protocol.UnknownEvent{Kind: "metadata"}); changes != nil {
		t.Errorf("Expected no changes, got %d", len(changes))
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestHistoryThenSendScenario(t *testing.T) {
	st := newTestState()
	_, err := st.LoadHistory([]byte(`[{"type":"human","content":"hi"}]`))
	require.NoError(t, err)

	st.BeginTurn("hello")
	feedStream(t, st, "data: {\"type\":\"AIMessageChunk\",\"content\":\"He\"}\n"+
		"data: {\"type\":\"AIMessageChunk\",\"content\":\"llo\"}\n"+
		"data: [DONE]\n")

	want := []string{"user:hi", "user:hello", "assistant:Hello"}
	require.Equal(t, want, contents(st.Units()))
}

func TestMalformedFramesSkipped(t *testing.T) {
	st := newTestState()
	st.BeginTurn("q")
	feedStream(t, st, "data: {\"type\":\"AIMessageChunk\",\"content\":\"a\"}\n"+
		"data: {broken\n"+
		"data: [1,2]\n"+
		"data: {\"type\":\"AIMessageChunk\",\"content\":\"b\"}\n")

	if got := st.Units()[1].Content; got != "ab" {
		t.Errorf("Expected malformed frames to be dropped, got %q", got)
	}
}

func TestDecodeTwiceSameTranscript(t *testing.T) {
	body := "data: {\"type\":\"custom_tool_result\",\"content\":\"r\"}\n\n" +
		"data: {\"type\":\"AIMessageChunk\",\n" +
		"data: \"content\":\"grouped\"}\n\n" +
		"data: {\"type\":\"custom_tool_call\",\"name\":\"n\"}\n\n"

	run := func() []*Unit {
		st := NewState()
		st.BeginTurn("q")
		feedStream(t, st, body)
		return st.Units()
	}

	a, b := run(), run()
	require.Len(t, b, len(a))
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Content != b[i].Content {
			t.Errorf("Unit %d differs: %+v vs %+v", i, a[i], b[i])
		}
		require.Equal(t, a[i].Items, b[i].Items)
	}
}
