// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol decodes the backend's loosely-typed JSON into typed values.
//
// Live stream frames become one of a closed set of Event types. History
// records become Message values. Field names vary between backend versions,
// so every field is read through an ordered list of fallbacks rather than a
// fixed struct tag.
//
// # Key Types
//
//   - Event: sealed interface over TokenEvent, ToolCallEvent,
//     ToolResultEvent, EndEvent and UnknownEvent
//   - Message: one history record (human, ai or tool)
//   - ToolCall: a tool invocation nested in an ai history record
//
// # Field Fallbacks
//
// Live events:
//
//	tool call id   tool_call_id | id
//	tool name      name | function.name | tool_name
//	tool args      args | function.arguments | input
//	tool output    content | output | result | data
//
// History records:
//
//	tool calls     tool_calls | additional_kwargs.tool_calls
//	call id        id | tool_call_id | call_id
//	call name      function.name | name
//	call args      function.arguments | args | input | parameters
//	result id      tool_call_id | tool_call.id | id
//	result name    name | tool_name
//	result output  output | result | data | content
//
// # Usage
//
//	ev, err := protocol.ParseEvent(frame.Data)
//	if err != nil {
//	    // drop the frame, keep streaming
//	}
//	switch e := ev.(type) {
//	case protocol.TokenEvent:
//	    ...
//	}
package protocol
