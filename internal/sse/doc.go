// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse decodes the framed event stream returned by the chat backend.
//
// The backend answers a send with a Server-Sent-Events-like body: lines that
// start with "data:" carry one JSON event each, and a "[DONE]" payload ends
// the stream. Some deployments group several data lines into one event and
// separate events with a blank line; the decoder detects which framing a
// connection uses and handles both.
//
// # Key Types
//
//   - Decoder: push-style decoder, fed raw chunks as they arrive off the wire
//   - Frame: one decoded data frame (optional SSE event name plus payload)
//   - StreamError: read failure carrying how many frames were delivered first
//
// # Usage
//
// Decode a response body, one frame at a time:
//
//	err := sse.Stream(ctx, resp.Body, func(f sse.Frame) error {
//	    ev, err := protocol.ParseEvent(f.Data)
//	    if err != nil {
//	        return nil // malformed frame, keep going
//	    }
//	    ...
//	    return nil
//	})
//
// A Decoder is per connection. Partial lines are buffered as raw bytes, so a
// chunk boundary in the middle of a frame (or of a multi-byte character) is
// harmless: the frame is emitted once the rest of it arrives.
package sse
