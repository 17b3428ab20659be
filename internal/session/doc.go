// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives one chat thread: it loads the thread's history,
// sends messages, and feeds every stream event through the transcript
// reducer, publishing each resulting change to a Sink.
//
// # Key Types
//
//   - Session: owns the transcript state and the live stream
//   - Backend: the two HTTP operations a session needs
//   - Sink: receives changes and notices, in order
//   - Notice: a one-line, non-fatal message for the user
//
// # Concurrency
//
// At most one stream is live per session. Send cancels the stream before it
// and the superseded stream stops mutating the transcript as soon as the
// new turn begins. All reducer access is serialized, so Sink methods are
// never called concurrently.
//
// # Usage
//
//	s := session.New(client.New(baseURL), sink, session.Options{ThreadID: "1", Graph: "common"})
//	if err := s.LoadHistory(ctx); err != nil {
//	    // a notice was already published; the transcript is usable
//	}
//	err := s.Send(ctx, "hello")
package session
