// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client talks to the agent backend over HTTP.
//
// Two endpoints are used: a history fetch that returns a thread's stored
// messages as a JSON array, and a send that posts one user message and
// answers with an event stream.
//
// # Key Types
//
//   - Client: HTTP client bound to one backend base URL
//   - SendRequest: body of a send
//   - StatusError: non-2xx response, with a trimmed body
//
// # Usage
//
//	c := client.New("http://localhost:8000/api")
//	body, err := c.History(ctx, "1")
//	err = c.Stream(ctx, client.SendRequest{Message: "hi", ThreadID: "1", GraphName: "common"},
//	    func(f sse.Frame) error { ... })
//
// Both calls honor ctx. A send has no client-side timeout: it runs until the
// server ends the stream or ctx is canceled.
package client
