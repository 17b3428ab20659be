// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// readSize is the buffer handed to each Read on the response body.
const readSize = 32 * 1024

// FrameFunc receives each decoded frame. Returning an error stops the stream
// and the error is returned from Stream unchanged.
type FrameFunc func(Frame) error

// StreamError is a read failure in the middle of a stream. Frames already
// delivered to the callback stay delivered.
type StreamError struct {
	Frames int // frames delivered before the failure
	Err    error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Frames > 0 {
		return fmt.Sprintf("stream interrupted after %d frames: %v", e.Frames, e.Err)
	}
	return fmt.Sprintf("stream interrupted: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// Stream reads r until EOF, the end-of-stream sentinel, a callback error or
// context cancellation, handing every frame to fn in wire order.
//
// EOF and the sentinel both end the stream cleanly (nil error). Cancellation
// returns ctx.Err(). Any other read error is wrapped in a *StreamError.
func Stream(ctx context.Context, r io.Reader, fn FrameFunc) error {
	dec := NewDecoder()
	buf := make([]byte, readSize)

	deliver := func(frames []Frame) error {
		for _, f := range frames {
			if err := fn(f); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if ferr := deliver(dec.Feed(buf[:n])); ferr != nil {
				return ferr
			}
			if dec.Done() {
				return nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return deliver(dec.Close())
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &StreamError{Frames: dec.Emitted(), Err: err}
		}
	}
}
