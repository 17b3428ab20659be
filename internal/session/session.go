// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/threadline/internal/client"
	"github.com/jeranaias/threadline/internal/protocol"
	"github.com/jeranaias/threadline/internal/sse"
	"github.com/jeranaias/threadline/internal/transcript"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the transport a session uses. *client.Client implements it.
type Backend interface {
	History(ctx context.Context, threadID string) ([]byte, error)
	Stream(ctx context.Context, req client.SendRequest, fn sse.FrameFunc) error
}

// ResultCache stores tool results the server marked should_cache.
// *storage.ToolResultStore implements it.
type ResultCache interface {
	Put(ctx context.Context, threadID, tool, value string) error
}

// Sink receives everything the session publishes. Calls are serialized and
// arrive in the order the changes happened.
type Sink interface {
	Changes(changes []transcript.Change)
	Notice(n Notice)
}

// Level grades a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a one-line message for the user. Err carries the cause, if any.
type Notice struct {
	Level Level
	Text  string
	Err   error
}

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// =============================================================================
// SESSION
// =============================================================================

// Options configures a session.
type Options struct {
	ThreadID string
	Graph    string
	Cache    ResultCache // optional
}

// Session owns one thread's transcript.
type Session struct {
	backend Backend
	sink    Sink
	opts    Options

	mu     sync.Mutex // guards state, turn and cancel
	state  *transcript.State
	turn   uint64
	cancel context.CancelFunc
}

// New creates a session with an empty transcript.
func New(backend Backend, sink Sink, opts Options) *Session {
	return &Session{
		backend: backend,
		sink:    sink,
		opts:    opts,
		state:   transcript.NewState(),
	}
}

// ThreadID returns the thread this session talks to.
func (s *Session) ThreadID() string {
	return s.opts.ThreadID
}

// Graph returns the graph name sent with each message.
func (s *Session) Graph() string {
	return s.opts.Graph
}

// Units returns a snapshot of the transcript.
func (s *Session) Units() []*transcript.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Units()
}

// Turn returns the state of the current assistant turn.
func (s *Session) Turn() transcript.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Turn()
}

// =============================================================================
// HISTORY
// =============================================================================

// LoadHistory fetches the thread's stored messages and replays them.
//
// A failed fetch or an undecodable body leaves the transcript empty. Records
// that fail individually are skipped. Either way a notice is published and
// the error returned; neither is fatal.
func (s *Session) LoadHistory(ctx context.Context) error {
	body, err := s.backend.History(ctx, s.opts.ThreadID)
	if err != nil {
		log.Printf("HISTORY_FAILED | thread=%s err=%v", s.opts.ThreadID, err)
		s.notify(Notice{Level: LevelError, Text: "failed to load history: " + Describe(err), Err: err})
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.state.LoadHistory(body)
	s.publish(changes)

	var rerr *transcript.ReplayError
	switch {
	case errors.As(err, &rerr):
		log.Printf("HISTORY_PARTIAL | thread=%s skipped=%d", s.opts.ThreadID, len(rerr.Skipped))
		s.sink.Notice(Notice{
			Level: LevelWarning,
			Text:  fmt.Sprintf("skipped %d unreadable history message(s)", len(rerr.Skipped)),
			Err:   err,
		})
	case err != nil:
		log.Printf("HISTORY_FAILED | thread=%s err=%v", s.opts.ThreadID, err)
		s.sink.Notice(Notice{Level: LevelError, Text: "failed to load history: " + Describe(err), Err: err})
	default:
		log.Printf("HISTORY_LOADED | thread=%s units=%d", s.opts.ThreadID, s.state.Len())
	}
	return err
}

// =============================================================================
// SEND
// =============================================================================

// Send appends the user's message and streams the reply into the transcript.
// It blocks until the stream ends, fails, is canceled, or is superseded by
// another Send (which returns nil for the superseded call).
//
// Transport failures publish a notice and are returned; the transcript keeps
// everything received so far.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return ErrEmptyMessage
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.turn++
	turn := s.turn
	s.cancel = cancel
	s.publish(s.state.BeginTurn(text))
	s.mu.Unlock()

	log.Printf("STREAM_START | thread=%s graph=%s turn=%d", s.opts.ThreadID, s.opts.Graph, turn)

	req := client.SendRequest{Message: text, ThreadID: s.opts.ThreadID, GraphName: s.opts.Graph}
	err := s.backend.Stream(ctx, req, func(f sse.Frame) error {
		return s.handleFrame(ctx, turn, f)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.turn != turn {
		// A newer Send owns the transcript now.
		return nil
	}
	s.cancel = nil
	reply := s.state.StreamingKey()
	s.publish(s.state.End())
	log.Printf("STREAM_END | thread=%s turn=%d reply=%s", s.opts.ThreadID, turn, reply)

	if errors.Is(err, errSuperseded) {
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("STREAM_CANCELED | thread=%s turn=%d", s.opts.ThreadID, turn)
			return err
		}
		log.Printf("STREAM_FAILED | thread=%s turn=%d err=%v", s.opts.ThreadID, turn, err)
		s.sink.Notice(Notice{Level: LevelError, Text: "send failed: " + Describe(err), Err: err})
		return err
	}
	return nil
}

// Cancel stops the live stream, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// errSuperseded stops a stream whose turn was replaced.
var errSuperseded = errors.New("stream superseded by a newer send")

func (s *Session) handleFrame(ctx context.Context, turn uint64, f sse.Frame) error {
	ev, err := protocol.ParseEvent(f.Data)
	if err != nil {
		log.Printf("FRAME_DROPPED | thread=%s reason=%v", s.opts.ThreadID, err)
		return nil
	}

	s.mu.Lock()
	if s.turn != turn {
		s.mu.Unlock()
		return errSuperseded
	}
	s.publish(s.state.Apply(ev))
	s.mu.Unlock()

	if res, ok := ev.(protocol.ToolResultEvent); ok {
		s.cacheResult(ctx, res)
	}
	return nil
}

func (s *Session) cacheResult(ctx context.Context, res protocol.ToolResultEvent) {
	if s.opts.Cache == nil {
		return
	}
	value, ok := res.CacheValue()
	if !ok {
		return
	}
	if err := s.opts.Cache.Put(ctx, s.opts.ThreadID, res.Name, value); err != nil {
		log.Printf("CACHE_WRITE_FAILED | tool=%s err=%v", res.Name, err)
	}
}

// =============================================================================
// PUBLISHING
// =============================================================================

// publish must be called with s.mu held.
func (s *Session) publish(changes []transcript.Change) {
	if len(changes) > 0 {
		s.sink.Changes(changes)
	}
}

func (s *Session) notify(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.Notice(n)
}

// Describe renders an error as a short user-facing phrase.
func Describe(err error) string {
	var se *client.StatusError
	var stream *sse.StreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return se.Error()
	case errors.Is(err, client.ErrNoBody):
		return "server returned an empty response"
	case errors.As(err, &stream):
		return "connection interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return err.Error()
}
