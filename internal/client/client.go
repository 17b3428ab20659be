// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/threadline/internal/sse"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultHistoryPath is appended to the base URL for history fetches.
	DefaultHistoryPath = "/chat/json"

	// DefaultSendPath is appended to the base URL for sends.
	DefaultSendPath = "/chat/tokens"

	// DefaultTimeout bounds history fetches. Sends are bounded by ctx only.
	DefaultTimeout = 30 * time.Second

	// MaxHistorySize is the largest history body accepted (32MB).
	MaxHistorySize = 32 * 1024 * 1024

	// maxErrorBody is how much of an error response is kept for messages.
	maxErrorBody = 4 * 1024
)

var (
	// sharedHTTPClient serves history fetches.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient serves sends (no timeout, context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoBody is returned when a successful response carries no body.
var ErrNoBody = errors.New("response has no body")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string // first few KB, trimmed
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if text == "" {
		text = "unexpected status"
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.Code, text, e.Body)
	}
	return fmt.Sprintf("HTTP %d %s", e.Code, text)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// =============================================================================
// CLIENT
// =============================================================================

// SendRequest is the body of a send.
type SendRequest struct {
	Message   string `json:"message"`
	ThreadID  string `json:"thread_id"`
	GraphName string `json:"graph_name"`
}

// Client talks to one backend.
type Client struct {
	baseURL     string
	historyPath string
	sendPath    string
	userAgent   string

	httpClient   *http.Client
	streamClient *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		historyPath:  DefaultHistoryPath,
		sendPath:     DefaultSendPath,
		userAgent:    "threadline",
		httpClient:   sharedHTTPClient,
		streamClient: sharedStreamingClient,
	}
}

// WithPaths overrides the endpoint paths. Empty values keep the defaults.
func (c *Client) WithPaths(historyPath, sendPath string) *Client {
	if historyPath != "" {
		c.historyPath = "/" + strings.TrimLeft(historyPath, "/")
	}
	if sendPath != "" {
		c.sendPath = "/" + strings.TrimLeft(sendPath, "/")
	}
	return c
}

// WithHTTPClient uses hc for both endpoints. Its Timeout, if any, also
// applies to sends.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.streamClient = hc
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// BaseURL returns the base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HistoryURL returns the history endpoint for a thread.
func (c *Client) HistoryURL(threadID string) string {
	return c.baseURL + c.historyPath + "?thread_id=" + url.QueryEscape(threadID)
}

// SendURL returns the send endpoint.
func (c *Client) SendURL() string {
	return c.baseURL + c.sendPath
}

// =============================================================================
// HISTORY
// =============================================================================

// History fetches the stored messages of a thread and returns the raw body.
func (c *Client) History(ctx context.Context, threadID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HistoryURL(threadID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("HISTORY_FETCH | thread=%s status=%d duration=%v", threadID, resp.StatusCode, time.Since(start))

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxHistorySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(body) > MaxHistorySize {
		return nil, fmt.Errorf("history exceeded maximum size of %d bytes", MaxHistorySize)
	}
	return body, nil
}

// =============================================================================
// SEND
// =============================================================================

// Send posts a message and returns the open event stream. The caller must
// close it.
func (c *Client) Send(ctx context.Context, sr SendRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(sr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SendURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}

	log.Printf("STREAM_OPEN | thread=%s graph=%s status=%d", sr.ThreadID, sr.GraphName, resp.StatusCode)

	if err := checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// Stream posts a message and hands every frame of the reply to fn, in wire
// order, until the stream ends. See sse.Stream for the error contract.
func (c *Client) Stream(ctx context.Context, sr SendRequest, fn sse.FrameFunc) error {
	body, err := c.Send(ctx, sr)
	if err != nil {
		return err
	}
	defer body.Close()

	start := time.Now()
	err = sse.Stream(ctx, body, fn)
	log.Printf("STREAM_END | thread=%s duration=%v err=%v", sr.ThreadID, time.Since(start), err)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func checkResponse(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return ErrNoBody
	}
	return nil
}
