// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// =============================================================================
// FRAMING CONSTANTS
// =============================================================================

// MaxLineSize is the largest single line the decoder will buffer (4MB).
// Tool outputs can be large, but an unterminated line past this size is
// discarded up to its next newline.
const MaxLineSize = 4 * 1024 * 1024

// DoneSentinel is the payload that ends a stream.
const DoneSentinel = "[DONE]"

var (
	dataPrefix  = []byte("data:")
	eventPrefix = []byte("event:")
	doneBytes   = []byte(DoneSentinel)
)

// Framing identifies how a connection delimits its events.
type Framing int

const (
	// FramingUnknown means no evidence either way yet.
	FramingUnknown Framing = iota
	// FramingLine means every data line is a complete frame.
	FramingLine
	// FramingGrouped means data lines accumulate until a blank line.
	FramingGrouped
)

// String returns the framing name.
func (f Framing) String() string {
	switch f {
	case FramingLine:
		return "line"
	case FramingGrouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// =============================================================================
// FRAME
// =============================================================================

// Frame is one decoded data frame.
type Frame struct {
	// Event is the SSE "event:" name preceding the frame, usually empty.
	Event string
	// Data is the frame payload with the "data:" prefix and padding removed.
	Data []byte
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns raw chunks into frames. It is not safe for concurrent use;
// one connection feeds one decoder from one goroutine.
type Decoder struct {
	pending  []byte   // incomplete trailing line
	group    [][]byte // data lines waiting for a blank line or a decision
	event    string
	framing  Framing
	sawData  bool
	overflow bool
	done     bool
	emitted  int
}

// NewDecoder creates a decoder for a new connection.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Reset prepares the decoder for another connection.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// Done reports whether the end-of-stream sentinel has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Framing returns the framing detected so far.
func (d *Decoder) Framing() Framing {
	return d.framing
}

// Emitted returns the number of frames produced so far.
func (d *Decoder) Emitted() int {
	return d.emitted
}

// Feed consumes one chunk and returns every frame it completes, in order.
// Bytes after the end-of-stream sentinel are ignored.
func (d *Decoder) Feed(chunk []byte) []Frame {
	if d.done {
		return nil
	}

	d.pending = append(d.pending, chunk...)

	var out []Frame
	for !d.done {
		i := bytes.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		line := d.pending[:i]
		d.pending = d.pending[i+1:]

		if d.overflow {
			// Tail of an oversized line: drop it and resume normally.
			d.overflow = false
			continue
		}
		out = d.line(out, line)
	}

	if d.done {
		d.pending = nil
		d.group = nil
		return out
	}

	if len(d.pending) > MaxLineSize {
		d.pending = nil
		d.overflow = true
	} else if len(d.pending) == 0 {
		d.pending = nil
	} else {
		// Compact so the consumed prefix can be collected.
		d.pending = append([]byte(nil), d.pending...)
	}

	return out
}

// Close flushes whatever the connection left behind when it ended: an
// unterminated last line and any data lines still waiting for a blank line.
func (d *Decoder) Close() []Frame {
	if d.done {
		return nil
	}

	var out []Frame
	if len(d.pending) > 0 && !d.overflow {
		out = d.line(out, d.pending)
	}
	d.pending = nil
	d.overflow = false
	if !d.done {
		out = d.flush(out)
	}
	d.done = true
	return out
}

// line handles one complete line (without its newline).
func (d *Decoder) line(out []Frame, raw []byte) []Frame {
	line := bytes.TrimSpace(raw)

	if len(line) == 0 {
		return d.blank(out)
	}

	switch {
	case bytes.HasPrefix(line, dataPrefix):
		return d.data(out, bytes.TrimSpace(line[len(dataPrefix):]))
	case bytes.HasPrefix(line, eventPrefix):
		d.event = string(bytes.TrimSpace(line[len(eventPrefix):]))
	}
	// id:, retry: and ":" comments carry nothing we use.
	return out
}

// blank handles an empty line, the event separator in grouped framing.
func (d *Decoder) blank(out []Frame) []Frame {
	if d.sawData && d.framing == FramingUnknown {
		d.framing = FramingGrouped
	}
	return d.flush(out)
}

// data handles the payload of one "data:" line.
func (d *Decoder) data(out []Frame, payload []byte) []Frame {
	if len(payload) == 0 {
		return out
	}
	d.sawData = true

	if bytes.Equal(payload, doneBytes) {
		out = d.flush(out)
		d.done = true
		return out
	}

	switch d.framing {
	case FramingGrouped:
		d.group = append(d.group, clone(payload))
		return out

	case FramingLine:
		return d.emit(out, payload)
	}

	// Undetermined: complete JSON goes out immediately, fragments wait.
	valid := gjson.ValidBytes(payload)
	if len(d.group) == 0 {
		if valid {
			return d.emit(out, payload)
		}
		d.group = append(d.group, clone(payload))
		return out
	}
	if valid {
		// The held fragment never joined anything: this connection sends
		// one frame per line.
		out = d.flush(out)
		d.framing = FramingLine
		return d.emit(out, payload)
	}
	d.group = append(d.group, clone(payload))
	return out
}

// flush emits the pending group. Lines that are each complete JSON but do
// not form JSON when joined are emitted one by one.
func (d *Decoder) flush(out []Frame) []Frame {
	switch len(d.group) {
	case 0:
		return out
	case 1:
		out = d.emit(out, d.group[0])
		d.group = nil
		return out
	}

	joined := bytes.Join(d.group, []byte("\n"))
	if gjson.ValidBytes(joined) || !allValid(d.group) {
		out = d.emit(out, joined)
	} else {
		for _, g := range d.group {
			out = d.emit(out, g)
		}
	}
	d.group = nil
	return out
}

func (d *Decoder) emit(out []Frame, payload []byte) []Frame {
	out = append(out, Frame{Event: d.event, Data: clone(payload)})
	d.event = ""
	d.emitted++
	return out
}

func allValid(lines [][]byte) bool {
	for _, l := range lines {
		if !gjson.ValidBytes(l) {
			return false
		}
	}
	return true
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
