// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jeranaias/threadline/internal/normalize"
	"github.com/jeranaias/threadline/internal/protocol"
)

// AttachmentDescription is shown on file cards rebuilt from history.
const AttachmentDescription = "attached file"

// =============================================================================
// REPLAY ERRORS
// =============================================================================

// SkippedMessage is a history record that could not be replayed.
type SkippedMessage struct {
	Index int
	Err   error
}

// ReplayError lists the records Replay skipped. Every other record was
// applied.
type ReplayError struct {
	Skipped []SkippedMessage
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	if len(e.Skipped) == 1 {
		return fmt.Sprintf("skipped history message %d: %v", e.Skipped[0].Index, e.Skipped[0].Err)
	}
	return fmt.Sprintf("skipped %d history messages (first at %d: %v)",
		len(e.Skipped), e.Skipped[0].Index, e.Skipped[0].Err)
}

// Unwrap returns the per-message errors.
func (e *ReplayError) Unwrap() []error {
	errs := make([]error, len(e.Skipped))
	for i, s := range e.Skipped {
		errs[i] = s.Err
	}
	return errs
}

// =============================================================================
// REPLAY
// =============================================================================

// LoadHistory replays a raw history body. A body that is not a JSON array
// leaves the state untouched and returns the decode error.
func (s *State) LoadHistory(body []byte) ([]Change, error) {
	records, err := protocol.SplitHistory(body)
	if err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return s.Replay(records)
}

// Replay appends units for stored records in their stored order.
//
// An ai record yields one tool_chain unit per nested call (pending, with the
// stored arguments) followed by a text unit when its content is not blank. A
// tool record resolves the latest pending entry for its call id. A human
// record yields one unit per content part, or one text unit.
//
// Each record is planned before anything is applied, so a record that fails
// to decode adds nothing. Failures are collected in a *ReplayError.
func (s *State) Replay(records []json.RawMessage) ([]Change, error) {
	var (
		changes []Change
		skipped []SkippedMessage
	)

	for i, raw := range records {
		steps, err := planMessage(raw)
		if err != nil {
			skipped = append(skipped, SkippedMessage{Index: i, Err: err})
			continue
		}
		for _, st := range steps {
			changes = append(changes, s.applyStep(st)...)
		}
	}

	if len(skipped) > 0 {
		return changes, &ReplayError{Skipped: skipped}
	}
	return changes, nil
}

// =============================================================================
// PLAN / APPLY
// =============================================================================

type stepKind int

const (
	stepCall stepKind = iota
	stepResult
	stepText
	stepFile
)

// step is one planned effect of a history record. Planning is pure; applying
// a step cannot fail.
type step struct {
	kind stepKind

	// stepCall, stepResult
	id     string // empty means synthesize one when applied
	name   string
	status string
	data   json.RawMessage // args or output

	// stepText, stepFile
	role     Role
	text     string
	copyable bool
	file     *Attachment
}

func planMessage(raw json.RawMessage) ([]step, error) {
	msg, err := protocol.DecodeMessage(raw)
	if err != nil {
		return nil, err
	}

	switch msg.Kind {
	case protocol.KindAI:
		steps := make([]step, 0, len(msg.ToolCalls)+1)
		for _, c := range msg.ToolCalls {
			steps = append(steps, step{kind: stepCall, id: c.ID, name: c.Name, data: c.Args})
		}
		if msg.HasText() {
			steps = append(steps, step{
				kind:     stepText,
				role:     RoleAssistant,
				text:     normalize.Content(msg.Content),
				copyable: true,
			})
		}
		return steps, nil

	case protocol.KindTool:
		return []step{{
			kind:   stepResult,
			id:     msg.ToolCallID,
			name:   msg.Name,
			status: msg.Status,
			data:   msg.Output,
		}}, nil

	case protocol.KindHuman:
		return planHuman(msg.Content), nil
	}

	// Records of other kinds (system prompts and the like) are not shown.
	return nil, nil
}

func planHuman(content json.RawMessage) []step {
	r := gjson.ParseBytes(content)
	if !r.IsArray() {
		return []step{{kind: stepText, role: RoleUser, text: normalize.Content(content)}}
	}

	var steps []step
	r.ForEach(func(_, part gjson.Result) bool {
		if att := attachmentOf(part); att != nil {
			steps = append(steps, step{kind: stepFile, role: RoleUser, file: att})
		} else {
			steps = append(steps, step{
				kind: stepText,
				role: RoleUser,
				text: normalize.Part(json.RawMessage(part.Raw)),
			})
		}
		return true
	})
	return steps
}

// attachmentOf returns the file carried by a text part with a filename.
func attachmentOf(part gjson.Result) *Attachment {
	if !part.IsObject() || part.Get("type").String() != "text" {
		return nil
	}
	name := strings.TrimSpace(part.Get("filename").String())
	if name == "" {
		return nil
	}
	return &Attachment{
		Name:        name,
		Description: AttachmentDescription,
		Text:        part.Get("text").String(),
	}
}

func (s *State) applyStep(st step) []Change {
	switch st.kind {
	case stepCall:
		id := st.id
		if id == "" {
			id = s.syntheticID("hist")
		}
		return s.OnCall(id, st.name, st.data, "")

	case stepResult:
		id := st.id
		if id == "" {
			id = s.syntheticID("hist")
		}
		return s.OnResult(id, st.name, st.status, st.data)

	case stepFile:
		return []Change{s.appendUnit(&Unit{Role: st.role, Kind: KindFile, File: st.file})}
	}

	return []Change{s.appendUnit(&Unit{
		Role:     st.role,
		Kind:     KindText,
		Content:  st.text,
		Copyable: st.copyable,
	})}
}
