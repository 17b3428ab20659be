// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	fenceOpen  = "```json\n"
	fenceClose = "\n```"

	defaultImageAlt = "image"
	defaultFileName = "file"
)

// =============================================================================
// CONTENT
// =============================================================================

// Content renders a message content value.
//
//   - string: unchanged
//   - null or absent: ""
//   - object with a string "text": that text
//   - array: each part rendered with Part and concatenated
//   - anything else: a fenced JSON block
func Content(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if !gjson.ValidBytes(raw) {
		return string(raw)
	}

	r := gjson.ParseBytes(raw)
	switch {
	case r.Type == gjson.Null:
		return ""
	case r.Type == gjson.String:
		return r.Str
	case r.IsArray():
		var sb strings.Builder
		r.ForEach(func(_, part gjson.Result) bool {
			sb.WriteString(Part(json.RawMessage(part.Raw)))
			return true
		})
		return sb.String()
	case r.IsObject():
		if text := r.Get("text"); text.Type == gjson.String {
			return text.Str
		}
	}
	return fenceOpen + indent(raw) + fenceClose
}

// Value renders an arbitrary Go value the way Content renders its JSON form.
// Values that cannot be marshaled fall back to fmt's default formatting.
func Value(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return Content(data)
}

// =============================================================================
// PARTS
// =============================================================================

// Part renders one element of a content array. The discriminator is "type",
// falling back to "kind". Arrays render as a JSON block like unknown objects;
// other non-objects render as their string form.
func Part(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return string(raw)
	}

	part := gjson.ParseBytes(raw)
	if part.IsArray() {
		return fenceOpen + indent(raw) + fenceClose + "\n"
	}
	if !part.IsObject() {
		return scalar(part)
	}

	switch partType(part) {
	case "text":
		return scalar(part.Get("text"))

	case "image", "image_url":
		url := firstString(part, "url", "image_url.url", "image_url")
		if url == "" {
			return ""
		}
		alt := firstString(part, "alt")
		if alt == "" {
			alt = defaultImageAlt
		}
		return "![" + alt + "](" + url + ")\n"

	case "file", "attachment":
		if url := firstString(part, "url"); url != "" {
			name := firstString(part, "name")
			if name == "" {
				name = defaultFileName
			}
			return "[" + name + "](" + url + ")\n"
		}
	}

	return fenceOpen + indent(raw) + fenceClose + "\n"
}

func partType(part gjson.Result) string {
	if t := part.Get("type"); t.Exists() && t.Type != gjson.Null {
		return t.String()
	}
	return part.Get("kind").String()
}

// =============================================================================
// PRETTY PRINTING
// =============================================================================

// Pretty returns strings unchanged and indents everything else with two
// spaces. Null and absent values become "".
func Pretty(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if !gjson.ValidBytes(raw) {
		return string(raw)
	}

	r := gjson.ParseBytes(raw)
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	}
	return indent(raw)
}

// Loose unwraps a value that arrived as a JSON-encoded string, so that
// "{\"q\":1}" becomes {"q":1}. Anything that does not parse stays as it was.
func Loose(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' || !gjson.ValidBytes(trimmed) {
		return raw
	}
	inner := strings.TrimSpace(gjson.ParseBytes(trimmed).Str)
	if inner == "" || !gjson.Valid(inner) {
		return raw
	}
	return json.RawMessage(inner)
}

// IsEmpty reports whether an argument value has nothing worth showing:
// absent, null, false, zero, "", {} or [].
func IsEmpty(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return true
	}
	if !gjson.ValidBytes(raw) {
		return false
	}

	r := gjson.ParseBytes(raw)
	switch r.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.String:
		return r.Str == ""
	case gjson.Number:
		return r.Num == 0
	}

	empty := true
	r.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// IsString reports whether raw is a JSON string.
func IsString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"' && gjson.ValidBytes(raw)
}

// =============================================================================
// HELPERS
// =============================================================================

// indent re-indents valid JSON, keeping key order from the source.
func indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// scalar renders a value the way string coercion would.
func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	}
	return r.Raw
}

// firstString returns the first path that holds a non-empty string.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
