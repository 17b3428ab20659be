// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/tidwall/gjson"
)

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// Highlighter colors tool arguments and outputs.
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
	lexer     chroma.Lexer
}

// NewHighlighter creates a JSON highlighter using the named chroma style and
// terminal formatter. Unknown names fall back to chroma's defaults.
func NewHighlighter(styleName, formatterName string) *Highlighter {
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		style:     style,
		formatter: formatter,
		lexer:     chroma.Coalesce(lexer),
	}
}

// Description highlights a tool entry description. Descriptions are either
// a JSON fence produced by the normalizer, bare JSON, or free text; only
// the JSON forms are colored.
func (h *Highlighter) Description(desc string) string {
	if h == nil {
		return desc
	}
	if body, ok := jsonFence(desc); ok {
		return h.JSON(body)
	}
	trimmed := strings.TrimSpace(desc)
	if (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && gjson.Valid(trimmed) {
		return h.JSON(trimmed)
	}
	return desc
}

// JSON highlights code as JSON, returning it unchanged on failure.
func (h *Highlighter) JSON(code string) string {
	iterator, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// jsonFence extracts the body of a ```json fenced block spanning all of s.
func jsonFence(s string) (string, bool) {
	s = strings.TrimSpace(s)
	const open, closing = "```json\n", "\n```"
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, closing) || len(s) < len(open)+len(closing) {
		return "", false
	}
	return s[len(open) : len(s)-len(closing)], true
}

// StripFence returns the body of a ```json fence, or s unchanged. Plain
// output (no highlighting) uses it so cards show JSON without backticks.
func StripFence(s string) string {
	if body, ok := jsonFence(s); ok {
		return body
	}
	return s
}
