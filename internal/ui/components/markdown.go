// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Markdown renders message text through glamour. A nil *Markdown or a
// renderer that failed to build passes text through unchanged.
type Markdown struct {
	renderer *glamour.TermRenderer
	style    string
	width    int
}

// NewMarkdown builds a renderer for a glamour standard style ("dark",
// "light", "notty") wrapping at width columns.
func NewMarkdown(style string, width int) *Markdown {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		r = nil
	}
	return &Markdown{renderer: r, style: style, width: width}
}

// Width returns the wrap width the renderer was built for.
func (m *Markdown) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}

// Style returns the glamour style name.
func (m *Markdown) Style() string {
	if m == nil {
		return ""
	}
	return m.style
}

// Render renders content, returning it unchanged if rendering fails.
func (m *Markdown) Render(content string) string {
	if m == nil || m.renderer == nil || strings.TrimSpace(content) == "" {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
