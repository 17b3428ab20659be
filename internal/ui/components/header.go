// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/threadline/internal/ui/styles"
	"github.com/jeranaias/threadline/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the single-line title bar: brand, thread, graph and server.
type Header struct {
	Title    string
	ThreadID string
	Graph    string
	Server   string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "threadline",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetThread updates the thread and graph shown.
func (h *Header) SetThread(id, graph string) {
	h.ThreadID = id
	h.Graph = graph
}

// SetServer shows the host of baseURL.
func (h *Header) SetServer(baseURL string) {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		h.Server = u.Host
		return
	}
	h.Server = baseURL
}

// SetTheme swaps the theme after a reload.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	brand := h.theme.HeaderTitle.Render("< " + h.Title + " >")

	var parts []string
	if h.ThreadID != "" {
		parts = append(parts, "thread "+h.ThreadID)
	}
	if h.Graph != "" {
		parts = append(parts, "graph "+h.Graph)
	}
	if h.Server != "" {
		parts = append(parts, h.Server)
	}
	subtitle := strings.Join(parts, " | ")

	// Header has one column of padding on each side.
	room := width - 2 - lipgloss.Width(brand) - 1
	if room > 0 && subtitle != "" {
		brand += " " + h.theme.HeaderSubtitle.Render(util.TruncateWidth(subtitle, room))
	}

	return h.theme.Header.Width(width).Render(brand)
}
