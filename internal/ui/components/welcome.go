// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/threadline/internal/ui/styles"
)

// =============================================================================
// EMPTY THREAD PLACEHOLDER
// =============================================================================

// Welcome is drawn in place of the transcript while a thread has no units.
type Welcome struct {
	version  string
	threadID string
	graph    string

	width  int
	height int

	theme *styles.Theme
}

// NewWelcome creates a placeholder for theme.
func NewWelcome(theme *styles.Theme) *Welcome {
	return &Welcome{
		version: "dev",
		theme:   theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetThread sets the thread shown in the box.
func (w *Welcome) SetThread(id, graph string) {
	w.threadID = id
	w.graph = graph
}

// SetSize sets the area the placeholder is centered in.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// SetTheme swaps the theme.
func (w *Welcome) SetTheme(theme *styles.Theme) {
	w.theme = theme
}

// View renders the placeholder. Responsive: the box shrinks with the
// terminal and drops its padding when the area is too short.
func (w *Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 20
	}

	boxWidth := 48
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 20 {
		boxWidth = 20
	}

	title := w.theme.HeaderTitle.Render("threadline") + " " + w.theme.Muted.Render(w.version)
	thread := w.theme.HeaderSubtitle.Render("thread " + w.threadID + " | graph " + w.graph)
	hint := w.theme.Muted.Render("No messages yet. Type below and press enter.")

	verticalPadding := 1
	if height < 9 {
		verticalPadding = 0
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(verticalPadding, 2).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, thread, "", hint))

	// Don't center if the box is taller than the area.
	if lipgloss.Height(box) >= height {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
