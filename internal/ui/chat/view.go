// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the chat screen.
// Layout: header (1 line) + transcript (viewport) + input (2 lines) + status (1 line).
//
// The viewport height is fixed in handleResize; keep the reserved line count
// there in step with the components drawn here.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.viewport.View(),
		m.renderInput(),
		m.status.View(),
	)
}

func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}
