// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/threadline/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusStreaming
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading history..."
	case StatusStreaming:
		return "Streaming..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape for the status.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading, StatusStreaming:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// NoticeLevel mirrors the session's notice severities. NoticeSuccess is
// only raised by the screen itself.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
	NoticeSuccess
)

// StatusBar is the bottom bar: status, the latest notice and key hints.
type StatusBar struct {
	Status        Status
	Notice        string
	NoticeLevel   NoticeLevel
	Spinner       string
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetNotice shows a notice until the next one replaces it.
func (s *StatusBar) SetNotice(level NoticeLevel, text string) {
	s.NoticeLevel = level
	s.Notice = text
}

// ClearNotice removes the notice.
func (s *StatusBar) ClearNotice() {
	s.Notice = ""
}

// SetSpinner sets the frame shown while loading or streaming.
func (s *StatusBar) SetSpinner(frame string) {
	s.Spinner = frame
}

// SetTheme swaps the theme after a reload.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// View renders the status bar.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}

	icon := s.Status.Icon()
	if (s.Status == StatusLoading || s.Status == StatusStreaming) && s.Spinner != "" {
		icon = s.Spinner
	}
	left := icon + " " + s.Status.String()

	if s.Notice != "" {
		left += "  " + s.renderNotice()
	}

	right := ""
	if s.ShowShortcuts {
		right = s.theme.Muted.Render(s.shortcuts())
	}

	inner := width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = inner - lipgloss.Width(left)
		if gap < 0 {
			left = lipgloss.NewStyle().MaxWidth(inner).Render(left)
			gap = 0
		}
	}
	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderNotice() string {
	switch s.NoticeLevel {
	case NoticeError:
		return styles.RenderError(s.Notice)
	case NoticeWarning:
		return styles.RenderWarning(s.Notice)
	case NoticeSuccess:
		return styles.RenderSuccess(s.Notice)
	default:
		return styles.RenderInfo(s.Notice)
	}
}

func (s *StatusBar) shortcuts() string {
	if s.Status == StatusStreaming {
		return "esc cancel | ctrl+c quit"
	}
	return "enter send | pgup/pgdn scroll | ctrl+c quit"
}
