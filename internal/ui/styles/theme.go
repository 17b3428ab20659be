// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME MODE
// =============================================================================

// Mode selects light or dark rendering.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode maps a config value to a Mode; unknown values mean auto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDark:
		return ModeDark
	case ModeLight:
		return ModeLight
	default:
		return ModeAuto
	}
}

// backgroundProbe reports whether the terminal background is dark.
// Replaced in tests so auto mode does not query the terminal.
var backgroundProbe = termenv.HasDarkBackground

// IsDark resolves a mode to a concrete background.
func (m Mode) IsDark() bool {
	switch m {
	case ModeDark:
		return true
	case ModeLight:
		return false
	default:
		return backgroundProbe()
	}
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds all the styled components for the application.
type Theme struct {
	Mode         Mode
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// Message bubbles
	RoleLabel       lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style

	// Tool chain card
	ToolCard        lipgloss.Style
	ToolTitle       lipgloss.Style
	ToolPending     lipgloss.Style
	ToolSuccess     lipgloss.Style
	ToolError       lipgloss.Style
	ToolDescription lipgloss.Style

	// File attachment card
	FileCard  lipgloss.Style
	FileName  lipgloss.Style
	FileLabel lipgloss.Style

	// Input and status
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	Muted          lipgloss.Style
	Spinner        lipgloss.Style
}

// NewTheme creates a theme for mode and makes lipgloss resolve adaptive
// colors to the same background.
func NewTheme(mode Mode) *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		Mode:         mode,
		IsDark:       mode.IsDark(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	lipgloss.SetHasDarkBackground(t.IsDark)
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// ChromaStyle names the chroma style used for JSON highlighting.
func (t *Theme) ChromaStyle() string {
	if t.IsDark {
		return "catppuccin-mocha"
	}
	return "catppuccin-latte"
}

// ChromaFormatter names the chroma terminal formatter for the color profile.
func (t *Theme) ChromaFormatter() string {
	switch t.ColorProfile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.Ascii:
		return "noop"
	default:
		return "terminal"
	}
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ToolCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(ToolCardBorder).
		PaddingLeft(1)

	t.ToolTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ToolPending = lipgloss.NewStyle().Foreground(Amber)
	t.ToolSuccess = lipgloss.NewStyle().Foreground(Emerald)
	t.ToolError = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.ToolDescription = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FileCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(0, 1).
		MarginLeft(4)

	t.FileName = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.FileLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth is the usable width for a bubble, capped by wrap.
func (t *Theme) ContentWidth(wrap int) int {
	w := t.Width - 8
	if wrap > 0 && w > wrap {
		w = wrap
	}
	if w < 20 {
		w = 20
	}
	return w
}
