// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the threadline TUI.

This package defines the color palette, the Theme of prepared lipgloss
styles, and the small animation tables used by the chat view. All colors
use Lip Gloss AdaptiveColor; NewTheme fixes which half applies.

# Color System (colors.go)

  - Purple - Assistant messages and spinners
  - Cyan - Brand color, prompt and user highlights
  - Emerald - Successful tool calls
  - Amber - Pending tool calls and warnings
  - Rose - Failed tool calls and errors
  - Blue - File attachments and info notices

Status shapes ([OK], [X], [ ]) always accompany status colors.

# Theme (theme.go)

The ui.theme setting maps to a Mode. ModeAuto asks termenv whether the
terminal background is dark; ModeDark and ModeLight force the answer. The
Theme also names the glamour and chroma styles that match the background
so markdown and JSON highlighting agree with the bubbles around them.

# Usage

	theme := styles.NewTheme(styles.ParseMode(cfg.UI.Theme))
	theme.SetSize(width, height)
	bubble := theme.AssistantBubble.Width(theme.ContentWidth(cfg.UI.WordWrap))
*/
package styles
