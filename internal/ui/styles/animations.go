// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "time"

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// LineSpinner - Simple line rotation, used while a reply has no content
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Classic three-dot animation, used while history loads
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// =============================================================================
// TREE CONNECTORS
// =============================================================================

// TreeChars draw the entries of a tool chain card.
var TreeChars = struct {
	Tee    string
	Corner string
	Dash   string
	Pipe   string
}{
	Tee:    "+",
	Corner: "`",
	Dash:   "-",
	Pipe:   "|",
}

// RenderTreeLine creates a tree line prefix.
func RenderTreeLine(isLast bool) string {
	if isLast {
		return TreeChars.Corner + TreeChars.Dash + " "
	}
	return TreeChars.Tee + TreeChars.Dash + " "
}

// RenderTreeIndent is the continuation prefix under a tree line.
func RenderTreeIndent(isLast bool) string {
	if isLast {
		return "   "
	}
	return TreeChars.Pipe + "  "
}
