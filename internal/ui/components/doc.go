// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces of the threadline TUI.

# Core Components

Renderer (unit.go) - Draws transcript units: text bubbles, tool chain
cards and file cards. Output is cached per unit key and reused while the
stored *transcript.Unit pointer is unchanged, so a Change that replaces
one unit redraws only that unit.

Markdown (markdown.go) - glamour renderer for assistant text.

Highlighter (highlight.go) - chroma JSON highlighting for tool arguments
and outputs.

Header (header.go) - Title bar with thread, graph and server.

StatusBar (statusbar.go) - Status, latest session notice and key hints.

Welcome (welcome.go) - Placeholder drawn while a thread is empty.

# Usage

	theme := styles.NewTheme(styles.ModeAuto)
	r := components.NewRenderer(theme, components.RenderOptions{
	    WordWrap:      100,
	    Markdown:      true,
	    HighlightJSON: true,
	})
	view := r.RenderAll(list.Units())
*/
package components
