// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/threadline/internal/transcript"
	"github.com/jeranaias/threadline/internal/ui/styles"
	"github.com/jeranaias/threadline/internal/util"
)

// =============================================================================
// UNIT RENDERER
// =============================================================================

// RenderOptions control how units are drawn.
type RenderOptions struct {
	WordWrap      int  // cap on bubble width
	Markdown      bool // assistant text through glamour
	HighlightJSON bool // tool descriptions through chroma
}

// Renderer draws transcript units and caches each result by unit key.
// Units are immutable, so a cached string is reused for as long as the
// stored pointer and the width are unchanged; a replaced unit is the only
// one redrawn.
type Renderer struct {
	theme   *styles.Theme
	opts    RenderOptions
	width   int
	md      *Markdown
	hl      *Highlighter
	spinner string
	cache   map[string]rendered
}

type rendered struct {
	unit  *transcript.Unit
	width int
	out   string
}

// NewRenderer creates a renderer for theme.
func NewRenderer(theme *styles.Theme, opts RenderOptions) *Renderer {
	r := &Renderer{
		theme: theme,
		opts:  opts,
		width: 80,
		cache: make(map[string]rendered),
	}
	if theme.Width == 0 {
		theme.SetSize(r.width, theme.Height)
	} else {
		r.width = theme.Width
	}
	r.rebuild()
	return r
}

// SetWidth sets the terminal width. A change invalidates every cached unit.
func (r *Renderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	r.theme.SetSize(width, r.theme.Height)
	r.rebuild()
}

// SetOptions swaps render options, e.g. after a config reload.
func (r *Renderer) SetOptions(opts RenderOptions) {
	if opts == r.opts {
		return
	}
	r.opts = opts
	r.rebuild()
}

// SetTheme swaps the theme, e.g. after a config reload.
func (r *Renderer) SetTheme(theme *styles.Theme) {
	theme.SetSize(r.width, r.theme.Height)
	r.theme = theme
	r.rebuild()
}

// SetSpinnerFrame sets the frame drawn inside loading bubbles. Loading
// units are never cached so the frame animates.
func (r *Renderer) SetSpinnerFrame(frame string) {
	r.spinner = frame
}

// Options returns the active render options.
func (r *Renderer) Options() RenderOptions {
	return r.opts
}

func (r *Renderer) rebuild() {
	r.cache = make(map[string]rendered)
	inner := r.innerWidth()
	if !r.opts.Markdown {
		r.md = nil
	} else if style := r.theme.GlamourStyle(); r.md.Width() != inner || r.md.Style() != style {
		// glamour renderers are costly to build; keep one that still fits
		r.md = NewMarkdown(style, inner)
	}
	r.hl = nil
	if r.opts.HighlightJSON {
		r.hl = NewHighlighter(r.theme.ChromaStyle(), r.theme.ChromaFormatter())
	}
}

// innerWidth is the text width inside a bubble's border and padding.
func (r *Renderer) innerWidth() int {
	return r.theme.ContentWidth(r.opts.WordWrap) - 4
}

// Cached reports whether key has a cached rendering of exactly u.
func (r *Renderer) Cached(u *transcript.Unit) bool {
	c, ok := r.cache[u.Key]
	return ok && c.unit == u && c.width == r.width
}

// Render draws one unit.
func (r *Renderer) Render(u *transcript.Unit) string {
	if u == nil {
		return ""
	}
	if r.Cached(u) {
		return r.cache[u.Key].out
	}

	var out string
	switch u.Kind {
	case transcript.KindToolChain:
		out = r.renderToolChain(u)
	case transcript.KindFile:
		out = r.renderFile(u)
	default:
		out = r.renderText(u)
	}

	if !u.IsLoading {
		r.cache[u.Key] = rendered{unit: u, width: r.width, out: out}
	}
	return out
}

// RenderAll draws units separated by blank lines.
func (r *Renderer) RenderAll(units []*transcript.Unit) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, r.Render(u))
	}
	return strings.Join(parts, "\n\n")
}

// =============================================================================
// TEXT BUBBLES
// =============================================================================

func (r *Renderer) renderText(u *transcript.Unit) string {
	inner := r.innerWidth()

	if u.Role == transcript.RoleUser {
		body := lipgloss.NewStyle().Width(inner).Render(u.Content)
		bubble := r.theme.UserBubble.Render(body)
		label := r.theme.RoleLabel.Render("you")
		return lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	}

	var body string
	switch {
	case u.IsLoading:
		frame := r.spinner
		if frame == "" {
			frame = "..."
		}
		body = r.theme.Spinner.Render(frame + " thinking")
	case r.md != nil:
		body = r.md.Render(u.Content)
	default:
		body = lipgloss.NewStyle().Width(inner).Render(u.Content)
	}

	bubble := r.theme.AssistantBubble.Render(body)
	label := r.theme.RoleLabel.Render("assistant")
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// =============================================================================
// TOOL CHAIN CARD
// =============================================================================

func (r *Renderer) renderToolChain(u *transcript.Unit) string {
	inner := r.innerWidth()
	lines := make([]string, 0, len(u.Items)*2+1)

	header := "tools"
	if n := u.Pending(); n > 0 {
		header += r.theme.Muted.Render(" (" + strconv.Itoa(n) + " running)")
	}
	lines = append(lines, r.theme.ToolTitle.Render(header))

	for i, item := range u.Items {
		last := i == len(u.Items)-1
		indicator, style := r.statusStyle(item.Status)

		titleWidth := inner - util.StringWidth(indicator) - 4
		title := util.TruncateWidth(item.Title, titleWidth)
		lines = append(lines, styles.RenderTreeLine(last)+style.Render(indicator)+" "+r.theme.ToolTitle.Render(title))

		desc := StripFence(item.Description)
		if r.hl != nil {
			desc = r.hl.Description(item.Description)
		} else {
			desc = r.theme.ToolDescription.Render(desc)
		}
		indent := styles.RenderTreeIndent(last)
		for _, line := range strings.Split(desc, "\n") {
			lines = append(lines, indent+line)
		}
	}

	return r.theme.ToolCard.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) statusStyle(s transcript.Status) (string, lipgloss.Style) {
	switch s {
	case transcript.StatusSuccess:
		return styles.StatusIndicators.Success, r.theme.ToolSuccess
	case transcript.StatusError:
		return styles.StatusIndicators.Error, r.theme.ToolError
	default:
		return styles.StatusIndicators.Pending, r.theme.ToolPending
	}
}

// =============================================================================
// FILE CARD
// =============================================================================

func (r *Renderer) renderFile(u *transcript.Unit) string {
	inner := r.innerWidth()
	name, label := "file", ""
	if u.File != nil {
		name = u.File.Name
		label = u.File.Description
	}

	lines := []string{r.theme.FileName.Render(util.TruncateWidth(name, inner))}
	if label != "" {
		lines = append(lines, r.theme.FileLabel.Render(label))
	}
	return r.theme.FileCard.Render(strings.Join(lines, "\n"))
}
