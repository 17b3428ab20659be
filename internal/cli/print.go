// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// print.go - Line-mode transcript output for chat, ask and history.

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/transcript"
	"github.com/jeranaias/threadline/internal/ui/components"
	"github.com/jeranaias/threadline/internal/util"
)

// =============================================================================
// LIVE PRINTER
// =============================================================================

// linePrinter is a session.Sink that writes changes as plain lines. Growing
// assistant text is written as deltas so tokens appear as they arrive; tool
// calls are written once when they start and again when they resolve.
type linePrinter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	raw         bool // assistant text only, no labels
	echoUser    bool // print user units (history replay)
	quietErrors bool // error notices are returned to the caller instead

	printed map[string]string              // assistant text written per key
	tools   map[string][]transcript.Status // tool statuses written per key
	open    bool                           // a text line is unterminated
	lastNL  bool                           // last byte written was a newline
}

func newLinePrinter(out, errOut io.Writer, raw bool) *linePrinter {
	return &linePrinter{
		out:     out,
		errOut:  errOut,
		raw:     raw,
		printed: make(map[string]string),
		tools:   make(map[string][]transcript.Status),
		lastNL:  true,
	}
}

// SetEchoUser toggles printing of user units.
func (p *linePrinter) SetEchoUser(on bool) {
	p.mu.Lock()
	p.echoUser = on
	p.mu.Unlock()
}

// Changes implements session.Sink.
func (p *linePrinter) Changes(changes []transcript.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range changes {
		if c.Unit != nil {
			p.unit(c.Unit)
		}
	}
}

// Notice implements session.Sink.
func (p *linePrinter) Notice(n session.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n.Level == session.LevelError && p.quietErrors {
		return
	}
	p.breakLine()
	switch n.Level {
	case session.LevelError:
		fmt.Fprintf(p.errOut, "%s %s\n", ErrorStyle.Render("[X]"), n.Text)
	case session.LevelWarning:
		fmt.Fprintf(p.errOut, "%s %s\n", WarningStyle.Render("[!]"), n.Text)
	default:
		fmt.Fprintf(p.errOut, "%s %s\n", DimStyle.Render("[i]"), n.Text)
	}
}

// Finish terminates an open text line.
func (p *linePrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.breakLine()
}

func (p *linePrinter) unit(u *transcript.Unit) {
	switch u.Kind {
	case transcript.KindToolChain:
		if !p.raw {
			p.toolChain(u)
		}
	case transcript.KindFile:
		if !p.raw && u.File != nil {
			p.breakLine()
			line := "  [file] " + u.File.Name
			if label := util.FirstLine(u.File.Description); label != "" {
				line += " - " + label
			}
			p.write(line + "\n")
		}
	default:
		if u.Role == transcript.RoleUser {
			if p.echoUser && !p.raw {
				p.breakLine()
				p.write(UserStyle.Render("you>") + " " + u.Content + "\n")
			}
			return
		}
		p.text(u)
	}
}

func (p *linePrinter) text(u *transcript.Unit) {
	if u.IsLoading {
		return
	}
	prev, seen := p.printed[u.Key]
	switch {
	case !seen:
		p.breakLine()
		if !p.raw {
			p.write(AssistantStyle.Render("assistant>") + " ")
		}
		p.write(u.Content)
	case strings.HasPrefix(u.Content, prev):
		p.write(u.Content[len(prev):])
	default:
		p.breakLine()
		p.write(u.Content)
	}
	p.printed[u.Key] = u.Content
	p.open = true
}

func (p *linePrinter) toolChain(u *transcript.Unit) {
	known := p.tools[u.Key]
	for i, it := range u.Items {
		if i < len(known) && known[i] == it.Status {
			continue
		}
		p.breakLine()
		p.write(fmt.Sprintf("  %s %s\n", RenderToolStatus(it.Status), it.Title))
		if i < len(known) {
			known[i] = it.Status
		} else {
			known = append(known, it.Status)
		}
	}
	p.tools[u.Key] = known
}

func (p *linePrinter) breakLine() {
	if p.open && !p.lastNL {
		p.write("\n")
	}
	p.open = false
}

func (p *linePrinter) write(s string) {
	if s == "" {
		return
	}
	io.WriteString(p.out, s)
	p.lastNL = strings.HasSuffix(s, "\n")
}

// =============================================================================
// STATIC TRANSCRIPT
// =============================================================================

// newMarkdown returns a glamour renderer for width, or nil if it cannot be
// built.
func newMarkdown(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderTranscript writes finished units. md may be nil for plain text.
func renderTranscript(w io.Writer, units []*transcript.Unit, md *glamour.TermRenderer) {
	for i, u := range units {
		if i > 0 {
			io.WriteString(w, "\n")
		}
		renderUnit(w, u, md)
	}
}

func renderUnit(w io.Writer, u *transcript.Unit, md *glamour.TermRenderer) {
	switch u.Kind {
	case transcript.KindToolChain:
		fmt.Fprintln(w, DimStyle.Render("tools"))
		for _, it := range u.Items {
			fmt.Fprintf(w, "  %s %s\n", RenderToolStatus(it.Status), it.Title)
			desc := strings.TrimSpace(components.StripFence(it.Description))
			if desc == "" {
				continue
			}
			for _, line := range strings.Split(desc, "\n") {
				fmt.Fprintf(w, "      %s\n", DimStyle.Render(line))
			}
		}

	case transcript.KindFile:
		if u.File == nil {
			return
		}
		fmt.Fprintf(w, "[file] %s", u.File.Name)
		if u.File.Description != "" {
			fmt.Fprintf(w, " - %s", u.File.Description)
		}
		fmt.Fprintln(w)

	default:
		if u.Role == transcript.RoleUser {
			fmt.Fprintf(w, "%s %s\n", UserStyle.Render("you>"), u.Content)
			return
		}
		fmt.Fprintln(w, AssistantStyle.Render("assistant>"))
		body := u.Content
		if md != nil {
			if out, err := md.Render(body); err == nil {
				body = strings.Trim(out, "\n")
			}
		}
		fmt.Fprintln(w, body)
	}
}
