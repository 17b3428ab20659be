// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// =============================================================================
// REDRAW PACING
// =============================================================================

// DefaultMaxFPS caps viewport rebuilds while tokens stream in.
const DefaultMaxFPS = 30

// redrawMsg asks the model to rebuild the viewport if anything changed.
type redrawMsg struct{}

// redrawPacer rate-limits viewport rebuilds. Changes that arrive faster than
// the limit are folded into one deferred redraw, so every change is shown
// and at most maxFPS rebuilds happen per second.
//
// Only the Bubble Tea goroutine uses it.
type redrawPacer struct {
	limiter   *rate.Limiter
	dirty     bool
	scheduled bool
}

func newRedrawPacer(maxFPS int) *redrawPacer {
	if maxFPS <= 0 || maxFPS > 120 {
		maxFPS = DefaultMaxFPS
	}
	return &redrawPacer{
		limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(maxFPS)), 1),
	}
}

// request records a change. It returns true when the caller may redraw now;
// otherwise cmd, if non-nil, delivers a redrawMsg once the limit allows.
func (p *redrawPacer) request() (now bool, cmd tea.Cmd) {
	p.dirty = true
	if p.scheduled {
		return false, nil
	}
	if p.limiter.Allow() {
		p.dirty = false
		return true, nil
	}
	p.scheduled = true
	delay := p.limiter.Reserve().Delay()
	return false, tea.Tick(delay, func(time.Time) tea.Msg { return redrawMsg{} })
}

// fire handles a redrawMsg and reports whether a redraw is due.
func (p *redrawPacer) fire() bool {
	p.scheduled = false
	if !p.dirty {
		return false
	}
	p.dirty = false
	return true
}

// flush forces the next state to be drawn, e.g. when a turn ends.
func (p *redrawPacer) flush() {
	p.dirty = false
}
