// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/threadline/internal/ui/styles"
)

// =============================================================================
// HEADER TESTS
// =============================================================================

func TestNewHeader(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeDark))

	if h.Title != "threadline" {
		t.Errorf("NewHeader() Title = %q, want %q", h.Title, "threadline")
	}
	if h.Width != 80 {
		t.Errorf("NewHeader() Width = %d, want 80", h.Width)
	}
}

func TestHeaderView(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeDark))
	h.SetThread("42", "common")
	h.SetServer("http://localhost:8000/api")
	h.SetWidth(100)

	view := h.View()
	for _, want := range []string{"threadline", "thread 42", "graph common", "localhost:8000"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected header to contain %q, got %q", want, view)
		}
	}
	if w := lipgloss.Width(view); w != 100 {
		t.Errorf("Expected header width 100, got %d", w)
	}
}

func TestHeaderNarrow(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeDark))
	h.SetThread(strings.Repeat("t", 60), "common")
	h.SetWidth(30)

	if w := lipgloss.Width(h.View()); w > 30 {
		t.Errorf("Expected header to fit 30 columns, got %d", w)
	}
}

func TestHeaderSetServerInvalid(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeDark))
	h.SetServer("not a url")
	if h.Server != "not a url" {
		t.Errorf("Expected raw value for unparsable URL, got %q", h.Server)
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusLoading, "Loading history..."},
		{StatusStreaming, "Streaming..."},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}
	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestStatusBarView(t *testing.T) {
	s := NewStatusBar(styles.NewTheme(styles.ModeDark))
	s.SetWidth(120)
	s.SetNotice(NoticeWarning, "skipped 1 unreadable history message(s)")

	view := s.View()
	if !strings.Contains(view, "Ready") || !strings.Contains(view, "skipped 1") {
		t.Errorf("Expected status and notice, got %q", view)
	}
	if !strings.Contains(view, "enter send") {
		t.Errorf("Expected idle shortcuts, got %q", view)
	}

	s.SetStatus(StatusStreaming)
	s.SetSpinner("/")
	s.ClearNotice()
	view = s.View()
	if !strings.Contains(view, "/ Streaming...") || !strings.Contains(view, "esc cancel") {
		t.Errorf("Expected streaming status with spinner, got %q", view)
	}
}

func TestStatusBarNarrowDropsShortcuts(t *testing.T) {
	s := NewStatusBar(styles.NewTheme(styles.ModeDark))
	s.SetWidth(24)
	s.SetNotice(NoticeError, "send failed: connection interrupted")

	view := s.View()
	if strings.Contains(view, "ctrl+c") {
		t.Errorf("Expected shortcuts dropped on narrow bar, got %q", view)
	}
	if w := lipgloss.Width(view); w > 24 {
		t.Errorf("Expected bar to fit 24 columns, got %d", w)
	}
}

func TestWelcomeView(t *testing.T) {
	w := NewWelcome(styles.NewTheme(styles.ModeDark))
	w.SetVersion("1.2.3")
	w.SetThread("7", "common")
	w.SetSize(80, 20)

	view := w.View()
	for _, want := range []string{"threadline", "1.2.3", "thread 7", "graph common"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in welcome view, got %q", want, view)
		}
	}
	if h := lipgloss.Height(view); h != 20 {
		t.Errorf("Expected welcome to fill 20 lines, got %d", h)
	}

	w.SetSize(80, 4)
	if h := lipgloss.Height(w.View()); h < 4 {
		t.Errorf("Expected an uncentered box on a short area, got height %d", h)
	}
}
