// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/threadline/internal/config"
	"github.com/jeranaias/threadline/internal/session"
	"github.com/jeranaias/threadline/internal/transcript"
	"github.com/jeranaias/threadline/internal/ui/components"
	"github.com/jeranaias/threadline/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the input state of the chat view.
type State int

const (
	// StateLoadingHistory disables input until the thread history is in.
	StateLoadingHistory State = iota
	// StateReady accepts input.
	StateReady
	// StateStreaming has at least one send in flight. Input stays enabled;
	// a new send supersedes the running one.
	StateStreaming
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoadingHistory:
		return "loading"
	case StateStreaming:
		return "streaming"
	default:
		return "ready"
	}
}

// Conversation is what the chat view drives. *session.Session implements it.
type Conversation interface {
	ThreadID() string
	Graph() string
	LoadHistory(ctx context.Context) error
	Send(ctx context.Context, text string) error
}

// HistoryTimeout bounds the initial history load when the configuration
// sets no timeout.
const HistoryTimeout = 30 * time.Second

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat screen. It keeps its own copy of
// the transcript, built only from ChangesMsg, and never reads session state.
type Model struct {
	conv  Conversation
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap

	list     *transcript.List
	renderer *components.Renderer
	header   *components.Header
	status   *components.StatusBar
	welcome  *components.Welcome
	pacer    *redrawPacer

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	state     State
	inflight  int
	follow    bool
	cancelMgr *cancelManager

	width  int
	height int
}

// New creates a chat model for conv using cfg's UI and server settings.
func New(conv Conversation, cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	theme := styles.NewTheme(styles.ParseMode(cfg.UI.Theme))

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = "Loading history..."
	ti.CharLimit = 8192
	ti.Blur()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinnerFrom(styles.DotsSpinner)

	header := components.NewHeader(theme)
	header.SetThread(conv.ThreadID(), conv.Graph())
	header.SetServer(cfg.Server.BaseURL)

	status := components.NewStatusBar(theme)
	status.SetStatus(components.StatusLoading)

	welcome := components.NewWelcome(theme)
	welcome.SetThread(conv.ThreadID(), conv.Graph())
	welcome.SetSize(vp.Width, vp.Height)

	return Model{
		conv:      conv,
		cfg:       cfg,
		theme:     theme,
		keys:      DefaultKeyMap(),
		list:      transcript.NewList(),
		renderer:  components.NewRenderer(theme, renderOptions(cfg)),
		header:    header,
		status:    status,
		welcome:   welcome,
		pacer:     newRedrawPacer(DefaultMaxFPS),
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		state:     StateLoadingHistory,
		follow:    true,
		cancelMgr: newCancelManager(),
		width:     80,
		height:    24,
	}
}

func renderOptions(cfg *config.Config) components.RenderOptions {
	return components.RenderOptions{
		WordWrap:      cfg.UI.WordWrap,
		Markdown:      cfg.UI.RenderMarkdown,
		HighlightJSON: cfg.UI.HighlightJSON,
	}
}

// Init starts the history load and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHistoryCmd(), m.spinner.Tick)
}

// SetVersion sets the version shown on the empty thread placeholder.
func (m *Model) SetVersion(version string) {
	m.welcome.SetVersion(version)
}

// State returns the input state.
func (m Model) State() State {
	return m.state
}

// Units returns the displayed transcript.
func (m Model) Units() []*transcript.Unit {
	return m.list.Units()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChangesMsg:
		m.list.Apply(msg.Changes)
		return m, m.requestRedraw()

	case NoticeMsg:
		m.status.SetNotice(noticeLevel(msg.Notice.Level), msg.Notice.Text)
		return m, nil

	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case SendDoneMsg:
		return m.handleSendDone(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case redrawMsg:
		if m.pacer.fire() {
			m.updateViewport()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state != StateReady || m.hasLoadingUnit() {
			frame := m.spinner.View()
			m.status.SetSpinner(frame)
			m.renderer.SetSpinnerFrame(frame)
			if m.hasLoadingUnit() {
				m.updateViewport()
			}
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelMgr.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.cancelMgr.cancel() {
			m.status.SetNotice(components.NoticeInfo, "canceled")
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		m.follow = true
		return m, nil
	}

	if m.state == StateLoadingHistory {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == StateLoadingHistory {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.input.Reset()
	m.state = StateStreaming
	m.inflight++
	m.follow = true
	m.status.SetStatus(components.StatusStreaming)
	m.status.ClearNotice()
	return m, m.sendCmd(text)
}

func (m Model) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if m.state == StateLoadingHistory {
		m.state = StateReady
	}
	if msg.Err != nil {
		log.Printf("TUI_HISTORY | err=%v", msg.Err)
	}
	m.status.SetStatus(components.StatusReady)
	m.spinner.Spinner = spinnerFrom(styles.LineSpinner)
	m.input.Placeholder = "Type a message..."
	m.pacer.flush()
	m.updateViewport()
	return m, m.input.Focus()
}

func (m Model) handleSendDone(msg SendDoneMsg) (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}
	if m.inflight == 0 {
		m.state = StateReady
		m.cancelMgr.cancel()
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) && !errors.Is(msg.Err, session.ErrEmptyMessage) {
			m.status.SetStatus(components.StatusError)
		} else {
			m.status.SetStatus(components.StatusReady)
		}
	}
	m.pacer.flush()
	m.updateViewport()
	return m, nil
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	cfg := msg.Config
	if styles.ParseMode(cfg.UI.Theme) != m.theme.Mode {
		m.theme = styles.NewTheme(styles.ParseMode(cfg.UI.Theme))
		m.theme.SetSize(m.width, m.height)
		m.renderer.SetTheme(m.theme)
		m.header.SetTheme(m.theme)
		m.status.SetTheme(m.theme)
		m.welcome.SetTheme(m.theme)
		m.input.PromptStyle = m.theme.InputPrompt
	}
	m.renderer.SetOptions(renderOptions(cfg))
	m.cfg = cfg
	opts := m.renderer.Options()
	log.Printf("CONFIG_RELOADED | theme=%s markdown=%v wrap=%d", m.theme.Mode, opts.Markdown, opts.WordWrap)
	m.status.SetNotice(components.NoticeSuccess, "configuration reloaded")
	m.updateViewport()
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// header 1 line, input area 2 (border + line), status bar 1
	const reserved = 4
	vh := m.height - reserved
	if vh < 1 {
		vh = 1
	}
	vw := m.width
	if vw < 1 {
		vw = 1
	}
	m.viewport.Width = vw
	m.viewport.Height = vh

	inputWidth := m.width - 4 - len(m.input.Prompt)
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.theme.SetSize(m.width, m.height)
	m.renderer.SetWidth(m.width)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.welcome.SetSize(vw, vh)

	m.updateViewport()
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadHistoryCmd() tea.Cmd {
	conv := m.conv
	timeout := HistoryTimeout
	if secs := m.cfg.Server.TimeoutSecs; secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return HistoryLoadedMsg{Err: conv.LoadHistory(ctx)}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)
	conv := m.conv
	return func() tea.Msg {
		defer cancel()
		return SendDoneMsg{Err: conv.Send(ctx, text)}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) requestRedraw() tea.Cmd {
	now, cmd := m.pacer.request()
	if now {
		m.updateViewport()
	}
	return cmd
}

func (m *Model) updateViewport() {
	if m.list.Len() == 0 && m.state != StateLoadingHistory {
		m.viewport.SetContent(m.welcome.View())
		return
	}
	m.viewport.SetContent(m.renderer.RenderAll(m.list.Units()))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) hasLoadingUnit() bool {
	units := m.list.Units()
	for i := len(units) - 1; i >= 0; i-- {
		if units[i].IsLoading {
			return true
		}
	}
	return false
}

func spinnerFrom(c styles.SpinnerConfig) spinner.Spinner {
	return spinner.Spinner{Frames: c.Frames, FPS: c.Duration()}
}

func noticeLevel(l session.Level) components.NoticeLevel {
	switch l {
	case session.LevelError:
		return components.NoticeError
	case session.LevelWarning:
		return components.NoticeWarning
	default:
		return components.NoticeInfo
	}
}
