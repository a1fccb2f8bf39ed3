// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/config"
	"github.com/opsdeck/opsdeck-tui/internal/model"
	"github.com/opsdeck/opsdeck-tui/internal/session"
	"github.com/opsdeck/opsdeck-tui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat pane. It owns the conversation session, the scrollback
// viewport, and the input line. Conversation switching comes in through
// Open; everything else arrives as bubbletea messages.
type Model struct {
	theme   *styles.Theme
	session *session.Session
	client  *api.Client
	cfg     *config.Config

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	width  int
	height int
	ready  bool
}

// New creates a chat model wired to the given API client.
func New(theme *styles.Theme, client *api.Client, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		theme:   theme,
		session: session.New(),
		client:  client,
		cfg:     cfg,
		input:   ti,
		spinner: sp,
		keyMap:  DefaultKeyMap(),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Session exposes the underlying session for the composing layer and tests.
func (m Model) Session() *session.Session {
	return m.session
}

// Open switches the pane to the given conversation. Zero opens a fresh
// anonymous chat. Returns a history load command when one is needed.
func (m Model) Open(conversationID int64) (Model, tea.Cmd) {
	token, needLoad := m.session.SetActive(conversationID)
	m.refreshViewport()

	if !needLoad {
		return m, nil
	}
	return m, tea.Batch(
		loadHistoryCmd(m.client, m.cfg.Timeout(), token),
		m.spinner.Tick,
	)
}

// Focus gives the input line keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.input.Focus()
	return textinput.Blink
}

// Blur removes keyboard focus from the input line.
func (m *Model) Blur() {
	m.input.Blur()
}

// Focused reports whether the input line has focus.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// SetSize resizes the pane. The viewport gets whatever height is left
// after the fixed chrome (header, input, status bar).
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - chromeHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = contentHeight
	}

	m.input.Width = width - 6
	m.refreshViewport()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the chat pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case HistoryLoadedMsg:
		m.session.ApplyHistory(msg.Token, msg.Messages, msg.Err)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case SendCompleteMsg:
		adopted, _ := m.session.FinishSend(msg.Attempt, msg.Reply, msg.ConversationID, msg.Err)
		m.refreshViewport()
		m.viewport.GotoBottom()
		if adopted != model.NoConversation {
			return m, adoptedCmd(adopted)
		}
		return m, nil

	case spinner.TickMsg:
		if m.session.IsLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.ClearChat):
		m.session.ClearChat()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.DismissError):
		m.session.ClearError()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a send for the current input line. An empty line or an
// in-flight operation leaves the input untouched.
func (m Model) submit() (Model, tea.Cmd) {
	attempt, err := m.session.BeginSend(m.input.Value())
	if err != nil {
		// Empty input or an in-flight operation. Keep the typed text.
		return m, nil
	}

	m.input.Reset()
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		sendCmd(m.client, m.cfg.SendTimeout(), attempt, m.cfg.Chat.Context),
		m.spinner.Tick,
	)
}

// adoptedCmd tells the composing layer an anonymous chat gained an identity.
func adoptedCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return ConversationAdoptedMsg{ID: id}
	}
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}
