// opsdeck TUI - a terminal interface for the OpsDeck assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/auth"
	"github.com/opsdeck/opsdeck-tui/internal/cli"
	"github.com/opsdeck/opsdeck-tui/internal/config"
	"github.com/opsdeck/opsdeck-tui/internal/model"
	"github.com/opsdeck/opsdeck-tui/internal/ui/chat"
	"github.com/opsdeck/opsdeck-tui/internal/ui/sidebar"
	"github.com/opsdeck/opsdeck-tui/internal/ui/styles"
)

func main() {
	// Local .env files override nothing that is already set; convenient for
	// development against a non-default backend.
	_ = godotenv.Load()

	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		if err := cli.HandleLogin(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdLogout:
		if err := cli.HandleLogout(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdConversations:
		cli.HandleConversations(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	cfg := config.Global()
	if args.Server != "" {
		cfg.Server.URL = args.Server
	}
	if args.Context != "" {
		cfg.Chat.Context = args.Context
	}

	store, err := auth.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !store.IsAuthenticated() {
		fmt.Fprintln(os.Stderr, "Not logged in. Run: opsdeck login")
		os.Exit(1)
	}

	transport := api.NewTransport(cfg.Server.URL, store)
	client := api.NewClient(transport)

	theme := styles.NewTheme()
	m := NewModel(theme, client, store, cfg)

	p := tea.NewProgram(m, tea.WithAltScreen())

	// A rejected token ends the session. Clear it and tell the program;
	// the callback may fire from a command goroutine, so go through Send.
	transport.SetOnAuthFailure(func() {
		_ = store.Clear()
		p.Send(AuthExpiredMsg{})
	})

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if fm, ok := finalModel.(*Model); ok && fm.authExpired {
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again: opsdeck login")
		os.Exit(1)
	}
}

// =============================================================================
// ROOT MODEL
// =============================================================================

// sidebarWidth is the fixed column width of the conversation directory.
const sidebarWidth = 30

// AuthExpiredMsg is sent when the backend rejects the stored credentials.
type AuthExpiredMsg struct{}

// focusArea identifies which pane receives keyboard input.
type focusArea int

const (
	focusChat focusArea = iota
	focusSidebar
)

// Model is the root bubbletea model. It composes the sidebar and chat
// panes and mediates the messages that cross between them.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	client *api.Client
	store  *auth.Store

	sidebar sidebar.Model
	chat    chat.Model

	focus       focusArea
	showSidebar bool
	authExpired bool

	width  int
	height int
}

// NewModel creates the root model with both panes wired to the client.
func NewModel(theme *styles.Theme, client *api.Client, store *auth.Store, cfg *config.Config) *Model {
	return &Model{
		theme:       theme,
		cfg:         cfg,
		client:      client,
		store:       store,
		sidebar:     sidebar.New(theme),
		chat:        chat.New(theme, client, cfg),
		focus:       focusChat,
		showSidebar: cfg.UI.ShowSidebar,
	}
}

// Init starts the chat pane and kicks off the conversation list fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.chat.Init(),
		m.loadConversations(),
	)
}

// loadConversations fetches the conversation directory.
func (m *Model) loadConversations() tea.Cmd {
	client := m.client
	timeout := m.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		conversations, err := client.ListConversations(ctx)
		return sidebar.ConversationsLoadedMsg{Conversations: conversations, Err: err}
	}
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case AuthExpiredMsg:
		m.authExpired = true
		return m, tea.Quit

	case sidebar.ConversationsLoadedMsg:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case sidebar.SelectedMsg:
		return m.openConversation(msg.ConversationID)

	case chat.ConversationAdoptedMsg:
		// An anonymous chat gained a server identity. Mark it active and
		// refresh the directory so it shows up under Today.
		m.sidebar.SetActive(msg.ID)
		return m, m.loadConversations()
	}

	// Everything else belongs to the chat pane: network completions,
	// spinner ticks, cursor blinks.
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// handleKeyPress processes keyboard input, routing to the focused pane.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if !m.showSidebar {
			return m, nil
		}
		if m.focus == focusChat {
			m.focus = focusSidebar
			m.chat.Blur()
			m.sidebar.SetFocus(true)
			return m, nil
		}
		m.focus = focusChat
		m.sidebar.SetFocus(false)
		return m, m.chat.Focus()

	case "ctrl+b":
		m.showSidebar = !m.showSidebar
		if !m.showSidebar && m.focus == focusSidebar {
			m.focus = focusChat
			m.sidebar.SetFocus(false)
			m.layout()
			return m, m.chat.Focus()
		}
		m.layout()
		return m, nil

	case "ctrl+n":
		return m.openConversation(model.NoConversation)
	}

	if m.focus == focusSidebar {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// openConversation switches the chat pane to the given conversation and
// moves focus there. Every switch also refreshes the directory, which may
// have moved on the server since the last fetch.
func (m *Model) openConversation(id int64) (tea.Model, tea.Cmd) {
	m.sidebar.SetActive(id)
	m.sidebar.SetFocus(false)
	m.focus = focusChat

	var openCmd tea.Cmd
	m.chat, openCmd = m.chat.Open(id)
	return m, tea.Batch(openCmd, m.chat.Focus(), m.loadConversations())
}

// layout distributes the window between the sidebar and the chat pane.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	chatWidth := m.width
	if m.showSidebar {
		chatWidth = m.width - sidebarWidth
		if chatWidth < 20 {
			chatWidth = 20
		}
		m.sidebar.SetSize(sidebarWidth, m.height)
	}
	m.chat.SetSize(chatWidth, m.height)
}

// View renders the full screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if !m.showSidebar {
		return m.chat.View()
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.sidebar.View(),
		m.chat.View(),
	)
}
