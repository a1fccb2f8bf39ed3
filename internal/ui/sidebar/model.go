// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sidebar provides the conversation directory view: past
// conversations grouped by recency, plus the "New Chat" entry.
package sidebar

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck-tui/internal/directory"
	"github.com/opsdeck/opsdeck-tui/internal/model"
	"github.com/opsdeck/opsdeck-tui/internal/ui/styles"
	"github.com/opsdeck/opsdeck-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ConversationsLoadedMsg delivers a refreshed conversation list.
type ConversationsLoadedMsg struct {
	Conversations []model.Conversation
	Err           error
}

// SelectedMsg reports the user's pick. ConversationID is
// model.NoConversation when "New Chat" was chosen.
type SelectedMsg struct {
	ConversationID int64
}

// =============================================================================
// MODEL
// =============================================================================

// item is one selectable row. The "New Chat" row has id NoConversation;
// heading rows are not items and cannot hold the cursor.
type item struct {
	id    int64
	title string
}

// Model is the Bubble Tea model for the sidebar.
type Model struct {
	theme *styles.Theme

	groups []directory.Group
	items  []item
	cursor int

	activeID int64
	focused  bool
	loadErr  bool

	width  int
	height int
}

// New creates an empty sidebar showing only the "New Chat" entry.
func New(theme *styles.Theme) Model {
	m := Model{theme: theme}
	m.rebuild(nil)
	return m
}

// SetConversations replaces the listed conversations.
func (m *Model) SetConversations(conversations []model.Conversation) {
	m.loadErr = false
	m.rebuild(conversations)
}

// SetLoadError marks the list as unavailable; the "New Chat" entry stays
// usable so a backend hiccup never blocks starting a chat.
func (m *Model) SetLoadError() {
	m.loadErr = true
	m.rebuild(nil)
}

// SetActive highlights the given conversation id, moving the cursor to it
// when present. Called when a send into an anonymous chat adopts a minted id.
func (m *Model) SetActive(id int64) {
	m.activeID = id
	for i, it := range m.items {
		if it.id == id {
			m.cursor = i
			return
		}
	}
}

// SetFocus sets whether the sidebar owns keyboard input.
func (m *Model) SetFocus(focused bool) {
	m.focused = focused
}

// Focused reports whether the sidebar owns keyboard input.
func (m Model) Focused() bool {
	return m.focused
}

// SetSize sets the sidebar's render box.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// rebuild regroups and flattens the selectable rows. Cursor position is
// preserved by conversation id where possible.
func (m *Model) rebuild(conversations []model.Conversation) {
	var current int64 = model.NoConversation
	if m.cursor < len(m.items) && len(m.items) > 0 {
		current = m.items[m.cursor].id
	}

	m.groups = directory.GroupByRecency(conversations, time.Now())

	// Fresh slice: earlier copies of the model must not see this rebuild
	// through a shared backing array.
	m.items = make([]item, 0, 1+len(conversations))
	m.items = append(m.items, item{id: model.NoConversation, title: "+ New Chat"})
	for _, g := range m.groups {
		for _, c := range g.Conversations {
			m.items = append(m.items, item{id: c.ID, title: c.DisplayTitle()})
		}
	}

	m.cursor = 0
	for i, it := range m.items {
		if it.id == current && it.id != model.NoConversation {
			m.cursor = i
			break
		}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles key input while the sidebar is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ConversationsLoadedMsg:
		if msg.Err != nil {
			m.SetLoadError()
		} else {
			m.SetConversations(msg.Conversations)
		}
		return m, nil

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "enter":
			picked := m.items[m.cursor]
			m.activeID = picked.id
			return m, func() tea.Msg {
				return SelectedMsg{ConversationID: picked.id}
			}
		}
	}
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the bucketed conversation list.
func (m Model) View() string {
	t := m.theme
	innerWidth := m.width - 4
	if innerWidth < 8 {
		innerWidth = 8
	}

	var lines []string
	lines = append(lines, t.HeaderTitle.Render("Conversations"))

	row := 0
	renderItem := func(it item, style, selected func(...string) string) {
		label := util.TruncateWidth(it.title, innerWidth)
		if row == m.cursor && m.focused {
			lines = append(lines, selected(label))
		} else {
			lines = append(lines, style(label))
		}
		row++
	}

	newChatStyle := t.SidebarNewChat.Render
	itemStyle := t.SidebarItem.Render
	selectedStyle := t.SidebarSelected.Render

	renderItem(m.items[0], newChatStyle, selectedStyle)

	if m.loadErr {
		lines = append(lines, t.ErrorHint.Render("History unavailable"))
	}

	for _, g := range m.groups {
		lines = append(lines, t.SidebarHeading.Render(g.Label))
		for range g.Conversations {
			renderItem(m.items[row], itemStyle, selectedStyle)
		}
	}

	return t.Sidebar.Width(m.width).Height(m.height).Render(strings.Join(lines, "\n"))
}
