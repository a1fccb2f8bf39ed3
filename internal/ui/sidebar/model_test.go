// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sidebar

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck-tui/internal/model"
	"github.com/opsdeck/opsdeck-tui/internal/ui/styles"
)

func testConversations() []model.Conversation {
	now := time.Now()
	return []model.Conversation{
		{ID: 7, Title: "Deploy triage", CreatedAt: now},
		{ID: 9, Title: "Pipeline report", CreatedAt: now.AddDate(0, 0, -10)},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelect_NewChat(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetFocus(true)
	m.SetConversations(testConversations())

	// Cursor starts on "+ New Chat".
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("enter should emit a selection")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if msg.ConversationID != model.NoConversation {
		t.Errorf("New Chat should select id 0, got %d", msg.ConversationID)
	}
}

func TestSelect_Conversation(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetFocus(true)
	m.SetConversations(testConversations())

	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("enter should emit a selection")
	}
	msg := cmd().(SelectedMsg)
	if msg.ConversationID != 7 {
		t.Errorf("selected id = %d, want 7", msg.ConversationID)
	}
}

func TestCursor_Bounds(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetFocus(true)
	m.SetConversations(testConversations())

	m, _ = m.Update(key("up"))
	for i := 0; i < 10; i++ {
		m, _ = m.Update(key("down"))
	}
	// 3 items total: New Chat + 2 conversations.
	m, cmd := m.Update(key("enter"))
	msg := cmd().(SelectedMsg)
	if msg.ConversationID != 9 {
		t.Errorf("cursor should clamp to last item (id 9), got %d", msg.ConversationID)
	}
}

func TestUnfocused_IgnoresKeys(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetConversations(testConversations())

	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("unfocused sidebar must not emit selections")
	}
}

func TestConversationsLoadedMsg(t *testing.T) {
	m := New(styles.NewTheme())

	m, _ = m.Update(ConversationsLoadedMsg{Conversations: testConversations()})
	if len(m.items) != 3 {
		t.Errorf("got %d items, want 3 (New Chat + 2)", len(m.items))
	}

	// A newly adopted conversation appears on the next refresh.
	refreshed := append(testConversations(), model.Conversation{ID: 42, Title: "status?", CreatedAt: time.Now()})
	m, _ = m.Update(ConversationsLoadedMsg{Conversations: refreshed})
	found := false
	for _, it := range m.items {
		if it.id == 42 {
			found = true
		}
	}
	if !found {
		t.Error("refreshed list should include the new conversation 42")
	}
}

func TestView_RendersBuckets(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetSize(30, 20)
	m.SetConversations(testConversations())

	out := m.View()
	for _, want := range []string{"New Chat", "Today", "Older", "Deploy triage"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRebuild_CopiesDoNotShareBackingArray(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetConversations([]model.Conversation{{ID: 1, Title: "first", CreatedAt: time.Now()}})

	snapshot := m
	m.SetConversations([]model.Conversation{{ID: 2, Title: "second", CreatedAt: time.Now()}})

	// The pre-rebuild copy keeps its own rows.
	if got := snapshot.items[1].title; got != "first" {
		t.Errorf("snapshot item = %q, want first", got)
	}
	if got := m.items[1].title; got != "second" {
		t.Errorf("rebuilt item = %q, want second", got)
	}
}
