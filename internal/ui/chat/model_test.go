// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck-tui/internal/config"
	"github.com/opsdeck/opsdeck-tui/internal/model"
	"github.com/opsdeck/opsdeck-tui/internal/ui/styles"
)

func newTestModel() Model {
	cfg := config.Default()
	m := New(styles.NewTheme(), nil, cfg)
	m.SetSize(80, 24)
	return m
}

func history(conversationID int64, contents ...string) []*model.Message {
	msgs := make([]*model.Message, 0, len(contents))
	for i, c := range contents {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		id := fmt.Sprintf("hist-%d-%d", conversationID, i)
		msgs = append(msgs, model.NewHistoryMessage(id, role, c))
	}
	return msgs
}

func TestOpen_AnonymousNeedsNoLoad(t *testing.T) {
	m := newTestModel()

	m, cmd := m.Open(model.NoConversation)
	if cmd != nil {
		t.Fatal("expected no load command for a new chat")
	}
	if m.session.IsLoading() {
		t.Fatal("new chat should not be loading")
	}
}

func TestOpen_PersistedStartsLoad(t *testing.T) {
	m := newTestModel()

	m, cmd := m.Open(7)
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	if !m.session.IsLoading() {
		t.Fatal("expected loading state while history is in flight")
	}
}

func TestUpdate_StaleHistoryDropped(t *testing.T) {
	m := newTestModel()

	staleToken, _ := m.session.SetActive(7)
	m, _ = m.Open(9)

	m, _ = m.Update(HistoryLoadedMsg{
		Token:    staleToken,
		Messages: history(7, "old question", "old answer"),
	})

	transcript := m.renderTranscript()
	if strings.Contains(transcript, "old question") {
		t.Fatal("stale history leaked into the transcript")
	}
}

func TestUpdate_HistoryRendered(t *testing.T) {
	m := newTestModel()

	token, _ := m.session.SetActive(9)
	m, _ = m.Update(HistoryLoadedMsg{
		Token:    token,
		Messages: history(9, "deploy status?", "All green."),
	})

	transcript := m.renderTranscript()
	if !strings.Contains(transcript, "deploy status?") || !strings.Contains(transcript, "All green.") {
		t.Fatalf("history missing from transcript:\n%s", transcript)
	}
}

func TestSubmit_AppendsAndResetsInput(t *testing.T) {
	m := newTestModel()
	m, _ = m.Open(model.NoConversation)

	m.input.SetValue("restart the api pod")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("expected a send command")
	}
	msgs := m.session.Messages()
	if len(msgs) != 1 || msgs[0].Content != "restart the api pod" {
		t.Fatalf("expected the optimistic user message, got %v", msgs)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not reset, still %q", m.input.Value())
	}
}

func TestSubmit_EmptyInputKeepsQuiet(t *testing.T) {
	m := newTestModel()
	m, _ = m.Open(model.NoConversation)

	m.input.SetValue("   ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Fatal("blank input should not produce a send command")
	}
	if len(m.session.Messages()) != 0 {
		t.Fatal("blank input should not append a message")
	}
}

func TestUpdate_SendCompleteAppendsReply(t *testing.T) {
	m := newTestModel()
	m, _ = m.Open(model.NoConversation)

	attempt, err := m.session.BeginSend("hello")
	if err != nil {
		t.Fatal(err)
	}

	m, cmd := m.Update(SendCompleteMsg{Attempt: attempt, Reply: "hi there", ConversationID: 12})

	msgs := m.session.Messages()
	if len(msgs) != 2 || msgs[1].Content != "hi there" {
		t.Fatalf("expected user+assistant messages, got %v", msgs)
	}
	if cmd == nil {
		t.Fatal("expected an adoption command for the minted conversation id")
	}
	msg := cmd()
	adopted, ok := msg.(ConversationAdoptedMsg)
	if !ok || adopted.ID != 12 {
		t.Fatalf("expected ConversationAdoptedMsg{12}, got %#v", msg)
	}
}

func TestUpdate_SendCompleteExistingConversationNoAdoption(t *testing.T) {
	m := newTestModel()
	token, _ := m.session.SetActive(5)
	m.session.ApplyHistory(token, history(5, "q", "a"), nil)

	attempt, err := m.session.BeginSend("follow up")
	if err != nil {
		t.Fatal(err)
	}

	m, cmd := m.Update(SendCompleteMsg{Attempt: attempt, Reply: "done", ConversationID: 5})
	if cmd != nil {
		t.Fatal("existing conversation must not emit an adoption command")
	}
	if got := len(m.session.Messages()); got != 4 {
		t.Fatalf("expected 4 messages, got %d", got)
	}
}

func TestUpdate_SendErrorShowsBanner(t *testing.T) {
	m := newTestModel()
	m, _ = m.Open(model.NoConversation)

	attempt, _ := m.session.BeginSend("hello")
	m, _ = m.Update(SendCompleteMsg{Attempt: attempt, Err: errBoom{}})

	transcript := m.renderTranscript()
	if !strings.Contains(transcript, "boom") {
		t.Fatalf("expected error banner in transcript:\n%s", transcript)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.Error() != "" {
		t.Fatal("esc should dismiss the error banner")
	}
}

func TestUpdate_ClearChatKey(t *testing.T) {
	m := newTestModel()
	token, _ := m.session.SetActive(5)
	m.session.ApplyHistory(token, history(5, "q", "a"), nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if len(m.session.Messages()) != 0 {
		t.Fatal("ctrl+l should clear the visible chat")
	}
}

func TestView_WelcomeOnEmptyChat(t *testing.T) {
	m := newTestModel()
	m, _ = m.Open(model.NoConversation)

	transcript := m.renderTranscript()
	if !strings.Contains(transcript, "Welcome to OpsDeck") {
		t.Fatalf("expected welcome screen, got:\n%s", transcript)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
