// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage rejects a send whose text is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy rejects a send while another operation is still in flight.
	// The input box is disabled while loading, but the guard does not rely
	// on that.
	ErrBusy = errors.New("an operation is already in flight")
)

// FailedHistoryLoad is the fixed banner text for a failed history fetch.
const FailedHistoryLoad = "Failed to load conversation history."

// =============================================================================
// TOKENS
// =============================================================================

// LoadToken identifies one in-flight history load. ApplyHistory discards
// results whose token is no longer current, so out-of-order completions
// cannot overwrite a newer conversation's state.
type LoadToken struct {
	gen            uint64
	conversationID int64
}

// ConversationID returns the conversation this load targets.
func (t LoadToken) ConversationID() int64 {
	return t.conversationID
}

// SendAttempt identifies one in-flight send. It carries everything the
// caller needs to perform the network call.
type SendAttempt struct {
	epoch uint64

	// ConversationID is the active id captured when the send began;
	// model.NoConversation for an anonymous chat.
	ConversationID int64

	// Text is the trimmed message text.
	Text string
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the state machine for one chat view. Safe for concurrent use;
// the UI event loop mutates it while completion callbacks arrive from
// command goroutines.
type Session struct {
	mu sync.Mutex

	activeID int64
	messages []*model.Message
	errMsg   string

	// epoch is bumped whenever the visible chat is replaced or cleared.
	// A finished send whose epoch is stale belongs to a chat the user has
	// already left and is dropped.
	epoch uint64

	// loadGen is bumped for every history load that starts. Only the
	// newest load's result is accepted.
	loadGen     uint64
	loadPending bool

	sendInFlight bool
}

// New creates an empty anonymous session.
func New() *Session {
	return &Session{activeID: model.NoConversation}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveID returns the current conversation id, model.NoConversation for an
// anonymous chat.
func (s *Session) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Messages returns a snapshot of the message list in chronological order.
func (s *Session) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// IsLoading reports whether a history load or a send is in flight.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPending || s.sendInFlight
}

// Error returns the current error banner text, "" when none.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// =============================================================================
// EVENTS
// =============================================================================

// SetActive switches the session to a different conversation.
//
// For a persisted id it clears the visible chat, marks a history load
// pending, and returns the token the caller must pass to ApplyHistory once
// the fetch resolves, with needLoad true.
//
// For model.NoConversation it resets to a fresh anonymous chat synchronously
// and returns needLoad false; no network call is wanted.
func (s *Session) SetActive(id int64) (token LoadToken, needLoad bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = id
	s.epoch++
	s.messages = nil
	s.errMsg = ""

	if id == model.NoConversation {
		s.loadPending = false
		return LoadToken{}, false
	}

	s.loadGen++
	s.loadPending = true
	return LoadToken{gen: s.loadGen, conversationID: id}, true
}

// ApplyHistory resolves a history load. Stale results, where a newer load
// has started or the active conversation moved on, are discarded and the
// return value is false.
//
// On success the fetched messages replace the chat. On failure the chat
// stays empty and the error banner is set to FailedHistoryLoad.
func (s *Session) ApplyHistory(token LoadToken, messages []*model.Message, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token.gen != s.loadGen || token.conversationID != s.activeID {
		return false
	}

	s.loadPending = false
	if err != nil {
		s.messages = nil
		s.errMsg = FailedHistoryLoad
		return true
	}

	s.messages = messages
	s.errMsg = ""
	return true
}

// BeginSend validates and optimistically applies a user message. The message
// is appended and the loading flag raised before any network activity; the
// returned attempt carries the captured conversation id for the gateway
// call. The user bubble stays even if the send later fails.
func (s *Session) BeginSend(text string) (SendAttempt, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SendAttempt{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendInFlight || s.loadPending {
		return SendAttempt{}, ErrBusy
	}

	s.messages = append(s.messages, model.NewUserMessage(trimmed))
	s.sendInFlight = true
	s.errMsg = ""

	return SendAttempt{
		epoch:          s.epoch,
		ConversationID: s.activeID,
		Text:           trimmed,
	}, nil
}

// FinishSend resolves a send. If the chat was replaced or cleared while the
// send was in flight the result is dropped entirely, including its error.
//
// On success the assistant reply is appended. When the attempt started from
// an anonymous chat and the server minted a conversation id, the session
// adopts it and returns it as adoptedID so the composing layer can refresh
// the directory; adoptedID is model.NoConversation otherwise.
func (s *Session) FinishSend(attempt SendAttempt, reply string, mintedID int64, err error) (adoptedID int64, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sendInFlight = false

	if attempt.epoch != s.epoch {
		return model.NoConversation, false
	}

	if err != nil {
		s.errMsg = errorText(err)
		return model.NoConversation, true
	}

	s.messages = append(s.messages, model.NewAssistantMessage(reply))
	if attempt.ConversationID == model.NoConversation &&
		s.activeID == model.NoConversation &&
		mintedID != model.NoConversation {
		s.activeID = mintedID
		adoptedID = mintedID
	}
	return adoptedID, true
}

// ClearChat wipes the visible chat and error. Callers should not invoke it
// while loading; if they do, any in-flight results are discarded when they
// arrive rather than resurrecting the cleared chat.
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.messages = nil
	s.errMsg = ""

	// Invalidate any pending history load so its result cannot resurrect
	// the cleared chat.
	if s.loadPending {
		s.loadGen++
		s.loadPending = false
	}
}

// ClearError dismisses the error banner. Idempotent.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// errorText flattens a failure into one banner line.
func errorText(err error) string {
	if err == nil || err.Error() == "" {
		return "Something went wrong. Please try again."
	}
	return err.Error()
}
