// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/opsdeck/opsdeck-tui/internal/model"
	"github.com/opsdeck/opsdeck-tui/internal/session"
)

// =============================================================================
// NETWORK COMPLETION MESSAGES
// =============================================================================

// HistoryLoadedMsg delivers the outcome of a history fetch. Token identifies
// which load this is; the session discards it when stale.
type HistoryLoadedMsg struct {
	Token    session.LoadToken
	Messages []*model.Message
	Err      error
}

// SendCompleteMsg delivers the outcome of a send.
type SendCompleteMsg struct {
	Attempt        session.SendAttempt
	Reply          string
	ConversationID int64
	Err            error
}

// =============================================================================
// UPWARD MESSAGES
// =============================================================================

// ConversationAdoptedMsg reports that an anonymous chat became conversation
// ID after its first successful send. The composing layer refreshes the
// sidebar so the new conversation appears.
type ConversationAdoptedMsg struct {
	ID int64
}
