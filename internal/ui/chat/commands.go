// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck-tui/internal/api"
	"github.com/opsdeck/opsdeck-tui/internal/session"
)

// loadHistoryCmd fetches a conversation's history. The token travels with
// the result so the session can reject it if the user has moved on.
func loadHistoryCmd(client *api.Client, timeout time.Duration, token session.LoadToken) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		messages, err := client.History(ctx, token.ConversationID())
		return HistoryLoadedMsg{Token: token, Messages: messages, Err: err}
	}
}

// sendCmd submits the attempt's text to the assistant. chatContext is the
// opaque location hint from config, passed through untouched.
func sendCmd(client *api.Client, timeout time.Duration, attempt session.SendAttempt, chatContext string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := client.Send(ctx, attempt.Text, attempt.ConversationID, chatContext)
		if err != nil {
			// Auth failures end the program elsewhere; surface everything
			// else as one banner line.
			if api.IsAuthError(err) {
				return SendCompleteMsg{Attempt: attempt, Err: err}
			}
			return SendCompleteMsg{Attempt: attempt, Err: errors.New(api.UserMessage(err))}
		}
		return SendCompleteMsg{
			Attempt:        attempt,
			Reply:          result.Reply,
			ConversationID: result.ConversationID,
		}
	}
}
