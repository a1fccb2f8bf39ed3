// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// conversationWire mirrors the conversation list payload. Timestamps arrive
// as bare LocalDateTime strings without a zone, so they are parsed by hand.
type conversationWire struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// historyEntry is one {role, content} pair from the history endpoint.
type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// sendRequest is the POST /chat payload. ConversationID is omitted for an
// anonymous chat so the server mints a fresh conversation.
type sendRequest struct {
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversationId,omitempty"`
	Context        string `json:"context,omitempty"`
}

type sendResponse struct {
	Reply          string `json:"reply"`
	ConversationID int64  `json:"conversationId"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User identifies the authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResult carries the token pair and account returned by a login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// SendResult is the outcome of a successful chat send.
type SendResult struct {
	// Reply is the assistant's response text.
	Reply string

	// ConversationID is the id the exchange was recorded under. For a send
	// into an anonymous chat this is the freshly minted id.
	ConversationID int64
}

// =============================================================================
// CLIENT
// =============================================================================

// Client exposes the backend's chat and auth operations over a Transport.
type Client struct {
	transport *Transport
}

// NewClient creates a client on top of the given transport.
func NewClient(transport *Transport) *Client {
	return &Client{transport: transport}
}

// Login authenticates with username and password. Callers should build the
// transport without stored credentials; a stale token must not poison a
// fresh login.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	req := loginRequest{Username: username, Password: password}
	if err := c.transport.do(ctx, http.MethodPost, "/auth/login", req, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "login response missing access token"}
	}
	return &result, nil
}

// ListConversations fetches the caller's conversations, newest first as the
// server returns them. Callers needing recency buckets group them afterward.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var wire []conversationWire
	if err := c.transport.do(ctx, http.MethodGet, "/chat/conversations", nil, &wire); err != nil {
		return nil, err
	}

	conversations := make([]model.Conversation, 0, len(wire))
	for _, w := range wire {
		conversations = append(conversations, model.Conversation{
			ID:        w.ID,
			Title:     w.Title,
			CreatedAt: parseServerTime(w.CreatedAt),
			UpdatedAt: parseServerTime(w.UpdatedAt),
		})
	}
	return conversations, nil
}

// History fetches the ordered message history for a conversation. The
// endpoint returns only role and content, so ids are derived from the
// conversation id and position. Position-derived ids stay stable across
// reloads of the same history.
func (c *Client) History(ctx context.Context, conversationID int64) ([]*model.Message, error) {
	path := fmt.Sprintf("/chat/conversations/%d", conversationID)

	var entries []historyEntry
	if err := c.transport.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(entries))
	for i, entry := range entries {
		id := fmt.Sprintf("hist-%d-%d", conversationID, i)
		messages = append(messages, model.NewHistoryMessage(id, model.RoleFromWire(entry.Role), entry.Content))
	}
	return messages, nil
}

// Send submits a message. Pass model.NoConversation to start a new
// conversation; the server assigns an id and returns it in the result.
// chatContext is an optional page hint forwarded to the assistant.
func (c *Client) Send(ctx context.Context, message string, conversationID int64, chatContext string) (*SendResult, error) {
	req := sendRequest{Message: message, Context: chatContext}
	if conversationID != model.NoConversation {
		req.ConversationID = &conversationID
	}

	var resp sendResponse
	if err := c.transport.do(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &SendResult{Reply: resp.Reply, ConversationID: resp.ConversationID}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// serverTimeLayouts covers the timestamp shapes the backend emits. Java's
// LocalDateTime serializes without a zone, with or without fractional
// seconds; RFC3339 is accepted in case the backend ever gains zone handling.
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseServerTime parses a backend timestamp, returning the zero time for
// anything unparseable rather than failing the whole list.
func parseServerTime(s string) time.Time {
	for _, layout := range serverTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
