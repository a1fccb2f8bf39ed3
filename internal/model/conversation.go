// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// NoConversation is the id of a chat that has not been persisted server-side
// yet. The server assigns a positive id on the first successful send; until
// then the session is anonymous.
const NoConversation int64 = 0

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds server-side conversation metadata as returned by the
// conversation list endpoint. Message history is fetched separately.
type Conversation struct {
	// Identity. Assigned by the server, immutable once known.
	ID    int64  `json:"id"`
	Title string `json:"title"`

	// Timestamps. CreatedAt drives recency bucketing in the directory.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayTitle returns the conversation title or the generic fallback label.
func (c Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Chat"
}

// IsPersisted reports whether the conversation carries a server-assigned id.
func (c Conversation) IsPersisted() bool {
	return c.ID != NoConversation
}
