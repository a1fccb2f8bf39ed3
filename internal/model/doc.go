// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat sessions against the opsdeck assistant backend.
//
// # Key Types
//
//   - Message: Single chat message with role, content, and timestamp
//   - Conversation: Server-side conversation metadata (id, title, timestamps)
//   - Role: Message role enumeration (user, assistant)
//
// Messages are immutable once created. Conversations are identified by a
// server-assigned integer id; id zero means the chat has not been persisted
// yet (a brand-new, anonymous session).
package model
