// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the opsdeck assistant backend.
//
// The backend exposes a small REST surface:
//
//   - POST /auth/login              authenticate, returns bearer tokens
//   - GET  /chat/conversations      list the caller's conversations
//   - GET  /chat/conversations/{id} ordered message history for one conversation
//   - POST /chat                    send a message, returns the assistant reply
//
// All requests go through a shared Transport which attaches the bearer token
// and funnels 401/403 responses into a single auth-failure callback. The
// callback fires at most once per failing response; what happens next
// (clearing credentials, quitting the UI) is the caller's business, not the
// transport's.
package api
