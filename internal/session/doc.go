// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the state of the active chat: the ordered message
// list, the loading flag, and the error banner.
//
// The state machine is event-driven. The UI (or CLI) feeds it exactly six
// events:
//
//   - SetActive:    the active conversation id changed
//   - ApplyHistory: a history load finished (success or failure)
//   - BeginSend:    the user submitted a message
//   - FinishSend:   a send finished (success or failure)
//   - ClearChat:    wipe the visible chat
//   - ClearError:   dismiss the error banner
//
// The network calls themselves happen outside this package; the session
// hands out tokens (LoadToken, SendAttempt) that the caller passes back with
// the result. Results whose token no longer matches the current state are
// discarded, which is what keeps a slow history load for conversation 7 from
// clobbering the view after the user has already switched to conversation 9.
//
// Sends are optimistic: the user's message is appended before the network
// call starts and is not rolled back on failure. A failed send leaves the
// user bubble in place and raises the error banner.
package session
