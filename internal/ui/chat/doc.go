// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view is purely derived from the session state machine: it renders the
// message list, the input box, the typing indicator, and the error banner,
// and translates key presses and network completions into session events.
// All network calls run as Bubble Tea commands; their results come back as
// messages carrying the session token they were started with, so stale
// completions are discarded by the session rather than rendered.
package chat
