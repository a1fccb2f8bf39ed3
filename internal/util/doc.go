// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the application.
//
// String helpers are UTF-8 and display-width aware, backed by go-runewidth
// so CJK and fullwidth characters truncate correctly in terminal columns.
// AtomicWriteFile persists files crash-safely via write-fsync-rename.
package util
