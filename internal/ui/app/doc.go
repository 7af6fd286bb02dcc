// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the TUI. It owns the login
// screen and, once a session exists, the navigation between the chat,
// notes and learnings screens and the profile dialog.
//
// # Key Bindings
//
//	F1 / F2 / F3  chat, notes, learnings
//	Ctrl+P        edit profile
//	Ctrl+L        log out
//	Ctrl+C        quit
package app
