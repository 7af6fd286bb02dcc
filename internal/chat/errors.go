// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "errors"

var (
	// ErrDeclined is returned when the user declines a confirmation.
	ErrDeclined = errors.New("action declined")

	// ErrNotConnected is returned by Send when no socket is open.
	ErrNotConnected = errors.New("not connected to server")

	// ErrSuperseded is returned by Connect when another Connect or Close
	// ran while the dial was in flight.
	ErrSuperseded = errors.New("connection superseded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("controller closed")
)

// User-visible texts.
const (
	DeleteThreadPrompt = "Are you sure you want to delete this chat thread? This action cannot be undone."
	DeleteFailedNotice = "Failed to delete chat thread."
	NotConnectedText   = "Error: Not connected to server"
	progressPrefix     = "Progress: "
	completedPrefix    = "Completed: "
)
