// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// THREAD
// =============================================================================

// Thread is a persisted chat session as reported by the session listing.
// A locally started thread carries only SessionID until the backend lists
// it.
type Thread struct {
	SessionID       string `json:"session_id"`
	LastMessage     string `json:"last_message,omitempty"`
	LastMessageRole string `json:"last_message_role,omitempty"`
	LastActivity    string `json:"last_activity,omitempty"`
}

// LastActivityTime parses LastActivity. The zero time means unknown.
func (t Thread) LastActivityTime() time.Time {
	ts, _ := ParseBackendTime(t.LastActivity)
	return ts
}

// HasPreview reports whether the thread has a last-message preview.
func (t Thread) HasPreview() bool {
	return t.LastMessage != ""
}

// ContainsThread reports whether id is present in threads.
func ContainsThread(threads []Thread, id string) bool {
	for _, t := range threads {
		if t.SessionID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// CONNECTION STATE
// =============================================================================

// ConnectionState is the state of the agent socket.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

// String returns a lowercase label for the state.
func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}
