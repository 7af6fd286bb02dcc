// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the display layout for message and note timestamps.
const TimestampLayout = "15:04"

// =============================================================================
// AUTHOR
// =============================================================================

// Author identifies who produced a message.
type Author string

const (
	AuthorSelf  Author = "me"
	AuthorAgent Author = "agent"
)

// String returns the string representation of the author.
func (a Author) String() string {
	return string(a)
}

// DisplayName returns a human-readable name for the author.
func (a Author) DisplayName() string {
	switch a {
	case AuthorSelf:
		return "You"
	case AuthorAgent:
		return "Astra"
	default:
		return string(a)
	}
}

// AuthorForRole maps a backend history role onto an author. Only
// "user_query" is the local user; every other role is the agent.
func AuthorForRole(role string) Author {
	if role == RoleUserQuery {
		return AuthorSelf
	}
	return AuthorAgent
}

// Backend history roles with special meaning.
const (
	RoleUserQuery = "user_query"
	RoleFullPlan  = "full_plan"
)

// =============================================================================
// KIND
// =============================================================================

// Kind tags how a message came to be. The set is closed; switches over Kind
// are expected to cover every value.
type Kind int

const (
	KindPlain Kind = iota
	KindStreamingChunk
	KindError
	KindUnknown
)

// String returns the wire-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindStreamingChunk:
		return "streaming_chunk"
	case KindError:
		return "error"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single transcript entry.
type Message struct {
	ID        string `json:"id"`
	Author    Author `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // display form, TimestampLayout
	Kind      Kind   `json:"kind"`
}

// NewMessage creates a message with a fresh client id stamped with the
// current local time.
func NewMessage(author Author, text string, kind Kind) Message {
	return Message{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		Timestamp: FormatTimestamp(time.Now()),
		Kind:      kind,
	}
}

// IsFromSelf reports whether the local user wrote the message.
func (m Message) IsFromSelf() bool {
	return m.Author == AuthorSelf
}

// FormatTimestamp renders t in local time with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimestampLayout)
}

// FormatBackendTimestamp parses a backend timestamp and renders it for
// display. Unparseable input yields "".
func FormatBackendTimestamp(raw string) string {
	t, ok := ParseBackendTime(raw)
	if !ok {
		return ""
	}
	return FormatTimestamp(t)
}

// backendLayouts are the timestamp forms the backend is known to emit,
// with and without zone information.
var backendLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseBackendTime parses a backend timestamp. Forms without a zone are
// read as UTC.
func ParseBackendTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range backendLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// =============================================================================
// INTERMEDIATE NOTE
// =============================================================================

// IntermediateNote is one entry in the thought-process feed.
type IntermediateNote struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewIntermediateNote stamps text with the current local time.
func NewIntermediateNote(text string) IntermediateNote {
	return IntermediateNote{Text: text, Timestamp: FormatTimestamp(time.Now())}
}
