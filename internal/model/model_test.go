// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestAuthorForRole(t *testing.T) {
	tests := []struct {
		role string
		want Author
	}{
		{"user_query", AuthorSelf},
		{"agent_response", AuthorAgent},
		{"assistant", AuthorAgent},
		{"", AuthorAgent},
	}
	for _, tc := range tests {
		if got := AuthorForRole(tc.role); got != tc.want {
			t.Errorf("AuthorForRole(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindPlain:          "plain",
		KindStreamingChunk: "streaming_chunk",
		KindError:          "error",
		KindUnknown:        "unknown",
		Kind(42):           "invalid",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestNewMessage_AssignsIDAndTimestamp(t *testing.T) {
	a := NewMessage(AuthorSelf, "hi", KindPlain)
	b := NewMessage(AuthorSelf, "hi", KindPlain)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if _, err := time.Parse(TimestampLayout, a.Timestamp); err != nil {
		t.Errorf("timestamp %q not in %s layout: %v", a.Timestamp, TimestampLayout, err)
	}
	if !a.IsFromSelf() {
		t.Error("expected self message")
	}
}

func TestFormatBackendTimestamp(t *testing.T) {
	utc := time.Date(2025, 3, 4, 9, 7, 0, 0, time.UTC)
	want := utc.Local().Format(TimestampLayout)

	for _, raw := range []string{
		"2025-03-04T09:07:00Z",
		"2025-03-04T09:07:00.123456",
		"2025-03-04 09:07:00",
	} {
		if got := FormatBackendTimestamp(raw); got != want {
			t.Errorf("FormatBackendTimestamp(%q) = %q, want %q", raw, got, want)
		}
	}
	if got := FormatBackendTimestamp("yesterday"); got != "" {
		t.Errorf("unparseable timestamp should render empty, got %q", got)
	}
}

// =============================================================================
// THREAD TESTS
// =============================================================================

func TestThread_LastActivityTime(t *testing.T) {
	th := Thread{SessionID: "s1", LastActivity: "2025-01-02T03:04:05Z"}
	if th.LastActivityTime().IsZero() {
		t.Error("expected parsed time")
	}
	if !(Thread{}).LastActivityTime().IsZero() {
		t.Error("missing activity should be zero")
	}
}

func TestContainsThread(t *testing.T) {
	threads := []Thread{{SessionID: "a"}, {SessionID: "b"}}
	if !ContainsThread(threads, "b") {
		t.Error("expected b to be found")
	}
	if ContainsThread(threads, "c") {
		t.Error("c should not be found")
	}
}

// =============================================================================
// ACCOUNT TESTS
// =============================================================================

func TestProfile_DisplayName(t *testing.T) {
	name := "Ada Lovelace"
	if got := (Profile{Username: "ada", FullName: &name}).DisplayName(); got != name {
		t.Errorf("DisplayName = %q", got)
	}
	if got := (Profile{Username: "ada"}).DisplayName(); got != "ada" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestLearning_Body(t *testing.T) {
	if got := (Learning{KnowledgeBlob: "blob", Content: "c"}).Body(); got != "blob" {
		t.Errorf("Body = %q", got)
	}
	if got := (Learning{Content: "c"}).Body(); got != "c" {
		t.Errorf("Body = %q", got)
	}
}

func TestParseLearningType(t *testing.T) {
	if lt, ok := ParseLearningType("mental_model"); !ok || lt.Label() != "Mental Model" {
		t.Errorf("ParseLearningType(mental_model) = %q, %v", lt, ok)
	}
	if _, ok := ParseLearningType("gossip"); ok {
		t.Error("unknown type must not parse")
	}
}
