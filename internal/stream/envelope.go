// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// InitQuery is the query value of the handshake envelope.
const InitQuery = "init"

// ErrMalformed is returned by Decode when a frame is not a JSON object.
var ErrMalformed = errors.New("malformed event")

// =============================================================================
// OUTBOUND
// =============================================================================

// Outbound is the envelope sent to the agent socket. Token is only carried
// by the init envelope.
type Outbound struct {
	Token     string `json:"token,omitempty"`
	AgentName string `json:"agent_name"`
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	UserID    int    `json:"user_id"`
}

// InitEnvelope builds the handshake written right after the socket opens.
func InitEnvelope(token, agentName, sessionID string, userID int) Outbound {
	return Outbound{
		Token:     token,
		AgentName: agentName,
		Query:     InitQuery,
		SessionID: sessionID,
		UserID:    userID,
	}
}

// QueryEnvelope builds the envelope for a user query.
func QueryEnvelope(agentName, query, sessionID string, userID int) Outbound {
	return Outbound{
		AgentName: agentName,
		Query:     query,
		SessionID: sessionID,
		UserID:    userID,
	}
}

// IsInit reports whether o is a handshake envelope.
func (o Outbound) IsInit() bool {
	return o.Query == InitQuery
}

// Encode serializes o.
func Encode(o Outbound) ([]byte, error) {
	return json.Marshal(o)
}

// DecodeOutbound parses a client envelope. The mock backend reads client
// frames with it.
func DecodeOutbound(data []byte) (Outbound, error) {
	var o Outbound
	if err := json.Unmarshal(data, &o); err != nil {
		return Outbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return o, nil
}

// =============================================================================
// INBOUND
// =============================================================================

// EventType tags a server event.
type EventType string

const (
	EventSessionCreated EventType = "session_created"
	EventResponseChunk  EventType = "response_chunk"
	EventError          EventType = "error"
	EventIntermediate   EventType = "intermediate"
	EventCompleted      EventType = "completed"
)

// Known reports whether t is one of the tags the client handles.
func (t EventType) Known() bool {
	switch t {
	case EventSessionCreated, EventResponseChunk, EventError, EventIntermediate, EventCompleted:
		return true
	}
	return false
}

// Inbound is a decoded server event.
type Inbound struct {
	Type    EventType
	Payload json.RawMessage // nil when the frame had no payload
	Raw     []byte          // the frame as received
}

// Decode parses a server frame. Invalid JSON and a bare null fail with
// ErrMalformed. Any other JSON value decodes; only an object can carry a
// type, so arrays, strings and numbers come back with the empty tag, as
// does an object whose type is missing or not a string.
func Decode(data []byte) (Inbound, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		return Inbound{}, ErrMalformed
	}

	in := Inbound{Raw: data}
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return in, nil
	}
	in.Payload = fields["payload"]
	if rawType, ok := fields["type"]; ok {
		var t string
		if json.Unmarshal(rawType, &t) == nil {
			in.Type = EventType(t)
		}
	}
	return in, nil
}

// EncodeEvent serializes an event as {type, payload}. payload may be any JSON
// value.
func EncodeEvent(t EventType, payload any) ([]byte, error) {
	return json.Marshal(struct {
		Type    EventType `json:"type"`
		Payload any       `json:"payload"`
	}{t, payload})
}

// PayloadJSON returns the payload as compact JSON ("null" when absent).
func (in Inbound) PayloadJSON() string {
	return compact(in.Payload)
}

// EnvelopeJSON returns the whole frame as compact JSON.
func (in Inbound) EnvelopeJSON() string {
	return compact(in.Raw)
}

// ChunkText returns payload.chunk when it is a non-empty string, else the
// payload as compact JSON.
func (in Inbound) ChunkText() string {
	if s, ok := in.stringField("chunk"); ok && s != "" {
		return s
	}
	return in.PayloadJSON()
}

// ErrorText returns payload.message when it is a non-empty string, else
// the payload as compact JSON.
func (in Inbound) ErrorText() string {
	if s, ok := in.stringField("message"); ok && s != "" {
		return s
	}
	return in.PayloadJSON()
}

// NoteText returns a string payload as-is and any other payload as
// compact JSON.
func (in Inbound) NoteText() string {
	var s string
	if len(in.Payload) > 0 && json.Unmarshal(in.Payload, &s) == nil {
		return s
	}
	return in.PayloadJSON()
}

func (in Inbound) stringField(name string) (string, bool) {
	var obj map[string]json.RawMessage
	if len(in.Payload) == 0 || json.Unmarshal(in.Payload, &obj) != nil {
		return "", false
	}
	var s string
	if raw, ok := obj[name]; ok && json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	return "", false
}

func compact(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
