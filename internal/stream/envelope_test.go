// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// OUTBOUND TESTS
// =============================================================================

func TestInitEnvelope_Fields(t *testing.T) {
	data, err := Encode(InitEnvelope("tok", "astra", "s-1", 7))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{
		"token":      "tok",
		"agent_name": "astra",
		"query":      "init",
		"session_id": "s-1",
		"user_id":    float64(7),
	}, got)
}

func TestQueryEnvelope_OmitsToken(t *testing.T) {
	data, err := Encode(QueryEnvelope("astra", "hello", "s-1", 7))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	_, hasToken := got["token"]
	assert.False(t, hasToken, "query envelopes must not carry the token")
	assert.Equal(t, "hello", got["query"])

	back, err := DecodeOutbound(data)
	require.NoError(t, err)
	assert.False(t, back.IsInit())
}

// =============================================================================
// INBOUND TESTS
// =============================================================================

func TestDecode_RejectsInvalidAndNull(t *testing.T) {
	for _, frame := range []string{"not json", `null`, ``, `{"type":`} {
		_, err := Decode([]byte(frame))
		assert.True(t, errors.Is(err, ErrMalformed), "frame %q", frame)
	}
}

func TestDecode_NonObjectsAreUntyped(t *testing.T) {
	for _, frame := range []string{`"a string"`, `[1,2]`, `42`, `true`} {
		in, err := Decode([]byte(frame))
		require.NoError(t, err, "frame %q", frame)
		assert.Equal(t, EventType(""), in.Type, "frame %q", frame)
		assert.Equal(t, frame, in.EnvelopeJSON())
	}
}

func TestDecode_TypeHandling(t *testing.T) {
	in, err := Decode([]byte(`{"type":"response_chunk","payload":{"chunk":"Hel"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventResponseChunk, in.Type)
	assert.True(t, in.Type.Known())

	in, err = Decode([]byte(`{"type":5}`))
	require.NoError(t, err)
	assert.Equal(t, EventType(""), in.Type)
	assert.False(t, in.Type.Known())
	assert.Equal(t, "null", in.PayloadJSON())
}

func TestInbound_Text(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		text  func(Inbound) string
		want  string
	}{
		{"chunk string", `{"type":"response_chunk","payload":{"chunk":"lo"}}`, Inbound.ChunkText, "lo"},
		{"chunk missing", `{"type":"response_chunk","payload":{"delta":"lo"}}`, Inbound.ChunkText, `{"delta":"lo"}`},
		{"chunk empty", `{"type":"response_chunk","payload":{"chunk":""}}`, Inbound.ChunkText, `{"chunk":""}`},
		{"error message", `{"type":"error","payload":{"message":"boom"}}`, Inbound.ErrorText, "boom"},
		{"error no message", `{"type":"error","payload":{"code": 3}}`, Inbound.ErrorText, `{"code":3}`},
		{"note string", `{"type":"intermediate","payload":"planning"}`, Inbound.NoteText, "planning"},
		{"note object", `{"type":"intermediate","payload":{"step": 1, "of": 3}}`, Inbound.NoteText, `{"step":1,"of":3}`},
		{"note number", `{"type":"completed","payload":5}`, Inbound.NoteText, "5"},
		{"envelope", `{ "type": "mystery", "payload": [1, 2] }`, Inbound.EnvelopeJSON, `{"type":"mystery","payload":[1,2]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.want, tc.text(in))
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	data, err := EncodeEvent(EventCompleted, map[string]string{"status": "done"})
	require.NoError(t, err)
	in, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, EventCompleted, in.Type)
	assert.Equal(t, `{"status":"done"}`, in.NoteText())
}
