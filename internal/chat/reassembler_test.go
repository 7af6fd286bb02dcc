// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/astra-tui/internal/model"
)

func TestReassembler_PushAndFinalize(t *testing.T) {
	var r reassembler
	var msgs []model.Message

	msgs = r.push(msgs, "Hel")
	msgs = r.push(msgs, "lo")
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello", msgs[0].Text)
	assert.Equal(t, model.KindStreamingChunk, msgs[0].Kind)
	assert.True(t, r.open())

	r.finalize(msgs)
	assert.False(t, r.open())
	assert.Equal(t, "Hello", msgs[0].Text)

	msgs = r.push(msgs, "Next")
	require.Len(t, msgs, 2, "a chunk after finalize starts a new message")
	assert.Equal(t, "Next", msgs[1].Text)
}

func TestReassembler_DoesNotExtendForeignMessage(t *testing.T) {
	var r reassembler
	msgs := []model.Message{model.NewMessage(model.AuthorSelf, "question", model.KindPlain)}
	msgs = r.push(msgs, "a")
	// The open reply is no longer last; the next chunk must not touch the
	// self message.
	msgs = append(msgs, model.NewMessage(model.AuthorAgent, "Error: x", model.KindError))
	msgs = r.push(msgs, "b")
	require.Len(t, msgs, 4)
	assert.Equal(t, "question", msgs[0].Text)
	assert.Equal(t, "b", msgs[3].Text)
}

func TestReassembler_BlankBufferLeavesText(t *testing.T) {
	var r reassembler
	msgs := r.push(nil, "  ")
	r.finalize(msgs)
	assert.Equal(t, "  ", msgs[0].Text)
	assert.False(t, r.open())
}

func TestReassembler_StaleTimerIgnored(t *testing.T) {
	var r reassembler
	fired := make(chan uint64, 2)
	r.arm(time.Hour, func(gen uint64) { fired <- gen })
	first := r.gen
	r.arm(5*time.Millisecond, func(gen uint64) { fired <- gen })

	select {
	case gen := <-fired:
		assert.Equal(t, r.gen, gen)
		assert.NotEqual(t, first, gen)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	r.stop()
}
