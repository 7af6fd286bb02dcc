// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/model"
)

func TestLoadHistory_FiltersAndMaps(t *testing.T) {
	h := newHarness(t)
	h.backend.history["s1"] = []api.HistoryRecord{
		{ID: "1", Role: "user_query", Content: "\"Hi\\nthere\"", Timestamp: "2025-01-02T10:30:00Z"},
		{ID: "2", Role: "full_plan", Content: "{\"steps\":[]}"},
		{ID: "3", Role: "agent_response", Content: "Hello!"},
		{ID: "4", Role: "tool", Content: "other roles render as agent"},
	}

	require.NoError(t, h.ctl.SelectThread(context.Background(), "s1"))

	msgs := h.ctl.Snapshot().Messages
	require.Len(t, msgs, 3)

	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, model.AuthorSelf, msgs[0].Author)
	assert.Equal(t, "Hi\nthere", msgs[0].Text)
	assert.Equal(t, model.KindPlain, msgs[0].Kind)
	assert.NotEmpty(t, msgs[0].Timestamp)

	assert.Equal(t, model.AuthorAgent, msgs[1].Author)
	assert.Equal(t, "Hello!", msgs[1].Text)
	assert.Empty(t, msgs[1].Timestamp)

	assert.Equal(t, model.AuthorAgent, msgs[2].Author)
}

func TestLoadHistory_EmptyHistory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.SelectThread(context.Background(), "empty"))
	snap := h.ctl.Snapshot()
	assert.NotNil(t, snap.Messages)
	assert.Empty(t, snap.Messages)
}

func TestLastAgentText(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "", h.ctl.LastAgentText())

	h.backend.history["s"] = []api.HistoryRecord{
		{Role: "agent_response", Content: "answer"},
		{Role: "user_query", Content: "question"},
	}
	require.NoError(t, h.ctl.SelectThread(context.Background(), "s"))
	assert.Equal(t, "answer", h.ctl.LastAgentText())

	// Errors are skipped.
	require.ErrorIs(t, h.ctl.Send("hi"), ErrNotConnected)
	assert.Equal(t, "answer", h.ctl.LastAgentText())
}
