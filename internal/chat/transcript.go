// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// LoadHistory reloads the transcript of the active thread. It is a no-op
// when sessionID is not the active thread. A failed fetch empties the
// transcript.
func (c *Controller) LoadHistory(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if sessionID == "" || sessionID != c.activeID {
		c.mu.Unlock()
		return nil
	}
	gen := c.beginHistoryLocked()
	c.mu.Unlock()
	c.notify()

	return c.fetchHistory(ctx, sessionID, gen)
}

// beginHistoryLocked starts a history load for the thread that was just
// made active. Every selection change takes a fresh generation, so only
// the load for the newest selection is ever applied.
func (c *Controller) beginHistoryLocked() uint64 {
	c.historyGen++
	c.loadingHistory = true
	return c.historyGen
}

// fetchHistory runs the load started under gen and applies it unless a
// newer selection superseded it.
func (c *Controller) fetchHistory(ctx context.Context, sessionID string, gen uint64) error {
	records, err := c.opts.Backend.ListMessages(ctx, sessionID)

	c.mu.Lock()
	if gen != c.historyGen || c.activeID != sessionID {
		if gen == c.historyGen {
			c.loadingHistory = false
		}
		c.mu.Unlock()
		logging.FromContext(logging.WithSessionID(ctx, sessionID)).Debug("discarding stale history response")
		return nil
	}
	c.loadingHistory = false
	if err != nil {
		c.log.Warn("history fetch failed", "session_id", sessionID, "error", err)
		c.replaceTranscriptLocked(nil)
	} else {
		c.replaceTranscriptLocked(historyToMessages(records))
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// historyToMessages drops planner records and maps the rest onto display
// messages.
func historyToMessages(records []api.HistoryRecord) []model.Message {
	msgs := make([]model.Message, 0, len(records))
	for _, r := range records {
		if r.Role == model.RoleFullPlan {
			continue
		}
		msgs = append(msgs, model.Message{
			ID:        string(r.ID),
			Author:    model.AuthorForRole(r.Role),
			Text:      NormalizeContent(r.Content),
			Timestamp: model.FormatBackendTimestamp(r.Timestamp),
			Kind:      model.KindPlain,
		})
	}
	return msgs
}

// appendMessageLocked closes any open streamed reply and appends m.
func (c *Controller) appendMessageLocked(m model.Message) {
	c.reasm.finalize(c.messages)
	c.messages = append(c.messages, m)
}

// replaceTranscriptLocked closes any open streamed reply and swaps in
// msgs wholesale.
func (c *Controller) replaceTranscriptLocked(msgs []model.Message) {
	c.reasm.finalize(c.messages)
	if msgs == nil {
		msgs = []model.Message{}
	}
	c.messages = msgs
}

// AppendLocal appends an optimistic self message without sending it.
func (c *Controller) AppendLocal(text string) {
	c.mu.Lock()
	c.appendMessageLocked(model.NewMessage(model.AuthorSelf, text, model.KindPlain))
	c.mu.Unlock()
	c.notify()
}

// LastAgentText returns the text of the newest agent reply that is not an
// error, or "".
func (c *Controller) LastAgentText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := c.messages[i]
		if m.Author != model.AuthorAgent {
			continue
		}
		switch m.Kind {
		case model.KindPlain, model.KindStreamingChunk:
			return m.Text
		case model.KindError, model.KindUnknown:
		}
	}
	return ""
}

// invalidateHistoryLocked drops any in-flight history response.
func (c *Controller) invalidateHistoryLocked() {
	c.historyGen++
	c.loadingHistory = false
}
