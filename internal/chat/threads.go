// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/jeranaias/astra-tui/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// LoadThreads refreshes the thread list. A failed fetch yields an empty
// list and is only logged. The auto-selection rule is applied afterwards,
// which may load the history of a newly selected thread.
func (c *Controller) LoadThreads(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.loadingThreads = true
	c.mu.Unlock()
	c.notify()

	threads, err := c.opts.Backend.ListSessions(ctx)
	if err != nil {
		c.log.Warn("thread list fetch failed", "error", err)
		threads = nil
	}
	if threads == nil {
		threads = []model.Thread{}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.loadingThreads = false
	c.threads = threads
	load, gen := c.autoSelectLocked()
	c.mu.Unlock()
	c.notify()

	if load != "" {
		c.fetchHistory(ctx, load, gen)
	}
}

// autoSelectLocked applies the selection rule to a refreshed list. It
// returns the id whose history should be loaded, or "", and the history
// generation taken for it.
func (c *Controller) autoSelectLocked() (string, uint64) {
	if c.activeID == "" {
		if len(c.threads) == 0 {
			return "", 0
		}
		c.activeID = c.threads[0].SessionID
		c.notes = nil
		return c.activeID, c.beginHistoryLocked()
	}
	if !model.ContainsThread(c.threads, c.activeID) {
		c.activeID = ""
		c.invalidateHistoryLocked()
		c.replaceTranscriptLocked(nil)
	}
	return "", 0
}

// SelectThread makes id the active thread and loads its history. An empty
// id starts a new thread instead. The intermediate-notes feed is cleared
// either way.
func (c *Controller) SelectThread(ctx context.Context, id string) error {
	if id == "" {
		c.StartThread()
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.activeID = id
	c.notes = nil
	c.replaceTranscriptLocked(nil)
	gen := c.beginHistoryLocked()
	c.mu.Unlock()
	c.notify()

	return c.fetchHistory(ctx, id, gen)
}

// StartThread creates a fresh session id, prepends a placeholder thread
// for it and makes it active with an empty transcript. The backend learns
// about it with the first message.
func (c *Controller) StartThread() string {
	id := uuid.NewString()

	c.mu.Lock()
	c.activeID = id
	c.notes = nil
	c.threads = append([]model.Thread{{SessionID: id}}, c.threads...)
	c.invalidateHistoryLocked()
	c.replaceTranscriptLocked(nil)
	c.mu.Unlock()
	c.notify()
	return id
}

// DeleteThread asks confirm, then deletes id on the backend. A nil confirm
// declines; pass AlwaysConfirm once the caller has asked. On success
// the thread leaves the list and, if it was active, the selection and
// transcript are cleared. On failure the list is untouched and a notice is
// set.
func (c *Controller) DeleteThread(ctx context.Context, id string, confirm Confirmer) error {
	if id == "" {
		return nil
	}
	if confirm == nil || !confirm.Confirm(DeleteThreadPrompt) {
		return ErrDeclined
	}

	err := c.opts.Backend.DeleteSession(ctx, id)

	c.mu.Lock()
	if err != nil {
		c.log.Warn("thread delete failed", "session_id", id, "error", err)
		c.notice = DeleteFailedNotice
		c.mu.Unlock()
		c.notify()
		return err
	}

	kept := c.threads[:0:0]
	for _, t := range c.threads {
		if t.SessionID != id {
			kept = append(kept, t)
		}
	}
	c.threads = kept
	if c.activeID == id {
		c.activeID = ""
		c.invalidateHistoryLocked()
		c.replaceTranscriptLocked(nil)
	}
	c.mu.Unlock()
	c.notify()
	return nil
}
