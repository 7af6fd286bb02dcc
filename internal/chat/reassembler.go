// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/jeranaias/astra-tui/internal/model"
)

// =============================================================================
// CHUNK REASSEMBLER
// =============================================================================

// reassembler joins response_chunk fragments into the trailing agent
// message. It is open while buf is non-empty; an open reply is always the
// last transcript entry and has KindStreamingChunk.
//
// All methods are called with the controller lock held.
type reassembler struct {
	buf   strings.Builder
	timer *time.Timer
	gen   uint64 // bumped on every arm/stop so stale timer fires are ignored
}

func (r *reassembler) open() bool {
	return r.buf.Len() > 0
}

// push applies chunk to msgs and returns the updated slice.
func (r *reassembler) push(msgs []model.Message, chunk string) []model.Message {
	if r.open() && lastIsStreaming(msgs) {
		r.buf.WriteString(chunk)
		msgs[len(msgs)-1].Text = r.buf.String()
		return msgs
	}

	r.buf.Reset()
	r.buf.WriteString(chunk)
	return append(msgs, model.NewMessage(model.AuthorAgent, chunk, model.KindStreamingChunk))
}

// finalize writes the buffer into the open message one last time and
// closes it. A blank buffer leaves the message text alone.
func (r *reassembler) finalize(msgs []model.Message) {
	r.stop()
	if !r.open() {
		return
	}
	full := r.buf.String()
	if strings.TrimSpace(full) != "" && lastIsStreaming(msgs) {
		msgs[len(msgs)-1].Text = full
	}
	r.buf.Reset()
}

// arm (re)starts the idle timer; fire receives the generation it was
// armed with.
func (r *reassembler) arm(idle time.Duration, fire func(gen uint64)) {
	r.stop()
	gen := r.gen
	r.timer = time.AfterFunc(idle, func() { fire(gen) })
}

func (r *reassembler) stop() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
}

func lastIsStreaming(msgs []model.Message) bool {
	if len(msgs) == 0 {
		return false
	}
	last := msgs[len(msgs)-1]
	return last.Author == model.AuthorAgent && last.Kind == model.KindStreamingChunk
}

// =============================================================================
// CONTROLLER HOOKS
// =============================================================================

func (c *Controller) pushChunkLocked(chunk string) {
	c.messages = c.reasm.push(c.messages, chunk)
	c.reasm.arm(c.opts.ChunkIdle, c.onChunkIdle)
}

func (c *Controller) onChunkIdle(gen uint64) {
	c.mu.Lock()
	if gen != c.reasm.gen {
		c.mu.Unlock()
		return
	}
	c.reasm.finalize(c.messages)
	c.mu.Unlock()
	c.notify()
}
