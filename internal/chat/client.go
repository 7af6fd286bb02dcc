// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/stream"
)

// =============================================================================
// STREAMING CLIENT
// =============================================================================

// Connect closes any open socket, dials a new one and writes the init
// envelope for the active session. The state is Connected only once the
// handshake envelope went out.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.dropConnLocked()
	gen := c.connGen
	ident := c.opts.Identity
	c.mu.Unlock()
	c.notify()

	header := http.Header{}
	if ident.Token != "" {
		header.Set("Authorization", "Bearer "+ident.Token)
	}
	conn, err := c.opts.Dialer.Dial(ctx, c.opts.URL, header)
	if err != nil {
		c.log.Warn("agent socket dial failed", "url", c.opts.URL, "error", err)
		return err
	}

	c.mu.Lock()
	if c.closed || gen != c.connGen {
		c.mu.Unlock()
		conn.Close()
		return ErrSuperseded
	}
	initEnv := stream.InitEnvelope(ident.Token, c.opts.AgentName, c.activeID, ident.UserID)
	if err := writeEnvelope(conn, initEnv); err != nil {
		c.mu.Unlock()
		conn.Close()
		c.log.Warn("init envelope write failed", "error", err)
		return err
	}
	c.conn = conn
	c.state = model.Connected
	c.mu.Unlock()

	c.log.Info("agent socket connected", "url", c.opts.URL)
	go c.readLoop(conn, gen)
	c.notify()
	return nil
}

// Disconnect closes the socket, if any. The controller stays usable.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	err := c.dropConnLocked()
	c.mu.Unlock()
	c.notify()
	return err
}

// dropConnLocked closes the current socket and retires its read loop.
func (c *Controller) dropConnLocked() error {
	c.connGen++
	c.state = model.Disconnected
	c.reasm.finalize(c.messages)
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Controller) readLoop(conn stream.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.onTransportClosed(gen, err)
			return
		}
		c.mu.Lock()
		if gen != c.connGen {
			c.mu.Unlock()
			return
		}
		c.dispatchLocked(data)
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Controller) onTransportClosed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.connGen {
		c.mu.Unlock()
		return
	}
	if stream.IsNormalClose(err) {
		c.log.Info("agent socket closed")
	} else {
		c.log.Warn("agent socket failed", "error", err)
	}
	c.dropConnLocked()
	c.mu.Unlock()
	c.notify()
}

// Send sends text, trimmed, as a query on the active session. Blank text
// is ignored. Without an open socket an error message is appended instead
// and nothing is written.
func (c *Controller) Send(text string) error {
	return c.send(text, false)
}

// SendInput sends the pending input (see SetInput) as typed and clears it
// once it has gone out.
func (c *Controller) SendInput() error {
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()
	return c.send(text, true)
}

func (c *Controller) send(text string, fromInput bool) error {
	if !fromInput {
		text = strings.TrimSpace(text)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn == nil || c.state != model.Connected {
		c.appendMessageLocked(model.NewMessage(model.AuthorAgent, NotConnectedText, model.KindError))
		c.mu.Unlock()
		c.notify()
		return ErrNotConnected
	}

	c.appendMessageLocked(model.NewMessage(model.AuthorSelf, text, model.KindPlain))
	env := stream.QueryEnvelope(c.opts.AgentName, text, c.activeID, c.opts.Identity.UserID)
	if err := writeEnvelope(c.conn, env); err != nil {
		c.log.Warn("query write failed", "error", err)
		c.dropConnLocked()
		c.mu.Unlock()
		c.notify()
		return err
	}
	if fromInput {
		c.input = ""
	}
	c.scheduleRefreshLocked()
	c.mu.Unlock()
	c.notify()
	return nil
}

// scheduleRefreshLocked reloads the thread list after the refresh delay
// so the new message shows up in the previews.
func (c *Controller) scheduleRefreshLocked() {
	var t *time.Timer
	t = time.AfterFunc(c.opts.RefreshDelay, func() {
		c.mu.Lock()
		_, pending := c.refresh[t]
		delete(c.refresh, t)
		closed := c.closed
		c.mu.Unlock()
		if pending && !closed {
			c.LoadThreads(context.Background())
		}
	})
	c.refresh[t] = struct{}{}
}

func writeEnvelope(conn stream.Conn, env stream.Outbound) error {
	data, err := stream.Encode(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return conn.WriteMessage(stream.TextMessage, data)
}
