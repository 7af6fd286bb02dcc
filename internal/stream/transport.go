// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
)

// Frame types, re-exported so callers need not import the websocket
// package.
const (
	TextMessage  = websocket.TextMessage
	CloseMessage = websocket.CloseMessage
)

// DefaultHandshakeTimeout bounds the websocket upgrade.
const DefaultHandshakeTimeout = 10 * time.Second

// =============================================================================
// TRANSPORT SEAM
// =============================================================================

// Conn is a full-duplex message connection. ReadMessage must only be
// called from one goroutine; WriteMessage likewise.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a Conn to url.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, url string, header http.Header) (Conn, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	return f(ctx, url, header)
}

// =============================================================================
// WEBSOCKET DIALER
// =============================================================================

// WSDialer dials real websocket connections.
type WSDialer struct {
	HandshakeTimeout time.Duration
}

// Dial performs the websocket handshake against url.
func (d WSDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return &wsConn{Conn: conn}, nil
}

// wsConn sends a close frame before tearing the socket down.
type wsConn struct {
	*websocket.Conn
}

func (c *wsConn) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.Conn.WriteControl(CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.Conn.Close()
}

// IsNormalClose reports whether err is an orderly close rather than a
// transport failure.
func IsNormalClose(err error) bool {
	if err == nil {
		return false
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, websocket.ErrCloseSent)
}
