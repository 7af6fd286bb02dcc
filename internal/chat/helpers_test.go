// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/stream"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type fakeBackend struct {
	mu          sync.Mutex
	threads     []model.Thread
	threadsErr  error
	listCalls   int
	history     map[string][]api.HistoryRecord
	historyErr  error
	historyGate map[string]chan struct{}
	onHistory   func(id string) // called as a history fetch starts
	deleteErr   error
	deleted     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		history:     map[string][]api.HistoryRecord{},
		historyGate: map[string]chan struct{}{},
	}
}

func (b *fakeBackend) ListSessions(ctx context.Context) ([]model.Thread, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.threadsErr != nil {
		return nil, b.threadsErr
	}
	return append([]model.Thread(nil), b.threads...), nil
}

func (b *fakeBackend) ListMessages(ctx context.Context, id string) ([]api.HistoryRecord, error) {
	b.mu.Lock()
	gate := b.historyGate[id]
	hook := b.onHistory
	b.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	if gate != nil {
		<-gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.historyErr != nil {
		return nil, b.historyErr
	}
	return b.history[id], nil
}

func (b *fakeBackend) DeleteSession(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return b.deleteErr
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

// =============================================================================
// FAKE SOCKET
// =============================================================================

var errFakeClosed = errors.New("fake conn closed")

type fakeConn struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	mu       sync.Mutex
	written  [][]byte
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 64), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.in:
		return stream.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errFakeClosed
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// push delivers a server frame.
func (f *fakeConn) push(frame string) {
	f.in <- []byte(frame)
}

func (f *fakeConn) envelopes(t *testing.T) []stream.Outbound {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stream.Outbound, 0, len(f.written))
	for _, w := range f.written {
		var env stream.Outbound
		require.NoError(t, json.Unmarshal(w, &env))
		out = append(out, env)
	}
	return out
}

// fakeDialer hands out the queued conns in order and records headers.
type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	headers []http.Header
	err     error
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (stream.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.headers = append(d.headers, header)
	if d.err != nil {
		return nil, d.err
	}
	if len(d.conns) == 0 {
		return nil, errors.New("no conn queued")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

// =============================================================================
// HARNESS
// =============================================================================

const testIdle = 40 * time.Millisecond

type harness struct {
	t       *testing.T
	backend *fakeBackend
	dialer  *fakeDialer
	ctl     *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, backend: newFakeBackend(), dialer: &fakeDialer{}}
	h.ctl = New(Options{
		Backend:      h.backend,
		Dialer:       h.dialer,
		URL:          "ws://astra.test/agents/ws",
		AgentName:    "astra",
		Identity:     Identity{Token: "tok", UserID: 7},
		ChunkIdle:    testIdle,
		RefreshDelay: 30 * time.Millisecond,
	})
	t.Cleanup(func() { h.ctl.Close() })
	return h
}

// connect queues a fake conn and connects to it.
func (h *harness) connect() *fakeConn {
	h.t.Helper()
	conn := newFakeConn()
	h.dialer.mu.Lock()
	h.dialer.conns = append(h.dialer.conns, conn)
	h.dialer.mu.Unlock()
	require.NoError(h.t, h.ctl.Connect(context.Background()))
	return conn
}

func (h *harness) eventually(cond func(Snapshot) bool, msg string) Snapshot {
	h.t.Helper()
	var snap Snapshot
	require.Eventually(h.t, func() bool {
		snap = h.ctl.Snapshot()
		return cond(snap)
	}, 2*time.Second, 5*time.Millisecond, msg)
	return snap
}

func messageCount(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return len(s.Messages) == n }
}

func chunk(text string) string {
	data, _ := stream.EncodeEvent(stream.EventResponseChunk, map[string]string{"chunk": text})
	return string(data)
}
