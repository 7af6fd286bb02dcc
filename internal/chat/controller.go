// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/stream"
)

// Timing defaults.
const (
	DefaultChunkIdle    = 500 * time.Millisecond
	DefaultRefreshDelay = 2 * time.Second
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the slice of the REST API the controller needs.
type Backend interface {
	ListSessions(ctx context.Context) ([]model.Thread, error)
	ListMessages(ctx context.Context, sessionID string) ([]api.HistoryRecord, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Identity is the authenticated user the controller acts for.
type Identity struct {
	Token  string
	UserID int
}

// Options configures a Controller.
type Options struct {
	Backend      Backend
	Dialer       stream.Dialer
	URL          string // agent websocket endpoint
	AgentName    string
	Identity     Identity
	ChunkIdle    time.Duration
	RefreshDelay time.Duration
	Logger       *slog.Logger
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the thread list, the active selection, the transcript,
// the intermediate-notes feed and the agent socket.
type Controller struct {
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	onChange func()
	closed   bool

	// session store
	threads        []model.Thread
	activeID       string
	loadingThreads bool
	notice         string

	// transcript store
	messages       []model.Message
	notes          []model.IntermediateNote
	loadingHistory bool
	historyGen     uint64

	// streaming client
	input   string
	conn    stream.Conn
	connGen uint64
	state   model.ConnectionState
	reasm   reassembler
	refresh map[*time.Timer]struct{}
}

// New creates a disconnected controller with an empty thread list.
func New(opts Options) *Controller {
	if opts.ChunkIdle <= 0 {
		opts.ChunkIdle = DefaultChunkIdle
	}
	if opts.RefreshDelay <= 0 {
		opts.RefreshDelay = DefaultRefreshDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = stream.WSDialer{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.With("component", "chat")
	}
	return &Controller{
		opts:    opts,
		log:     log,
		threads: []model.Thread{},
		refresh: make(map[*time.Timer]struct{}),
	}
}

// SetOnChange registers fn to be called after every state change. fn runs
// on the goroutine that made the change, outside the controller lock, and
// may call Snapshot.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close tears down the socket and cancels every pending timer. The
// controller must not be used afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	err := c.dropConnLocked()
	for t := range c.refresh {
		t.Stop()
	}
	c.refresh = map[*time.Timer]struct{}{}
	c.mu.Unlock()
	c.notify()
	return err
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time copy of the controller state for rendering.
type Snapshot struct {
	Threads        []model.Thread
	ActiveID       string
	Messages       []model.Message
	Notes          []model.IntermediateNote
	Input          string
	Notice         string
	State          model.ConnectionState
	LoadingThreads bool
	LoadingHistory bool
	Streaming      bool // a reply is still being reassembled
}

// Snapshot returns a copy of the current state. The slices are never nil.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Threads:        append(make([]model.Thread, 0, len(c.threads)), c.threads...),
		ActiveID:       c.activeID,
		Messages:       append(make([]model.Message, 0, len(c.messages)), c.messages...),
		Notes:          append(make([]model.IntermediateNote, 0, len(c.notes)), c.notes...),
		Input:          c.input,
		Notice:         c.notice,
		State:          c.state,
		LoadingThreads: c.loadingThreads,
		LoadingHistory: c.loadingHistory,
		Streaming:      c.reasm.open(),
	}
}

// ActiveID returns the active thread id ("" when none).
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// State returns the socket state.
func (c *Controller) State() model.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetInput replaces the pending input text.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
	c.notify()
}

// DismissNotice clears the failure notice.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.notice = ""
	c.mu.Unlock()
	c.notify()
}
