// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask "question" [--session ID]
//
// Connects to the agent socket, sends the question on a new (or the given)
// thread and prints the reply once the stream goes quiet or the agent
// reports completion.
//
// Examples:
//
//	astra ask "what is a goroutine?"
//	astra ask --session 3f2a7c "and a channel?"
//	astra ask --json "summarize my notes"
package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
)

// DefaultReplyTimeout bounds how long ask waits for a reply.
const DefaultReplyTimeout = 2 * time.Minute

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	replyRendererOnce sync.Once
	replyRenderer     *glamour.TermRenderer
)

// renderReply renders agent markdown for a terminal. Piped output gets the
// raw text so it stays greppable.
func renderReply(text string) string {
	if !IsStdoutTTY() {
		return ensureNewline(text)
	}
	replyRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			replyRenderer = r
		}
	})
	if replyRenderer == nil {
		return ensureNewline(text)
	}
	out, err := replyRenderer.Render(text)
	if err != nil {
		return ensureNewline(text)
	}
	return out
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// =============================================================================
// REPLY COLLECTION
// =============================================================================

// reply is what arrived on the active thread after one send.
type reply struct {
	Messages  []model.Message
	Notes     []model.IntermediateNote
	Completed bool
}

// Text joins the agent's plain replies.
func (r reply) Text() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Author == model.AuthorAgent && m.Kind != model.KindError {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Errors returns the text of every error message.
func (r reply) Errors() []string {
	var out []string
	for _, m := range r.Messages {
		if m.Kind == model.KindError {
			out = append(out, m.Text)
		}
	}
	return out
}

// turn sends one query and waits for its reply.
type turn struct {
	ctl     *chat.Controller
	changes chan struct{}
}

// newTurn subscribes to ctl's change notifications.
func newTurn(ctl *chat.Controller) *turn {
	t := &turn{ctl: ctl, changes: make(chan struct{}, 1)}
	ctl.SetOnChange(func() {
		select {
		case t.changes <- struct{}{}:
		default:
		}
	})
	return t
}

// ask sends text and blocks until the reply is complete, the socket drops
// or ctx ends.
func (t *turn) ask(ctx context.Context, text string) (reply, error) {
	before := t.ctl.Snapshot()
	if err := t.ctl.Send(text); err != nil {
		return reply{}, err
	}
	// The self message sits at len(before.Messages).
	msgStart := len(before.Messages) + 1
	noteStart := len(before.Notes)

	for {
		snap := t.ctl.Snapshot()
		r := collectReply(snap, msgStart, noteStart)
		switch {
		case r.Completed, len(r.Messages) > 0 && !snap.Streaming:
			return r, nil
		case snap.State == model.Disconnected:
			return r, fmt.Errorf("%w: connection lost before the reply finished", chat.ErrNotConnected)
		}
		select {
		case <-ctx.Done():
			return r, ctx.Err()
		case <-t.changes:
		}
	}
}

func collectReply(snap chat.Snapshot, msgStart, noteStart int) reply {
	var r reply
	if msgStart < len(snap.Messages) {
		r.Messages = snap.Messages[msgStart:]
	}
	if noteStart < len(snap.Notes) {
		r.Notes = snap.Notes[noteStart:]
	}
	for _, n := range r.Notes {
		if chat.IsCompletion(n) {
			r.Completed = true
		}
	}
	return r
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk handles "astra ask".
func HandleAsk(args Args) error { return Run(args, runAsk) }

func runAsk(ctx context.Context, env *Env, args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return ErrMissingArgument("question", `astra ask "what is a goroutine?"`)
	}
	ctl, err := env.Controller()
	if err != nil {
		return err
	}
	defer ctl.Close()

	sessionID := args.Session
	if sessionID == "" {
		sessionID = ctl.StartThread()
	} else {
		reqCtx, cancel := env.requestContext(ctx)
		err := ctl.SelectThread(reqCtx, sessionID)
		cancel()
		if err != nil {
			return NewCommandError("ask", sessionID, "could not load thread", err)
		}
	}
	log := logging.FromContext(logging.WithSessionID(ctx, sessionID))

	t := newTurn(ctl)
	ctx, cancel := context.WithTimeout(ctx, DefaultReplyTimeout)
	defer cancel()
	if err := ctl.Connect(ctx); err != nil {
		return NewCommandError("ask", "connect", "could not reach the agent", err)
	}

	start := time.Now()
	r, err := t.ask(ctx, args.Query)
	if err != nil && len(r.Messages) == 0 {
		return err
	}
	log.Debug("ask finished", "duration", time.Since(start), "messages", len(r.Messages))

	if env.JSON {
		return env.printJSON("ask", AskData{
			SessionID: sessionID,
			Query:     args.Query,
			Reply:     r.Text(),
			Errors:    r.Errors(),
			Notes:     r.Notes,
			Duration:  time.Since(start).Round(time.Millisecond).String(),
		})
	}
	if errs := r.Errors(); len(errs) > 0 && r.Text() == "" {
		return NewCommandError("ask", "reply", errs[0], nil)
	}
	printReply(env, r)
	return err
}

// printReply writes the agent messages of r.
func printReply(env *Env, r reply) {
	for _, m := range r.Messages {
		if m.Kind == model.KindError {
			fmt.Fprintln(env.Err, ErrorStyle.Render(m.Text))
			continue
		}
		fmt.Fprint(env.Out, renderReply(m.Text))
	}
}
