// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat REPL.
//
// Command: chat [--session ID]
//
// Interactive Commands (during chat):
//
//	/new                Start a new thread
//	/threads            List threads
//	/use ID             Switch to a thread and print its history
//	/reconnect          Reopen the agent socket
//	/help, /h           Show available commands
//	/quit, /q           Exit chat
//	Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/config"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one edited line.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Prompt reads a line and records it in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with 0600 permissions and restores the terminal.
func (c *ChatCLI) Close() {
	if err := config.EnsureDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	env  *Env
	ctl  *chat.Controller
	turn *turn
}

// HandleChat handles "astra chat".
func HandleChat(args Args) error { return Run(args, runChat) }

func runChat(ctx context.Context, env *Env, args Args) error {
	ctl, err := env.Controller()
	if err != nil {
		return err
	}
	defer ctl.Close()

	in := NewChatCLI()
	defer in.Close()
	return newREPL(env, ctl).run(ctx, in, args.Session)
}

func newREPL(env *Env, ctl *chat.Controller) *repl {
	return &repl{env: env, ctl: ctl, turn: newTurn(ctl)}
}

// run loads the threads, connects and reads lines until /quit or EOF.
func (r *repl) run(ctx context.Context, in lineReader, sessionID string) error {
	reqCtx, cancel := r.env.requestContext(ctx)
	r.ctl.LoadThreads(reqCtx)
	cancel()
	if sessionID != "" {
		if err := r.use(ctx, sessionID); err != nil {
			return err
		}
	} else if r.ctl.ActiveID() == "" {
		r.ctl.StartThread()
	}

	if err := r.ctl.Connect(ctx); err != nil {
		fmt.Fprintln(r.env.Err, WarningStyle.Render("Not connected: "+err.Error()+" (use /reconnect)"))
	}
	r.printWelcome()

	for {
		line, err := in.Prompt(SelfStyle.Render("you") + "> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.env.Out)
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := r.handleLine(ctx, line)
		if err != nil {
			fmt.Fprintln(r.env.Err, ErrorStyle.Render(err.Error()))
		}
		if quit {
			return nil
		}
	}
}

// handleLine runs one slash command or sends one query.
func (r *repl) handleLine(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "/") {
		return r.command(ctx, line)
	}

	askCtx, cancel := context.WithTimeout(ctx, DefaultReplyTimeout)
	defer cancel()
	rep, err := r.turn.ask(askCtx, line)
	if errors.Is(err, chat.ErrNotConnected) && len(rep.Messages) == 0 {
		return false, errors.New(chat.NotConnectedText)
	}
	printReply(r.env, rep)
	return false, err
}

func (r *repl) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return true, nil
	case "/help", "/h":
		r.printHelp()
	case "/new":
		id := r.ctl.StartThread()
		fmt.Fprintf(r.env.Out, "New thread %s\n", DimStyle.Render(id))
	case "/threads":
		reqCtx, cancel := r.env.requestContext(ctx)
		r.ctl.LoadThreads(reqCtx)
		cancel()
		r.printThreads()
	case "/use":
		if len(fields) < 2 {
			return false, ErrMissingArgument("thread id", "/use <id>")
		}
		return false, r.use(ctx, fields[1])
	case "/reconnect":
		if err := r.ctl.Connect(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(r.env.Out, SuccessStyle.Render("● connected"))
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
	return false, nil
}

// use switches to id and prints its transcript.
func (r *repl) use(ctx context.Context, id string) error {
	reqCtx, cancel := r.env.requestContext(ctx)
	defer cancel()
	if err := r.ctl.SelectThread(reqCtx, id); err != nil {
		return NewCommandError("chat", "use", "could not load thread", err)
	}
	for _, m := range r.ctl.Snapshot().Messages {
		printMessage(r.env, m)
	}
	return nil
}

func (r *repl) printThreads() {
	snap := r.ctl.Snapshot()
	if len(snap.Threads) == 0 {
		fmt.Fprintln(r.env.Out, DimStyle.Render("No chats yet."))
		return
	}
	for _, t := range snap.Threads {
		marker := "  "
		if t.SessionID == snap.ActiveID {
			marker = SelfStyle.Render("▸ ")
		}
		preview := "(no message yet)"
		if t.HasPreview() {
			preview = util.TruncateWidth(util.FirstLine(t.LastMessage), 50)
		}
		fmt.Fprintf(r.env.Out, "%s%s  %s\n", marker, t.SessionID, DimStyle.Render(preview))
	}
}

func (r *repl) printWelcome() {
	snap := r.ctl.Snapshot()
	fmt.Fprintln(r.env.Out, TitleStyle.Render("Astra Chat"))
	state := ErrorStyle.Render("○ " + snap.State.String())
	if snap.State == model.Connected {
		state = SuccessStyle.Render("● " + snap.State.String())
	}
	fmt.Fprintf(r.env.Out, "%s  thread %s\n", state, DimStyle.Render(snap.ActiveID))
	fmt.Fprintln(r.env.Out, DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Fprintln(r.env.Out)
}

func (r *repl) printHelp() {
	cmds := [][2]string{
		{"/new", "Start a new thread"},
		{"/threads", "List threads"},
		{"/use ID", "Switch to a thread"},
		{"/reconnect", "Reopen the agent socket"},
		{"/quit", "Exit chat"},
	}
	for _, c := range cmds {
		fmt.Fprintf(r.env.Out, "  %s %s\n", LabelStyle.Render(c[0]), c[1])
	}
}
