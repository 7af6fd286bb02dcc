// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// threads_cmd.go - threads, history and delete commands.
//
// Examples:
//
//	astra threads
//	astra history 3f2a7c
//	astra delete 3f2a7c --confirm
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/util"
)

// HandleThreads handles "astra threads".
func HandleThreads(args Args) error { return Run(args, runThreads) }

func runThreads(ctx context.Context, env *Env, _ Args) error {
	client, _, err := env.AuthedClient()
	if err != nil {
		return err
	}
	ctx, cancel := env.requestContext(ctx)
	defer cancel()
	threads, err := client.ListSessions(ctx)
	if err != nil {
		return NewCommandError("threads", "list", "could not fetch chat threads", err)
	}

	if env.JSON {
		if threads == nil {
			threads = []model.Thread{}
		}
		return env.printJSON("threads", threads)
	}
	if len(threads) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No chats yet."))
		return nil
	}
	for _, t := range threads {
		preview := "(no message yet)"
		if t.HasPreview() {
			preview = util.TruncateWidth(util.FirstLine(t.LastMessage), 50)
		}
		when := ""
		if ts := t.LastActivityTime(); !ts.IsZero() {
			when = ts.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(env.Out, "%s  %s  %s\n",
			ValueStyle.Render(util.PadRight(t.SessionID, 36)),
			DimStyle.Render(util.PadRight(when, 16)),
			preview)
	}
	return nil
}

// HandleHistory handles "astra history <id>".
func HandleHistory(args Args) error { return Run(args, runHistory) }

func runHistory(ctx context.Context, env *Env, args Args) error {
	id := args.Subcommand
	if id == "" {
		return ErrMissingArgument("thread id", "astra history <id>")
	}
	ctl, err := env.Controller()
	if err != nil {
		return err
	}
	defer ctl.Close()

	ctx, cancel := env.requestContext(ctx)
	defer cancel()
	if err := ctl.SelectThread(ctx, id); err != nil {
		return NewCommandError("history", id, "could not fetch messages", err)
	}
	msgs := ctl.Snapshot().Messages

	if env.JSON {
		if msgs == nil {
			msgs = []model.Message{}
		}
		return env.printJSON("history", HistoryData{SessionID: id, Messages: msgs})
	}
	if len(msgs) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No messages."))
		return nil
	}
	for _, m := range msgs {
		printMessage(env, m)
	}
	return nil
}

// printMessage writes one transcript entry with an author header.
func printMessage(env *Env, m model.Message) {
	style := AgentStyle
	if m.IsFromSelf() {
		style = SelfStyle
	}
	header := style.Render(m.Author.DisplayName())
	if m.Timestamp != "" {
		header += " " + DimStyle.Render(m.Timestamp)
	}
	fmt.Fprintln(env.Out, header)
	switch {
	case m.Kind == model.KindError:
		fmt.Fprintln(env.Out, ErrorStyle.Render(m.Text))
	case m.Author == model.AuthorAgent:
		fmt.Fprint(env.Out, renderReply(m.Text))
	default:
		fmt.Fprintln(env.Out, m.Text)
	}
	fmt.Fprintln(env.Out)
}

// HandleDelete handles "astra delete <id> [--confirm]".
func HandleDelete(args Args) error { return Run(args, runDelete) }

func runDelete(ctx context.Context, env *Env, args Args) error {
	id := args.Subcommand
	if id == "" {
		return ErrMissingArgument("thread id", "astra delete <id> --confirm")
	}
	ctl, err := env.Controller()
	if err != nil {
		return err
	}
	defer ctl.Close()

	confirm := env.confirmer(args.Confirm)
	ctx, cancel := env.requestContext(ctx)
	defer cancel()
	err = ctl.DeleteThread(ctx, id, confirm)
	switch {
	case errors.Is(err, chat.ErrDeclined) && confirm.err != nil:
		return confirm.err
	case errors.Is(err, chat.ErrDeclined):
		ShowCancellationMessage(env.Out)
		return nil
	case err != nil:
		return NewCommandError("delete", id, chat.DeleteFailedNotice, err)
	}

	if env.JSON {
		return env.printJSON("delete", map[string]string{"session_id": id})
	}
	fmt.Fprintf(env.Out, "%s Deleted %s\n", SuccessStyle.Render("✓"), id)
	return nil
}
