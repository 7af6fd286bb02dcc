// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// notes_cmd.go - notes and learnings commands.
//
// Subcommands:
//
//	notes [list]                          List notes (default)
//	notes add --title T <content...>      Create a note
//	notes edit <id> [--title T] [content] Update a note
//	notes rm <id> [--confirm]             Delete a note
//
//	learnings [type]                      List learnings, optionally by type
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/astra-tui/internal/learnings"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/notes"
	"github.com/jeranaias/astra-tui/internal/util"
)

var notesSubcommands = []string{"list", "add", "edit", "rm"}

// HandleNotes handles "astra notes".
func HandleNotes(args Args) error { return Run(args, runNotes) }

func runNotes(ctx context.Context, env *Env, args Args) error {
	client, s, err := env.AuthedClient()
	if err != nil {
		return err
	}
	list := notes.NewList(client, s.UserID)
	p := args.Parser()

	ctx, cancel := env.requestContext(ctx)
	defer cancel()

	switch args.Subcommand {
	case "", "list", "ls":
		if err := list.Refresh(ctx); err != nil {
			return NewCommandError("notes", "list", list.Err(), err)
		}
		return printNotes(env, list.Items())

	case "add", "new":
		title := p.Flag("title")
		content := JoinPositionalArgs(p, 1)
		if err := list.Create(ctx, title, content); err != nil {
			if errors.Is(err, notes.ErrContentRequired) {
				return ErrMissingArgument("content", `astra notes add --title Groceries "milk, eggs"`)
			}
			return NewCommandError("notes", "add", list.Err(), err)
		}
		return noteDone(env, "add", "Note saved.")

	case "edit", "update":
		id, err := ParseIntWithValidation(p.Positional(1), "note id")
		if err != nil {
			return err
		}
		if err := list.Refresh(ctx); err != nil {
			return NewCommandError("notes", "edit", list.Err(), err)
		}
		current, ok := findNote(list.Items(), id)
		if !ok {
			return NewCommandError("notes", "edit", fmt.Sprintf("note %d not found", id), nil)
		}
		title := current.Title
		if v, ok := p.LookupFlag("title"); ok {
			title = v
		}
		content := current.Content
		if rest := JoinPositionalArgs(p, 2); rest != "" {
			content = rest
		}
		if err := list.Update(ctx, id, title, content); err != nil {
			if errors.Is(err, notes.ErrContentRequired) {
				return NewValidationError("content", "", err.Error())
			}
			return NewCommandError("notes", "edit", list.Err(), err)
		}
		return noteDone(env, "edit", "Note updated.")

	case "rm", "delete":
		id, err := ParseIntWithValidation(p.Positional(1), "note id")
		if err != nil {
			return err
		}
		confirm := env.confirmer(args.Confirm)
		err = list.Delete(ctx, id, confirm)
		switch {
		case errors.Is(err, notes.ErrDeclined) && confirm.err != nil:
			return confirm.err
		case errors.Is(err, notes.ErrDeclined):
			ShowCancellationMessage(env.Out)
			return nil
		case err != nil:
			return NewCommandError("notes", "rm", list.Err(), err)
		}
		return noteDone(env, "rm", "Note deleted.")
	}
	return ErrUnknownSubcommand("notes", args.Subcommand, notesSubcommands)
}

func findNote(items []model.Note, id int) (model.Note, bool) {
	for _, n := range items {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}

func noteDone(env *Env, action, text string) error {
	if env.JSON {
		return env.printJSON("notes "+action, nil)
	}
	fmt.Fprintf(env.Out, "%s %s\n", SuccessStyle.Render("✓"), text)
	return nil
}

func printNotes(env *Env, items []model.Note) error {
	if env.JSON {
		if items == nil {
			items = []model.Note{}
		}
		return env.printJSON("notes", items)
	}
	fmt.Fprintln(env.Out, TitleStyle.Render("Your Notes"))
	if len(items) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No notes found."))
		return nil
	}
	for _, n := range items {
		fmt.Fprintf(env.Out, "%s %s\n", DimStyle.Render(fmt.Sprintf("#%-4d", n.ID)), ValueStyle.Bold(true).Render(n.DisplayTitle()))
		if n.Content != "" {
			fmt.Fprintf(env.Out, "      %s\n", util.TruncateWidth(util.FirstLine(n.Content), 70))
		}
	}
	return nil
}

// =============================================================================
// LEARNINGS
// =============================================================================

// HandleLearnings handles "astra learnings [type]".
func HandleLearnings(args Args) error { return Run(args, runLearnings) }

func runLearnings(ctx context.Context, env *Env, args Args) error {
	filter := model.LearningAll
	if args.Subcommand != "" {
		t, ok := model.ParseLearningType(strings.ToLower(args.Subcommand))
		if !ok {
			names := make([]string, len(model.LearningTypes))
			for i, lt := range model.LearningTypes {
				names[i] = string(lt)
			}
			return ErrUnknownSubcommand("learnings", args.Subcommand, names)
		}
		filter = t
	}

	client, s, err := env.AuthedClient()
	if err != nil {
		return err
	}
	list := learnings.NewList(client, s.UserID)
	ctx, cancel := env.requestContext(ctx)
	defer cancel()
	if err := list.SetFilter(ctx, filter); err != nil {
		return NewCommandError("learnings", string(filter), list.Err(), err)
	}

	items := list.Items()
	if env.JSON {
		if items == nil {
			items = []model.Learning{}
		}
		return env.printJSON("learnings", items)
	}
	fmt.Fprintf(env.Out, "%s %s\n", TitleStyle.Render("Learnings"), DimStyle.Render("("+filter.Label()+")"))
	if len(items) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No learnings found."))
		return nil
	}
	for _, l := range items {
		label := model.LearningType(l.KnowledgeType).Label()
		fmt.Fprintf(env.Out, "%s %s\n", WarningStyle.Render("["+label+"]"), l.Body())
	}
	return nil
}
