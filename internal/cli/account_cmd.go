// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// account_cmd.go - login, logout and profile commands.
//
// Examples:
//
//	astra login alice
//	astra logout
//	astra profile
//	astra profile set --email alice@example.com --full-name "Alice A."
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/auth"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/profile"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// HandleLogin handles "astra login <username>".
func HandleLogin(args Args) error { return Run(args, runLogin) }

func runLogin(ctx context.Context, env *Env, args Args) error {
	username := JoinPositionalArgs(args.Parser(), 0)
	if username == "" {
		return ErrMissingArgument("username", "astra login alice")
	}

	ctx, cancel := env.requestContext(ctx)
	defer cancel()
	s, err := env.Auth.Login(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameRequired) {
			return ErrMissingArgument("username", "astra login alice")
		}
		return NewCommandError("login", username, auth.ErrorText(err), err)
	}

	if env.JSON {
		return env.printJSON("login", LoginData{UserID: s.UserID})
	}
	fmt.Fprintf(env.Out, "%s Logged in as %s (user %d)\n", SuccessStyle.Render("✓"), username, s.UserID)
	return nil
}

// HandleLogout handles "astra logout".
func HandleLogout(args Args) error { return Run(args, runLogout) }

func runLogout(_ context.Context, env *Env, _ Args) error {
	if err := env.Auth.Logout(); err != nil {
		return err
	}
	if env.JSON {
		return env.printJSON("logout", nil)
	}
	fmt.Fprintln(env.Out, "Logged out.")
	return nil
}

// =============================================================================
// PROFILE
// =============================================================================

// HandleProfile handles "astra profile [show|set]".
func HandleProfile(args Args) error { return Run(args, runProfile) }

func runProfile(ctx context.Context, env *Env, args Args) error {
	client, _, err := env.AuthedClient()
	if err != nil {
		return err
	}
	editor := profile.NewEditor(client)

	ctx, cancel := env.requestContext(ctx)
	defer cancel()
	if err := editor.Load(ctx); err != nil {
		return NewCommandError("profile", "show", api.MessageOf(err, "failed to load profile"), err)
	}

	switch args.Subcommand {
	case "", "show":
	case "set", "edit":
		if err := applyProfileFlags(ctx, editor, args.Parser()); err != nil {
			return err
		}
	default:
		return ErrUnknownSubcommand("profile", args.Subcommand, []string{"show", "set"})
	}

	p, _ := editor.Profile()
	if env.JSON {
		return env.printJSON("profile", p)
	}
	printProfile(env, p)
	return nil
}

// profileFlags maps flag names onto form field indices.
var profileFlags = []string{"username", "email", "full-name", "image-url"}

func applyProfileFlags(ctx context.Context, editor *profile.Editor, p *ArgParser) error {
	editor.Open()
	form := editor.Form()
	changed := false
	for i, name := range profileFlags {
		if v, ok := p.LookupFlag(name); ok {
			form.SetField(i, v)
			changed = true
		}
	}
	if !changed {
		editor.Cancel()
		return ErrMissingArgument("--username, --email, --full-name or --image-url",
			"astra profile set --email alice@example.com")
	}
	editor.SetForm(form)
	if err := editor.Submit(ctx); err != nil {
		if errors.Is(err, profile.ErrRequiredFields) {
			return NewValidationError("profile", "", err.Error())
		}
		return NewCommandError("profile", "set", editor.Error(), err)
	}
	return nil
}

func printProfile(env *Env, p model.Profile) {
	fmt.Fprintln(env.Out, TitleStyle.Render(p.DisplayName()))
	fmt.Fprintln(env.Out, RenderSeparator(40))
	fields := []struct {
		label string
		value string
	}{
		{"ID", fmt.Sprint(p.ID)},
		{"Username", p.Username},
		{"Email", p.Email},
		{"Full name", deref(p.FullName)},
		{"Image URL", deref(p.ImageURL)},
	}
	for _, f := range fields {
		fmt.Fprintf(env.Out, "%s %s\n", RenderLabel(f.label), ValueStyle.Render(f.value))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
