// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Full-screen TUI launcher.
package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/astra-tui/internal/auth"
	"github.com/jeranaias/astra-tui/internal/config"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/ui/app"
)

// RunTUI starts the TUI. A stored session skips the login screen. Edits
// to the config file are applied while it runs.
func RunTUI(args Args) error { return Run(args, runTUI) }

func runTUI(_ context.Context, env *Env, _ Args) error {
	log := logging.With("component", "tui")

	session, err := env.Auth.Load()
	if err != nil && !errors.Is(err, auth.ErrNotLoggedIn) {
		log.Warn("could not read stored session", "error", err)
	}

	m := app.New(app.Deps{
		Config:  env.Config,
		Auth:    env.Auth,
		Client:  env.Client,
		Dialer:  env.Dialer,
		Session: session,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	w, err := config.Watch(env.ConfigPath, func(cfg *config.Config) {
		p.Send(app.ConfigChangedMsg{Config: cfg})
	})
	if err != nil {
		log.Warn("config hot reload disabled", "error", err)
	} else {
		defer w.Close()
	}

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	}
	return err
}
