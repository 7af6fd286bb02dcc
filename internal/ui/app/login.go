// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newLoginInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Enter your username (e.g., abhishek)"
	ti.Prompt = "Username: "
	ti.CharLimit = 64
	ti.Focus()
	return ti
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		username := strings.TrimSpace(m.login.Value())
		if username == "" || m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, m.loginCmd(username)
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m Model) loginCmd(username string) tea.Cmd {
	mgr := m.deps.Auth
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		s, err := mgr.Login(ctx, username)
		return loginResultMsg{session: s, err: err}
	}
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render("Welcome to Astra Chat"))
	b.WriteString("\n")
	b.WriteString(m.login.View())
	b.WriteString("\n\n")
	switch {
	case m.loggingIn:
		b.WriteString(m.theme.Muted.Render("Logging in..."))
	case m.loginErr != "":
		b.WriteString(m.theme.ErrorStyle.Render(m.loginErr))
	default:
		b.WriteString(m.theme.Muted.Render("Enter to log in, Ctrl+C to quit"))
	}
	box := m.theme.Dialog.Width(56).Render(b.String())
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
