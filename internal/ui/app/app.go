// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/auth"
	core "github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/config"
	"github.com/jeranaias/astra-tui/internal/learnings"
	"github.com/jeranaias/astra-tui/internal/notes"
	"github.com/jeranaias/astra-tui/internal/profile"
	"github.com/jeranaias/astra-tui/internal/stream"
	uichat "github.com/jeranaias/astra-tui/internal/ui/chat"
	"github.com/jeranaias/astra-tui/internal/ui/styles"
)

const requestTimeout = 15 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// ConfigChangedMsg is sent by the config watcher after the file changed.
type ConfigChangedMsg struct {
	Config *config.Config
}

type loginResultMsg struct {
	session auth.Session
	err     error
}

type loggedOutMsg struct{ err error }

// =============================================================================
// MODEL
// =============================================================================

type screen int

const (
	screenLogin screen = iota
	screenChat
	screenNotes
	screenLearnings
)

// Deps are the collaborators of the TUI.
type Deps struct {
	Config *config.Config
	Auth   *auth.Manager
	Client *api.Client
	// Dialer overrides the websocket dialer (tests).
	Dialer stream.Dialer
	// Session is the stored session, if any.
	Session auth.Session
}

// Model is the root model.
type Model struct {
	deps  Deps
	cfg   *config.Config
	theme *styles.Theme
	keys  keyMap

	width  int
	height int
	screen screen
	status string

	login     textinput.Model
	loginErr  string
	loggingIn bool

	// Per-session state; nil until logged in.
	session   auth.Session
	ctl       *core.Controller
	chat      uichat.Model
	notes     *notesScreen
	learnings *learningsScreen
	profile   *profileDialog
}

type keyMap struct {
	Quit      key.Binding
	Chat      key.Binding
	Notes     key.Binding
	Learnings key.Binding
	Profile   key.Binding
	Logout    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
		Chat:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "chat")),
		Notes:     key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "notes")),
		Learnings: key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "learnings")),
		Profile:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("C-p", "profile")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("C-l", "log out")),
	}
}

// New creates the root model. With a valid deps.Session the chat screen
// opens directly; otherwise the login screen does.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	m := Model{
		deps:  deps,
		cfg:   cfg,
		theme: styles.NewTheme(cfg.UI.Theme),
		keys:  defaultKeyMap(),
		login: newLoginInput(),
	}
	if deps.Session.Valid() {
		m.startSession(deps.Session)
	}
	return m
}

// Init starts the active screen.
func (m Model) Init() tea.Cmd {
	if m.screen == screenLogin {
		return textinput.Blink
	}
	return m.sessionInit()
}

// Close releases the session resources.
func (m Model) Close() {
	if m.ctl != nil {
		m.ctl.Close()
	}
}

// startSession builds the per-session screens. It does not issue any
// request; sessionInit does.
func (m *Model) startSession(s auth.Session) {
	client := m.deps.Client.WithToken(s.Token)
	m.session = s
	m.ctl = core.New(core.Options{
		Backend:      client,
		Dialer:       m.deps.Dialer,
		URL:          m.cfg.Backend.WSURL,
		AgentName:    m.cfg.Agent.Name,
		Identity:     core.Identity{Token: s.Token, UserID: s.UserID},
		ChunkIdle:    m.cfg.Agent.ChunkIdle(),
		RefreshDelay: m.cfg.Agent.RefreshDelay(),
	})
	m.chat = uichat.New(m.ctl, m.theme, uichat.Options{
		Markdown:     m.cfg.UI.Markdown,
		ShowThoughts: m.cfg.UI.ThoughtPanel,
	})
	m.notes = newNotesScreen(notes.NewList(client, s.UserID), m.theme)
	m.learnings = newLearningsScreen(learnings.NewList(client, s.UserID), m.theme)
	m.profile = newProfileDialog(profile.NewEditor(client), m.theme)
	m.screen = screenChat
	if m.width > 0 {
		m.resize()
	}
}

func (m Model) sessionInit() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.profile.load())
}

func (m *Model) endSession() {
	if m.ctl != nil {
		m.ctl.Close()
	}
	m.ctl = nil
	m.notes, m.learnings, m.profile = nil, nil, nil
	m.session = auth.Session{}
	m.screen = screenLogin
	m.login.SetValue("")
	m.login.Focus()
}

func (m *Model) resize() {
	bodyHeight := m.height - 1 // nav bar
	if m.ctl != nil {
		next, _ := m.chat.Update(tea.WindowSizeMsg{Width: m.width, Height: bodyHeight})
		m.chat = next.(uichat.Model)
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles a Bubble Tea message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case ConfigChangedMsg:
		if msg.Config != nil {
			m.cfg = msg.Config
			m.theme = styles.NewTheme(m.cfg.UI.Theme)
			m.theme.SetSize(m.width, m.height)
			if m.ctl != nil {
				m.notes.theme, m.learnings.theme, m.profile.theme = m.theme, m.theme, m.theme
				m.chat.Apply(m.theme, uichat.Options{
					Markdown:     m.cfg.UI.Markdown,
					ShowThoughts: m.cfg.UI.ThoughtPanel,
				})
			}
			m.status = "Configuration reloaded"
		}
		return m, nil

	case loginResultMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = auth.ErrorText(msg.err)
			return m, nil
		}
		m.loginErr = ""
		m.startSession(msg.session)
		return m, m.sessionInit()

	case loggedOutMsg:
		m.endSession()
		if msg.err != nil {
			m.loginErr = msg.err.Error()
		}
		return m, textinput.Blink

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Close()
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		if m.profile.open() {
			return m, m.profile.update(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Chat):
			m.screen = screenChat
			return m, nil
		case key.Matches(msg, m.keys.Notes):
			m.screen = screenNotes
			return m, m.notes.refresh()
		case key.Matches(msg, m.keys.Learnings):
			m.screen = screenLearnings
			return m, m.learnings.refresh()
		case key.Matches(msg, m.keys.Profile):
			m.profile.show()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Logout):
			return m, m.logout()
		}
	}

	if m.ctl == nil {
		if m.screen == screenLogin {
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Screen-local messages.
	if cmd, ok := m.profile.handle(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.notes.handle(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.learnings.handle(msg); ok {
		return m, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch m.screen {
		case screenNotes:
			return m, m.notes.update(k)
		case screenLearnings:
			return m, m.learnings.update(k)
		}
	}

	// Everything else goes to the chat screen, which must keep consuming
	// controller changes while another screen is showing.
	next, cmd := m.chat.Update(msg)
	m.chat = next.(uichat.Model)
	return m, cmd
}

func (m Model) logout() tea.Cmd {
	mgr := m.deps.Auth
	return func() tea.Msg {
		if mgr == nil {
			return loggedOutMsg{}
		}
		return loggedOutMsg{err: mgr.Logout()}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen.
func (m Model) View() string {
	if m.screen == screenLogin || m.ctl == nil {
		return m.viewLogin()
	}
	if m.profile.open() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.profile.view())
	}

	var body string
	switch m.screen {
	case screenNotes:
		body = m.notes.view(m.width, m.height-1)
	case screenLearnings:
		body = m.learnings.view(m.width, m.height-1)
	default:
		body = m.chat.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderNav(), body)
}

func (m Model) renderNav() string {
	items := []struct {
		s     screen
		label string
	}{
		{screenChat, "F1 Chat"},
		{screenNotes, "F2 Notes"},
		{screenLearnings, "F3 Learnings"},
	}
	var parts []string
	for _, it := range items {
		if it.s == m.screen {
			parts = append(parts, m.theme.NavActive.Render(it.label))
		} else {
			parts = append(parts, m.theme.NavItem.Render(it.label))
		}
	}
	right := m.theme.Muted.Render("C-p " + m.profile.displayName() + "  C-l log out")
	if m.status != "" {
		right = m.theme.SuccessStyle.Render(m.status) + "  " + right
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
