// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/ui/styles"
)

// requestTimeout bounds each backend call issued from the screen.
const requestTimeout = 15 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// changedMsg reports that the controller state moved on.
type changedMsg struct{}

// connectedMsg carries the outcome of a Connect.
type connectedMsg struct{ err error }

// deletedMsg carries the outcome of a DeleteThread.
type deletedMsg struct{ err error }

// copiedMsg carries the outcome of a clipboard write.
type copiedMsg struct{ err error }

// clearStatusMsg drops the transient status line.
type clearStatusMsg struct{ seq int }

// =============================================================================
// MODEL
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusThreads
)

// Options configures the screen.
type Options struct {
	Markdown     bool
	ShowThoughts bool
	// Copy writes to the clipboard; clipboard.WriteAll when nil.
	Copy func(string) error
}

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	ctl     *core.Controller
	theme   *styles.Theme
	keys    KeyMap
	changes chan struct{}
	snap    core.Snapshot
	md      *markdownRenderer
	copy    func(string) error

	width  int
	height int

	focus            focusArea
	cursor           int
	threadsMinimized bool
	showThoughts     bool
	pendingDelete    string // session id awaiting confirmation

	transcript viewport.Model
	thoughts   viewport.Model
	input      textinput.Model
	spinner    spinner.Model

	status    string
	statusSeq int
}

// New creates the screen for ctl. It registers itself as ctl's change
// observer.
func New(ctl *core.Controller, theme *styles.Theme, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter your message..."
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.AuthorAgent

	cp := opts.Copy
	if cp == nil {
		cp = clipboard.WriteAll
	}

	m := Model{
		ctl:          ctl,
		theme:        theme,
		keys:         DefaultKeyMap(),
		changes:      make(chan struct{}, 1),
		md:           newMarkdownRenderer(opts.Markdown, theme.IsDark),
		copy:         cp,
		showThoughts: opts.ShowThoughts,
		transcript:   viewport.New(80, 20),
		thoughts:     viewport.New(30, 20),
		input:        ti,
		spinner:      sp,
	}
	changes := m.changes
	ctl.SetOnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	m.snap = ctl.Snapshot()
	m.syncInput()
	return m
}

// Apply re-styles the screen with theme and the display options of opts.
// Copy is ignored.
func (m *Model) Apply(theme *styles.Theme, opts Options) {
	m.theme = theme
	m.input.PromptStyle = theme.InputPrompt
	m.spinner.Style = theme.AuthorAgent
	m.md = newMarkdownRenderer(opts.Markdown, theme.IsDark)
	m.showThoughts = opts.ShowThoughts
	m.layout()
	m.refreshContent()
}

// Init loads the thread list and opens the agent socket.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForChange(),
		m.spinner.Tick,
		m.loadThreads(),
		m.connect(),
	)
}

// Snapshot returns the state the screen last rendered from.
func (m Model) Snapshot() core.Snapshot {
	return m.snap
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func (m Model) loadThreads() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ctl.LoadThreads(ctx)
		return nil
	}
}

func (m Model) connect() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return connectedMsg{err: ctl.Connect(ctx)}
	}
}

func (m Model) selectThread(id string) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ctl.SelectThread(ctx, id)
		return nil
	}
}

func (m Model) deleteThread(id string) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		// The screen already asked.
		return deletedMsg{err: ctl.DeleteThread(ctx, id, core.AlwaysConfirm)}
	}
}

func (m Model) send(text string) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctl.SetInput(text)
		ctl.SendInput()
		return nil
	}
}

func (m Model) copyLastReply() tea.Cmd {
	text := m.ctl.LastAgentText()
	cp := m.copy
	return func() tea.Msg {
		if text == "" {
			return copiedMsg{err: errNothingToCopy}
		}
		return copiedMsg{err: cp(text)}
	}
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	seq := m.statusSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}
