// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/model"
)

var errNothingToCopy = errors.New("no reply to copy")

// Update handles a Bubble Tea message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.refreshContent()
		return m, nil

	case changedMsg:
		m.snap = m.ctl.Snapshot()
		m.clampCursor()
		m.syncInput()
		m.refreshContent()
		return m, m.waitForChange()

	case connectedMsg:
		if msg.err != nil && !errors.Is(msg.err, core.ErrSuperseded) {
			return m, m.setStatus("Connect failed: " + msg.err.Error())
		}
		return m, nil

	case deletedMsg:
		if msg.err == nil {
			return m, m.setStatus("Chat thread deleted")
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			return m, m.setStatus("Copy failed: " + msg.err.Error())
		}
		return m, m.setStatus("Copied last reply")

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.snap.Streaming || m.snap.LoadingHistory || m.snap.LoadingThreads {
			m.refreshContent()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != "" {
		return m.handleConfirmKey(msg)
	}
	if m.snap.Notice != "" {
		// Any key dismisses the failure notice.
		m.ctl.DismissNotice()
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.ToggleThreads):
		m.threadsMinimized = !m.threadsMinimized
		if m.threadsMinimized && m.focus == focusThreads {
			m.toggleFocus()
		}
		m.layout()
		m.refreshContent()
		return m, nil
	case key.Matches(msg, m.keys.ToggleThought):
		m.showThoughts = !m.showThoughts
		m.layout()
		m.refreshContent()
		return m, nil
	case key.Matches(msg, m.keys.Reconnect):
		return m, tea.Batch(m.setStatus("Connecting..."), m.connect())
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLastReply()
	case key.Matches(msg, m.keys.PageUp):
		m.transcript.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.transcript.HalfViewDown()
		return m, nil
	}

	if m.focus == focusThreads {
		return m.handleThreadKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleThreadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Threads)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if t, ok := m.threadAtCursor(); ok {
			return m, m.selectThread(t.SessionID)
		}
	case key.Matches(msg, m.keys.NewThread):
		m.cursor = 0
		return m, m.selectThread("")
	case key.Matches(msg, m.keys.DeleteThread):
		if t, ok := m.threadAtCursor(); ok {
			m.pendingDelete = t.SessionID
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.pendingDelete
		m.pendingDelete = ""
		return m, m.deleteThread(id)
	case key.Matches(msg, m.keys.Cancel):
		m.pendingDelete = ""
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		text := m.input.Value()
		if strings.TrimSpace(text) == "" || m.snap.State != model.Connected {
			return m, nil
		}
		m.input.SetValue("")
		return m, m.send(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) toggleFocus() {
	if m.focus == focusInput && !m.threadsMinimized {
		m.focus = focusThreads
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.syncInput()
}

// syncInput focuses the input only while it is the active panel and the
// socket is open.
func (m *Model) syncInput() {
	if m.focus == focusInput && m.snap.State == model.Connected {
		m.input.Placeholder = "Enter your message..."
		m.input.Focus()
		return
	}
	if m.snap.State != model.Connected {
		m.input.Placeholder = "Not connected (Ctrl+R to reconnect)"
	}
	m.input.Blur()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.snap.Threads) {
		m.cursor = len(m.snap.Threads) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) threadAtCursor() (model.Thread, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Threads) {
		return model.Thread{}, false
	}
	return m.snap.Threads[m.cursor], true
}
