// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	core "github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/ui/styles"
	"github.com/jeranaias/astra-tui/internal/util"
)

// Display texts.
const (
	NoThreadsText     = "No chats yet."
	NoMessageYetText  = "(no message yet)"
	EmptyChatText     = "Start a conversation with Astra"
	LoadingText       = "Loading..."
	threadTitleRunes  = 20
	threadsWidth      = 30
	threadsMinWidth   = 5
	thoughtWidth      = 40
	frameBorderWidth  = 4 // border + padding on both sides
	frameBorderHeight = 2
)

// =============================================================================
// LAYOUT
// =============================================================================

type panelWidths struct {
	threads, chat, thought int
}

func (m Model) widths() panelWidths {
	w := panelWidths{chat: m.width}
	mode := m.theme.GetLayoutMode()
	if mode != styles.LayoutNarrow {
		w.threads = threadsWidth
		if m.threadsMinimized {
			w.threads = threadsMinWidth
		}
	}
	if m.showThoughts && mode == styles.LayoutWide {
		w.thought = thoughtWidth
	}
	w.chat = m.width - w.threads - w.thought
	if w.chat < 20 {
		w.chat = 20
	}
	return w
}

// bodyHeight is the height available to the panels between the header
// and the status bar.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 6 {
		h = 6
	}
	return h
}

func (m *Model) layout() {
	w := m.widths()
	inner := m.bodyHeight() - frameBorderHeight

	m.transcript.Width = max(w.chat-frameBorderWidth, 10)
	m.transcript.Height = max(inner-3, 3) // title + input
	m.input.Width = max(w.chat-frameBorderWidth-4, 10)

	m.thoughts.Width = max(w.thought-frameBorderWidth, 10)
	m.thoughts.Height = max(inner-1, 3)
}

// refreshContent re-renders the scrollable panels from the snapshot.
func (m *Model) refreshContent() {
	atBottom := m.transcript.AtBottom()
	m.transcript.SetContent(m.renderMessages(m.transcript.Width))
	if atBottom || m.snap.Streaming {
		m.transcript.GotoBottom()
	}
	m.thoughts.SetContent(m.renderThoughts(m.thoughts.Width))
	m.thoughts.GotoBottom()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 {
		return LoadingText
	}

	w := m.widths()
	h := m.bodyHeight()

	panels := make([]string, 0, 3)
	if w.threads > 0 {
		panels = append(panels, m.renderThreadsPanel(w.threads, h))
	}
	panels = append(panels, m.renderChatPanel(w.chat, h))
	if w.thought > 0 {
		panels = append(panels, m.renderThoughtPanel(w.thought, h))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panels...)

	if m.pendingDelete != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderConfirm())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatusBar())
}

func (m Model) renderHeader() string {
	left := m.theme.HeaderBrand.Render("Astra Chat")
	var light string
	if m.snap.State == model.Connected {
		light = m.theme.Connected.Render("● connected")
	} else {
		light = m.theme.Disconnected.Render("○ disconnected")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(light) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + light)
}

func (m Model) panelStyle(focused bool) lipgloss.Style {
	if focused {
		return m.theme.PanelFocused
	}
	return m.theme.Panel
}

// =============================================================================
// THREADS PANEL
// =============================================================================

func (m Model) renderThreadsPanel(width, height int) string {
	style := m.panelStyle(m.focus == focusThreads).
		Width(width - 2).
		Height(height - frameBorderHeight)

	if m.threadsMinimized {
		return style.Render(m.theme.PanelTitle.Render("≡"))
	}

	inner := width - frameBorderWidth
	var b strings.Builder
	b.WriteString(m.theme.PanelTitle.Render("Chat Threads"))
	b.WriteString("\n\n")

	switch {
	case m.snap.LoadingThreads && len(m.snap.Threads) == 0:
		b.WriteString(m.theme.Muted.Render(m.spinner.View() + " " + LoadingText))
	case len(m.snap.Threads) == 0:
		b.WriteString(m.theme.Muted.Render(NoThreadsText))
	default:
		for i, t := range m.snap.Threads {
			b.WriteString(m.renderThreadRow(t, i, inner))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutKey.Render("n") + m.theme.ShortcutDesc.Render(" new  ") +
		m.theme.ShortcutKey.Render("d") + m.theme.ShortcutDesc.Render(" delete"))
	return style.Render(b.String())
}

// ThreadTitle is the label of a thread row.
func ThreadTitle(t model.Thread) string {
	if !t.HasPreview() {
		return NoMessageYetText
	}
	return util.TakeRunes(t.SessionID, threadTitleRunes)
}

func (m Model) renderThreadRow(t model.Thread, i, width int) string {
	marker := "  "
	if m.focus == focusThreads && i == m.cursor {
		marker = "> "
	}
	title := util.TruncateWidth(ThreadTitle(t), width-3)
	if t.SessionID == m.snap.ActiveID {
		return m.theme.ThreadSelected.Render(marker + title)
	}
	return m.theme.ThreadItem.Render(marker + title)
}

// =============================================================================
// CHAT PANEL
// =============================================================================

func (m Model) renderChatPanel(width, height int) string {
	style := m.panelStyle(m.focus == focusInput).
		Width(width - 2).
		Height(height - frameBorderHeight)

	title := m.theme.PanelTitle.Render("Astra")
	if m.snap.LoadingHistory {
		title += " " + m.spinner.View()
	}
	if m.snap.Notice != "" {
		title += "  " + m.theme.ErrorStyle.Render(m.snap.Notice)
	}

	input := m.theme.InputContainer.Width(width - frameBorderWidth).Render(m.input.View())
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.transcript.View(), input))
}

func (m Model) renderMessages(width int) string {
	if len(m.snap.Messages) == 0 {
		if m.snap.LoadingHistory {
			return m.theme.EmptyState.Width(width).Render(LoadingText)
		}
		return m.theme.EmptyState.Width(width).Render(EmptyChatText)
	}

	parts := make([]string, 0, len(m.snap.Messages))
	for i, msg := range m.snap.Messages {
		last := i == len(m.snap.Messages)-1
		parts = append(parts, m.renderMessage(msg, last, width))
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderMessage(msg model.Message, last bool, width int) string {
	bubbleWidth := max(width-6, 10)

	author := m.theme.AuthorAgent.Render(msg.Author.DisplayName())
	if msg.IsFromSelf() {
		author = m.theme.AuthorSelf.Render(msg.Author.DisplayName())
	}
	header := author + " " + m.theme.Timestamp.Render(msg.Timestamp)

	var body string
	switch {
	case msg.IsFromSelf():
		body = m.theme.SelfBubble.Width(bubbleWidth).Render(msg.Text)
	case msg.Kind == model.KindError:
		body = m.theme.ErrorBubble.Width(bubbleWidth).Render(msg.Text)
	case msg.Kind == model.KindUnknown:
		body = m.theme.AgentBubble.Width(bubbleWidth).Render(m.theme.Muted.Render(msg.Text))
	default:
		text := m.md.render(msg.Text, bubbleWidth-4)
		if last && m.snap.Streaming {
			text += m.theme.StreamCursor.Render(" ▌")
		}
		body = m.theme.AgentBubble.Width(bubbleWidth).Render(text)
	}
	return header + "\n" + body
}

// =============================================================================
// THOUGHT PANEL
// =============================================================================

func (m Model) renderThoughtPanel(width, height int) string {
	style := m.theme.Panel.
		Width(width - 2).
		Height(height - frameBorderHeight)
	title := m.theme.PanelTitle.Render("Astra's Thought Process")
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.thoughts.View()))
}

func (m Model) renderThoughts(width int) string {
	if len(m.snap.Notes) == 0 {
		return m.theme.Muted.Width(width).Render(ThoughtEmptyText)
	}
	var b strings.Builder
	for i, n := range m.snap.Notes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.theme.NoteTime.Render(n.Timestamp))
		b.WriteString("\n")
		style := m.theme.NoteText
		if core.IsCompletion(n) {
			style = m.theme.NoteCompleted
		}
		body := renderNoteBody(n.Text)
		if body != n.Text {
			body = m.md.highlight(body, "yaml")
		}
		b.WriteString(style.Width(width).Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// STATUS AND DIALOGS
// =============================================================================

func (m Model) renderStatusBar() string {
	if m.status != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.status)
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	line := strings.Join(parts, "  ")
	return m.theme.StatusBar.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(line)
}

func (m Model) renderConfirm() string {
	help := fmt.Sprintf("%s / %s",
		keyHelp(m.keys.Confirm),
		keyHelp(m.keys.Cancel))
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.DialogTitle.Render("Delete chat thread"),
		core.DeleteThreadPrompt,
		"",
		m.theme.Muted.Render(help),
	)
	return m.theme.DialogDanger.Width(min(60, max(m.width-4, 20))).Render(body)
}

func keyHelp(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
