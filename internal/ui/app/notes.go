// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/notes"
	"github.com/jeranaias/astra-tui/internal/ui/styles"
	"github.com/jeranaias/astra-tui/internal/util"
)

// notesDoneMsg reports a finished notes request.
type notesDoneMsg struct{ err error }

type notesMode int

const (
	notesBrowse notesMode = iota
	notesEditing
	notesConfirm
)

// notesScreen lists notes and edits one at a time. editingID is 0 for a
// new note.
type notesScreen struct {
	list  *notes.List
	theme *styles.Theme

	mode      notesMode
	cursor    int
	editingID int
	field     int
	title     textinput.Model
	content   textinput.Model
	busy      bool
}

func newNotesScreen(list *notes.List, theme *styles.Theme) *notesScreen {
	title := textinput.New()
	title.Placeholder = "Title (optional)"
	title.Prompt = "Title:   "
	content := textinput.New()
	content.Placeholder = "Note content"
	content.Prompt = "Content: "
	return &notesScreen{list: list, theme: theme, title: title, content: content}
}

func (s *notesScreen) run(op func() error) tea.Cmd {
	s.busy = true
	return func() tea.Msg { return notesDoneMsg{err: op()} }
}

func (s *notesScreen) refresh() tea.Cmd {
	list := s.list
	return s.run(func() error {
		ctx, cancel := requestContext()
		defer cancel()
		return list.Refresh(ctx)
	})
}

func (s *notesScreen) handle(msg tea.Msg) (tea.Cmd, bool) {
	if _, ok := msg.(notesDoneMsg); !ok {
		return nil, false
	}
	s.busy = false
	if n := len(s.list.Items()); s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
	return nil, true
}

func (s *notesScreen) update(msg tea.KeyMsg) tea.Cmd {
	switch s.mode {
	case notesEditing:
		return s.updateEditing(msg)
	case notesConfirm:
		return s.updateConfirm(msg)
	}

	items := s.list.Items()
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(items)-1 {
			s.cursor++
		}
	case "a", "n":
		s.startEdit(model.Note{})
		return textinput.Blink
	case "e", "enter":
		if s.cursor < len(items) {
			s.startEdit(items[s.cursor])
			return textinput.Blink
		}
	case "d":
		if s.cursor < len(items) {
			s.mode = notesConfirm
		}
	case "r":
		return s.refresh()
	}
	return nil
}

func (s *notesScreen) startEdit(n model.Note) {
	s.mode = notesEditing
	s.editingID = n.ID
	s.field = 1
	s.title.SetValue(n.Title)
	s.content.SetValue(n.Content)
	s.title.Blur()
	s.content.Focus()
}

func (s *notesScreen) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		s.mode = notesBrowse
		return nil
	case tea.KeyTab, tea.KeyShiftTab:
		s.field = 1 - s.field
		if s.field == 0 {
			s.content.Blur()
			s.title.Focus()
		} else {
			s.title.Blur()
			s.content.Focus()
		}
		return nil
	case tea.KeyEnter:
		title, content := s.title.Value(), s.content.Value()
		if strings.TrimSpace(content) == "" {
			return nil
		}
		list, id := s.list, s.editingID
		s.mode = notesBrowse
		return s.run(func() error {
			ctx, cancel := requestContext()
			defer cancel()
			if id == 0 {
				return list.Create(ctx, title, content)
			}
			return list.Update(ctx, id, title, content)
		})
	}

	var cmd tea.Cmd
	if s.field == 0 {
		s.title, cmd = s.title.Update(msg)
	} else {
		s.content, cmd = s.content.Update(msg)
	}
	return cmd
}

func (s *notesScreen) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		items := s.list.Items()
		s.mode = notesBrowse
		if s.cursor >= len(items) {
			return nil
		}
		list, id := s.list, items[s.cursor].ID
		return s.run(func() error {
			ctx, cancel := requestContext()
			defer cancel()
			// Confirmed on screen already.
			return list.Delete(ctx, id, nil)
		})
	case "n", "esc":
		s.mode = notesBrowse
	}
	return nil
}

func (s *notesScreen) view(width, height int) string {
	t := s.theme
	var b strings.Builder
	b.WriteString(t.PanelTitle.Render("Your Notes"))
	b.WriteString("\n\n")

	if s.mode == notesEditing {
		label := "New note"
		if s.editingID != 0 {
			label = "Edit note"
		}
		b.WriteString(t.FieldActive.Render(label))
		b.WriteString("\n")
		b.WriteString(s.title.View())
		b.WriteString("\n")
		b.WriteString(s.content.View())
		b.WriteString("\n")
		b.WriteString(t.Muted.Render("Enter save  Tab switch field  Esc cancel"))
		b.WriteString("\n\n")
	}

	items := s.list.Items()
	switch {
	case s.busy || s.list.Loading():
		b.WriteString(t.Muted.Render("Loading…"))
		b.WriteString("\n")
	case s.list.Err() != "":
		b.WriteString(t.ErrorStyle.Render(s.list.Err()))
		b.WriteString("\n")
	case len(items) == 0:
		b.WriteString(t.Muted.Render("No notes found."))
		b.WriteString("\n")
	}

	for i, n := range items {
		marker := "  "
		style := t.ThreadItem
		if i == s.cursor {
			marker = "> "
			style = t.ThreadSelected
		}
		b.WriteString(style.Render(marker + util.TruncateWidth(n.DisplayTitle(), max(width-8, 10))))
		b.WriteString("\n    ")
		b.WriteString(t.ThreadPreview.Render(util.TruncateWidth(util.FirstLine(n.Content), max(width-8, 10))))
		b.WriteString("\n    ")
		b.WriteString(t.ThreadMeta.Render(fmt.Sprintf("Created: %s | Last updated: %s", n.CreatedAt, n.UpdatedAt)))
		b.WriteString("\n")
	}

	if s.mode == notesConfirm {
		b.WriteString("\n")
		b.WriteString(t.DialogDanger.Render(notes.DeletePrompt + "  (y/n)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("a add  e edit  d delete  r refresh"))

	return t.Panel.Width(max(width-2, 10)).Height(max(height-2, 3)).Render(b.String())
}
