// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/astra-tui/internal/learnings"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/ui/styles"
	"github.com/jeranaias/astra-tui/internal/util"
)

type learningsDoneMsg struct{ err error }

type learningsScreen struct {
	list   *learnings.List
	theme  *styles.Theme
	cursor int
	busy   bool
}

func newLearningsScreen(list *learnings.List, theme *styles.Theme) *learningsScreen {
	return &learningsScreen{list: list, theme: theme}
}

func (s *learningsScreen) setFilter(t model.LearningType) tea.Cmd {
	s.busy = true
	list := s.list
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return learningsDoneMsg{err: list.SetFilter(ctx, t)}
	}
}

func (s *learningsScreen) refresh() tea.Cmd {
	return s.setFilter(s.list.Filter())
}

func (s *learningsScreen) handle(msg tea.Msg) (tea.Cmd, bool) {
	if _, ok := msg.(learningsDoneMsg); !ok {
		return nil, false
	}
	s.busy = false
	s.cursor = 0
	return nil, true
}

func (s *learningsScreen) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "f", "right", "l":
		return s.setFilter(learnings.Next(s.list.Filter()))
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.list.Items())-1 {
			s.cursor++
		}
	case "r":
		return s.refresh()
	}
	return nil
}

func (s *learningsScreen) view(width, height int) string {
	t := s.theme
	var b strings.Builder
	b.WriteString(t.PanelTitle.Render("Learnings"))
	b.WriteString("\n\n")

	var tabs []string
	for _, lt := range model.LearningTypes {
		if lt == s.list.Filter() {
			tabs = append(tabs, t.NavActive.Render(lt.Label()))
		} else {
			tabs = append(tabs, t.NavItem.Render(lt.Label()))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	items := s.list.Items()
	switch {
	case s.busy || s.list.Loading():
		b.WriteString(t.Muted.Render("Loading..."))
	case s.list.Err() != "":
		b.WriteString(t.ErrorStyle.Render(s.list.Err()))
	case len(items) == 0:
		b.WriteString(t.Muted.Render("No learnings yet."))
	}
	b.WriteString("\n")

	textWidth := max(width-10, 10)
	for i, l := range items {
		style := t.ThreadItem
		marker := "  "
		if i == s.cursor {
			style, marker = t.ThreadSelected, "> "
		}
		label := model.LearningType(l.KnowledgeType).Label()
		b.WriteString(style.Render(marker + "[" + label + "] " + util.TruncateWidth(util.FirstLine(l.Body()), textWidth)))
		b.WriteString("\n")
		if i == s.cursor {
			b.WriteString(t.ThreadPreview.Width(textWidth).MarginLeft(4).Render(l.Body()))
			b.WriteString("\n    ")
			b.WriteString(t.ThreadMeta.Render(l.CreatedAt))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("Tab next filter  r refresh"))
	return t.Panel.Width(max(width-2, 10)).Height(max(height-2, 3)).Render(b.String())
}
