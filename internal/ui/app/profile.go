// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/astra-tui/internal/profile"
	"github.com/jeranaias/astra-tui/internal/ui/styles"
)

type profileLoadedMsg struct{ err error }
type profileSavedMsg struct{ err error }

// profileDialog wraps a profile.Editor with one text input per form field.
type profileDialog struct {
	editor *profile.Editor
	theme  *styles.Theme
	inputs []textinput.Model
	field  int
	saving bool
}

func newProfileDialog(editor *profile.Editor, theme *styles.Theme) *profileDialog {
	inputs := make([]textinput.Model, len(profile.FormFields))
	for i, label := range profile.FormFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = label
		ti.CharLimit = 256
		inputs[i] = ti
	}
	return &profileDialog{editor: editor, theme: theme, inputs: inputs}
}

func (d *profileDialog) open() bool {
	return d != nil && d.editor.IsOpen()
}

func (d *profileDialog) displayName() string {
	if d == nil {
		return ""
	}
	if p, ok := d.editor.Profile(); ok {
		return p.DisplayName()
	}
	return "profile"
}

func (d *profileDialog) load() tea.Cmd {
	editor := d.editor
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return profileLoadedMsg{err: editor.Load(ctx)}
	}
}

func (d *profileDialog) show() {
	d.editor.Open()
	form := d.editor.Form()
	for i := range d.inputs {
		d.inputs[i].SetValue(form.Field(i))
		d.inputs[i].Blur()
	}
	d.field = 0
	d.inputs[0].Focus()
}

func (d *profileDialog) handle(msg tea.Msg) (tea.Cmd, bool) {
	switch msg.(type) {
	case profileLoadedMsg:
		return nil, true
	case profileSavedMsg:
		d.saving = false
		return nil, true
	}
	return nil, false
}

func (d *profileDialog) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		d.editor.Cancel()
		return nil
	case tea.KeyTab, tea.KeyDown:
		d.focus((d.field + 1) % len(d.inputs))
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		d.focus((d.field + len(d.inputs) - 1) % len(d.inputs))
		return nil
	case tea.KeyEnter:
		if d.saving {
			return nil
		}
		var form profile.Form
		for i := range d.inputs {
			form.SetField(i, d.inputs[i].Value())
		}
		d.editor.SetForm(form)
		d.saving = true
		editor := d.editor
		return func() tea.Msg {
			ctx, cancel := requestContext()
			defer cancel()
			return profileSavedMsg{err: editor.Submit(ctx)}
		}
	}

	var cmd tea.Cmd
	d.inputs[d.field], cmd = d.inputs[d.field].Update(msg)
	return cmd
}

func (d *profileDialog) focus(i int) {
	d.inputs[d.field].Blur()
	d.field = i
	d.inputs[i].Focus()
}

func (d *profileDialog) view() string {
	t := d.theme
	var b strings.Builder
	b.WriteString(t.DialogTitle.Render("Edit Profile"))
	b.WriteString("\n")
	for i, label := range profile.FormFields {
		style := t.FieldLabel
		if i == d.field {
			style = t.FieldActive
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(d.inputs[i].View())
		b.WriteString("\n\n")
	}
	if e := d.editor.Error(); e != "" {
		b.WriteString(t.ErrorStyle.Render(e))
		b.WriteString("\n")
	}
	if d.saving {
		b.WriteString(t.Muted.Render("Saving..."))
	} else {
		b.WriteString(t.Muted.Render("Enter save  Tab next field  Esc cancel"))
	}
	return t.Dialog.Width(50).Render(b.String())
}
