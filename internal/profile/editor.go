// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
)

// ErrRequiredFields is returned by Submit when username or email is blank.
var ErrRequiredFields = errors.New("username and email are required")

// UpdateFailedText is shown when an update error carries no message.
const UpdateFailedText = "Failed to update profile"

// Backend is the profile slice of the REST API.
type Backend interface {
	GetProfile(ctx context.Context) (model.Profile, error)
	UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (model.Profile, error)
}

// Form is the editable copy of a profile.
type Form struct {
	Username string
	Email    string
	FullName string
	ImageURL string
}

// FormFields lists the form fields in display order.
var FormFields = []string{"User Name", "Email", "Full Name", "Image URL"}

// Field returns the value of field i (see FormFields).
func (f Form) Field(i int) string {
	switch i {
	case 0:
		return f.Username
	case 1:
		return f.Email
	case 2:
		return f.FullName
	case 3:
		return f.ImageURL
	}
	return ""
}

// SetField replaces the value of field i.
func (f *Form) SetField(i int, v string) {
	switch i {
	case 0:
		f.Username = v
	case 1:
		f.Email = v
	case 2:
		f.FullName = v
	case 3:
		f.ImageURL = v
	}
}

func (f Form) update() model.ProfileUpdate {
	return model.ProfileUpdate{
		Username: &f.Username,
		Email:    &f.Email,
		FullName: &f.FullName,
		ImageURL: &f.ImageURL,
	}
}

// Editor owns the profile and its edit dialog.
type Editor struct {
	backend Backend

	mu      sync.Mutex
	profile *model.Profile
	open    bool
	form    Form
	errText string
}

// NewEditor creates an editor with no profile loaded.
func NewEditor(backend Backend) *Editor {
	return &Editor{backend: backend}
}

// Load fetches the profile. On failure the profile is cleared.
func (e *Editor) Load(ctx context.Context) error {
	p, err := e.backend.GetProfile(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		logging.With("component", "profile").Warn("profile fetch failed", "error", err)
		e.profile = nil
		return err
	}
	e.profile = &p
	return nil
}

// Profile returns a copy of the loaded profile.
func (e *Editor) Profile() (model.Profile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return model.Profile{}, false
	}
	return *e.profile, true
}

// Open shows the dialog with the form seeded from the profile.
func (e *Editor) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.errText = ""
	e.form = Form{}
	if p := e.profile; p != nil {
		e.form = Form{Username: p.Username, Email: p.Email}
		if p.FullName != nil {
			e.form.FullName = *p.FullName
		}
		if p.ImageURL != nil {
			e.form.ImageURL = *p.ImageURL
		}
	}
}

// IsOpen reports whether the dialog is showing.
func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Form returns the current form values.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// SetForm replaces the form values.
func (e *Editor) SetForm(f Form) {
	e.mu.Lock()
	e.form = f
	e.mu.Unlock()
}

// Error returns the last submit failure text.
func (e *Editor) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errText
}

// Cancel closes the dialog without saving.
func (e *Editor) Cancel() {
	e.mu.Lock()
	e.open = false
	e.mu.Unlock()
}

// Submit validates and saves the form. On success the profile is replaced
// and the dialog closes; on failure the dialog stays open with Error set.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	form := e.form
	e.mu.Unlock()

	if strings.TrimSpace(form.Username) == "" || strings.TrimSpace(form.Email) == "" {
		e.setError(ErrRequiredFields.Error())
		return ErrRequiredFields
	}

	p, err := e.backend.UpdateProfile(ctx, form.update())
	if err != nil {
		logging.With("component", "profile").Warn("profile update failed", "error", err)
		e.setError(api.MessageOf(err, UpdateFailedText))
		return err
	}

	e.mu.Lock()
	e.profile = &p
	e.open = false
	e.errText = ""
	e.mu.Unlock()
	return nil
}

func (e *Editor) setError(text string) {
	e.mu.Lock()
	e.errText = text
	e.mu.Unlock()
}
