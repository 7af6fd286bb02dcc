// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes keeps the user's note list in sync with the backend.
package notes

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/logging"
	"github.com/jeranaias/astra-tui/internal/model"
)

// ErrContentRequired is returned for a blank note body. No request is made.
var ErrContentRequired = errors.New("note content is required")

// ErrDeclined is returned when the delete confirmation is declined.
var ErrDeclined = errors.New("delete declined")

// User-visible texts.
const (
	DeletePrompt    = "Are you sure you want to delete this note?"
	FetchFailedText = "Failed to fetch notes"
	createFailed    = "Failed to create note"
	updateFailed    = "Failed to update note"
	deleteFailed    = "Failed to delete note"
)

// Backend is the notes slice of the REST API.
type Backend interface {
	ListNotes(ctx context.Context, userID int) ([]model.Note, error)
	CreateNote(ctx context.Context, in api.NoteInput) (model.Note, error)
	UpdateNote(ctx context.Context, noteID int, patch api.NotePatch) (model.Note, error)
	DeleteNote(ctx context.Context, noteID int) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// List is the user's notes.
type List struct {
	backend Backend
	userID  int

	mu      sync.Mutex
	items   []model.Note
	loading bool
	errText string
}

// NewList creates an empty list for userID.
func NewList(backend Backend, userID int) *List {
	return &List{backend: backend, userID: userID, items: []model.Note{}}
}

// Items returns a copy of the notes.
func (l *List) Items() []model.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Note(nil), l.items...)
}

// Loading reports whether a refresh is in flight.
func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the last failure text, or "".
func (l *List) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errText
}

// Refresh reloads the list. On failure the items are kept and the error
// slot is set.
func (l *List) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.errText = ""
	l.mu.Unlock()

	items, err := l.backend.ListNotes(ctx, l.userID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.fail(err, FetchFailedText)
		return err
	}
	if items == nil {
		items = []model.Note{}
	}
	l.items = items
	return nil
}

// Create adds a note and refreshes the list.
func (l *List) Create(ctx context.Context, title, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	_, err := l.backend.CreateNote(ctx, api.NoteInput{UserID: l.userID, Title: title, Content: content})
	if err != nil {
		l.failLocked(err, createFailed)
		return err
	}
	return l.Refresh(ctx)
}

// Update replaces a note's title and content and refreshes the list.
func (l *List) Update(ctx context.Context, id int, title, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	if _, err := l.backend.UpdateNote(ctx, id, api.NotePatch{Title: title, Content: content}); err != nil {
		l.failLocked(err, updateFailed)
		return err
	}
	return l.Refresh(ctx)
}

// Delete asks confirm, deletes the note and refreshes the list.
func (l *List) Delete(ctx context.Context, id int, confirm Confirmer) error {
	if confirm != nil && !confirm.Confirm(DeletePrompt) {
		return ErrDeclined
	}
	if err := l.backend.DeleteNote(ctx, id); err != nil {
		l.failLocked(err, deleteFailed)
		return err
	}
	return l.Refresh(ctx)
}

func (l *List) failLocked(err error, fallback string) {
	l.mu.Lock()
	l.fail(err, fallback)
	l.mu.Unlock()
}

// fail must be called with l.mu held.
func (l *List) fail(err error, fallback string) {
	logging.With("component", "notes").Warn(fallback, "user_id", l.userID, "error", err)
	l.errText = api.MessageOf(err, fallback)
}
