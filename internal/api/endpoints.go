// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/astra-tui/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// LoginResult is the /auth/login response.
type LoginResult struct {
	Token  string `json:"token"`
	UserID int    `json:"user_id"`
}

// HistoryRecord is one stored message of a session.
type HistoryRecord struct {
	ID        FlexString `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp string     `json:"timestamp"`
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

// UnmarshalJSON accepts "abc", 42 and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("cannot decode %s as string or number", data)
}

// NoteInput is the body for creating a note.
type NoteInput struct {
	UserID  int    `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NotePatch is the body for updating a note.
type NotePatch struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges a username for a token and user id.
func (c *Client) Login(ctx context.Context, username string) (LoginResult, error) {
	var out LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{"username": username}, &out)
	return out, err
}

// =============================================================================
// CHAT SESSIONS
// =============================================================================

// ListSessions returns the user's chat threads.
func (c *Client) ListSessions(ctx context.Context) ([]model.Thread, error) {
	var out []model.Thread
	if err := c.doJSON(ctx, http.MethodGet, "/chat/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMessages returns a session's stored history, unfiltered.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	var out []HistoryRecord
	path := "/chat/session/" + url.PathEscape(sessionID) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSession deletes a session. Only 204 counts as success.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := "/chat/session/" + url.PathEscape(sessionID)
	status, data, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &Error{Method: http.MethodDelete, Path: path, Status: status, Message: errorMessage(data)}
	}
	return nil
}

// =============================================================================
// PROFILE
// =============================================================================

// GetProfile returns the current user's profile.
func (c *Client) GetProfile(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &out)
	return out, err
}

// UpdateProfile applies upd and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (model.Profile, error) {
	var out model.Profile
	err := c.doJSON(ctx, http.MethodPut, "/users/me", upd, &out)
	return out, err
}

// =============================================================================
// NOTES
// =============================================================================

// ListNotes returns userID's notes.
func (c *Client) ListNotes(ctx context.Context, userID int) ([]model.Note, error) {
	var out []model.Note
	if err := c.doJSON(ctx, http.MethodGet, "/notes/user/"+strconv.Itoa(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNote stores a new note.
func (c *Client) CreateNote(ctx context.Context, in NoteInput) (model.Note, error) {
	var out model.Note
	err := c.doJSON(ctx, http.MethodPost, "/notes/", in, &out)
	return out, err
}

// UpdateNote replaces a note's title and content.
func (c *Client) UpdateNote(ctx context.Context, noteID int, patch NotePatch) (model.Note, error) {
	var out model.Note
	err := c.doJSON(ctx, http.MethodPut, "/notes/"+strconv.Itoa(noteID), patch, &out)
	return out, err
}

// DeleteNote deletes a note. Any 2xx is success.
func (c *Client) DeleteNote(ctx context.Context, noteID int) error {
	return c.doJSON(ctx, http.MethodDelete, "/notes/"+strconv.Itoa(noteID), nil, nil)
}

// =============================================================================
// LEARNINGS
// =============================================================================

// ListLearnings returns userID's learnings, filtered by t unless t is
// LearningAll or empty.
func (c *Client) ListLearnings(ctx context.Context, userID int, t model.LearningType) ([]model.Learning, error) {
	path := "/learning/fetch/" + strconv.Itoa(userID)
	if t != "" && t != model.LearningAll {
		path += "/type/" + url.PathEscape(string(t))
	}
	var out []model.Learning
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
