// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded captures what the fake backend saw.
type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			json.Unmarshal(data, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"session_id":"s1","last_message":"hi","last_message_role":"user_query","last_activity":"2025-01-01T10:00:00Z"}]`)
	c := NewClient(srv.URL + "/").WithToken("tok")

	threads, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", rec.auth)
	assert.Equal(t, "/chat/sessions", rec.path)
	require.Len(t, threads, 1)
	assert.Equal(t, model.Thread{
		SessionID:       "s1",
		LastMessage:     "hi",
		LastMessageRole: "user_query",
		LastActivity:    "2025-01-01T10:00:00Z",
	}, threads[0])
}

func TestClient_LoginIsUnauthenticated(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"token":"t","user_id":3}`)
	res, err := NewClient(srv.URL).Login(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, LoginResult{Token: "t", UserID: 3}, res)
	assert.Empty(t, rec.auth)
	assert.Equal(t, "ada", rec.body["username"])
}

func TestClient_ListMessages_FlexibleIDs(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[
		{"id": 17, "role": "user_query", "content": "q", "timestamp": "2025-01-01T10:00:00Z"},
		{"id": "m-2", "role": "agent", "content": "a", "timestamp": ""}
	]`)
	recs, err := NewClient(srv.URL).WithToken("tok").ListMessages(context.Background(), "s 1")
	require.NoError(t, err)
	assert.Equal(t, "/chat/session/s 1/messages", rec.path)
	require.Len(t, recs, 2)
	assert.Equal(t, FlexString("17"), recs[0].ID)
	assert.Equal(t, FlexString("m-2"), recs[1].ID)
}

func TestClient_DeleteSession(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"no content", http.StatusNoContent, false},
		{"ok is not enough", http.StatusOK, true},
		{"server error", http.StatusInternalServerError, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, rec := newServer(t, tc.status, "")
			err := NewClient(srv.URL).WithToken("tok").DeleteSession(context.Background(), "s1")
			assert.Equal(t, http.MethodDelete, rec.method)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnexpectedStatus))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestError_SentinelMapping(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"detail":"token expired"}`)
	_, err := NewClient(srv.URL).WithToken("old").GetProfile(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "token expired", MessageOf(err, "fallback"))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.Status)

	srv404, _ := newServer(t, http.StatusNotFound, "missing\n")
	_, err = NewClient(srv404.URL).ListNotes(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "missing", MessageOf(err, "fallback"))

	assert.Equal(t, "fallback", MessageOf(errors.New("dial tcp"), "fallback"))
}

func TestClient_NotesAndLearningsPaths(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL).WithToken("tok")
	ctx := context.Background()

	_, err := c.CreateNote(ctx, NoteInput{UserID: 4, Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "/notes/", rec.path)
	assert.Equal(t, float64(4), rec.body["user_id"])

	_, err = c.UpdateNote(ctx, 9, NotePatch{Title: "t2", Content: "c2"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/notes/9", rec.path)

	require.NoError(t, c.DeleteNote(ctx, 9))
	assert.Equal(t, http.MethodDelete, rec.method)

	srvList, recList := newServer(t, http.StatusOK, `[]`)
	c = NewClient(srvList.URL).WithToken("tok")
	_, err = c.ListLearnings(ctx, 4, model.LearningAll)
	require.NoError(t, err)
	assert.Equal(t, "/learning/fetch/4", recList.path)
	_, err = c.ListLearnings(ctx, 4, model.LearningCodeFact)
	require.NoError(t, err)
	assert.Equal(t, "/learning/fetch/4/type/code_fact", recList.path)
}

func TestClient_UpdateProfileOmitsNil(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"id":1,"username":"ada","email":"a@x.io"}`)
	email := "a@x.io"
	p, err := NewClient(srv.URL).WithToken("tok").UpdateProfile(context.Background(), model.ProfileUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Username)
	assert.Equal(t, map[string]any{"email": "a@x.io"}, rec.body)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).ListSessions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
