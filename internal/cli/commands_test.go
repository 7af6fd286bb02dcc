// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/astra-tui/internal/auth"
	"github.com/jeranaias/astra-tui/internal/config"
	"github.com/jeranaias/astra-tui/internal/mockbackend"
	"github.com/jeranaias/astra-tui/internal/model"
	"github.com/jeranaias/astra-tui/internal/storage"
)

// =============================================================================
// TEST ENVIRONMENT
// =============================================================================

// testEnv runs commands against an in-memory backend on a loopback port.
type testEnv struct {
	*Env
	t      *testing.T
	srv    *mockbackend.Server
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := mockbackend.New(mockbackend.Options{ChunkSize: 5, ChunkDelay: 2 * time.Millisecond})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown() })
	addr := ln.Addr().String()

	cfg := config.Default()
	cfg.Backend.APIURL = "http://" + addr
	cfg.Backend.WSURL = "ws://" + addr + "/agents/ws"
	cfg.Agent.ChunkIdleMs = 150
	cfg.Agent.RefreshDelayMs = 1000

	e := &testEnv{t: t, srv: srv, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	e.Env = NewEnv(cfg, storage.NewMemoryStore())
	e.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
	e.Out, e.Err = e.out, e.errOut
	e.In = strings.NewReader("")
	e.IsTTY = func() bool { return false }
	return e
}

// run parses argv like the real entry point and runs fn with a clean
// output buffer.
func (e *testEnv) run(fn func(context.Context, *Env, Args) error, argv ...string) error {
	e.t.Helper()
	_, args := ParseArgs(argv)
	e.JSON = args.JSON
	e.out.Reset()
	e.errOut.Reset()
	return fn(context.Background(), e.Env, args)
}

func (e *testEnv) login(username string) int {
	e.t.Helper()
	require.NoError(e.t, e.run(runLogin, "login", username))
	s, err := e.Auth.Load()
	require.NoError(e.t, err)
	return s.UserID
}

func decodeJSONResponse(t *testing.T, data []byte) JSONResponse {
	t.Helper()
	var resp JSONResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("invalid JSON output %q: %v", data, err)
	}
	return resp
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func TestLoginLogout(t *testing.T) {
	e := newTestEnv(t)

	uid := e.login("ada")
	assert.Contains(t, e.out.String(), "Logged in as ada (user "+strconv.Itoa(uid)+")")

	require.NoError(t, e.run(runLogout, "logout"))
	assert.Contains(t, e.out.String(), "Logged out.")

	err := e.run(runThreads, "threads")
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestLoginRequiresUsername(t *testing.T) {
	e := newTestEnv(t)
	err := e.run(runLogin, "login")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "username", ve.Field)
}

func TestLoginJSON(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.run(runLogin, "login", "ada", "--json"))
	resp := decodeJSONResponse(t, e.out.Bytes())
	assert.True(t, resp.Success)
	assert.Equal(t, "login", resp.Command)
}

// =============================================================================
// THREADS / HISTORY / DELETE
// =============================================================================

func seedThread(t *testing.T, e *testEnv, uid int, id string) {
	t.Helper()
	store := e.srv.Store()
	require.NoError(t, store.Append(id, uid, model.RoleUserQuery, "Hi\nthere"))
	require.NoError(t, store.Append(id, uid, model.RoleFullPlan, map[string]string{"goal": "secret plan"}))
	require.NoError(t, store.Append(id, uid, "response", "Hello!"))
}

func TestThreadsAndHistory(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")

	require.NoError(t, e.run(runThreads, "threads"))
	assert.Contains(t, e.out.String(), "No chats yet.")

	require.NoError(t, e.run(runThreads, "threads", "--json"))
	resp := decodeJSONResponse(t, e.out.Bytes())
	assert.Equal(t, []interface{}{}, resp.Data, "empty list, not null")

	seedThread(t, e, uid, "s1")
	require.NoError(t, e.run(runThreads, "threads"))
	assert.Contains(t, e.out.String(), "s1")

	require.NoError(t, e.run(runHistory, "history", "s1"))
	out := e.out.String()
	assert.Contains(t, out, "Hi\nthere", "stored content is normalized")
	assert.Contains(t, out, "Hello!")
	assert.NotContains(t, out, "secret plan", "planner records are hidden")

	require.NoError(t, e.run(runHistory, "history", "s1", "--json"))
	var hist struct {
		Data HistoryData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &hist))
	require.Len(t, hist.Data.Messages, 2)
	assert.Equal(t, model.AuthorSelf, hist.Data.Messages[0].Author)
	assert.Equal(t, model.AuthorAgent, hist.Data.Messages[1].Author)

	err := e.run(runHistory, "history")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDelete(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")
	seedThread(t, e, uid, "s1")

	// Not a terminal and no --confirm.
	err := e.run(runDelete, "delete", "s1")
	require.ErrorIs(t, err, ErrConfirmNoTTY)

	// Interactive decline.
	e.IsTTY = func() bool { return true }
	e.In = strings.NewReader("n\n")
	require.NoError(t, e.run(runDelete, "delete", "s1"))
	assert.Contains(t, e.out.String(), "Cancelled.")
	assert.Len(t, e.srv.Store().Sessions(uid), 1)

	require.NoError(t, e.run(runDelete, "delete", "s1", "--confirm"))
	assert.Contains(t, e.out.String(), "Deleted s1")
	assert.Empty(t, e.srv.Store().Sessions(uid))

	err = e.run(runDelete, "rm", "s1", "--confirm")
	require.Error(t, err, "second delete hits a 404")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestDeleteJSONNeedsConfirm(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")
	seedThread(t, e, uid, "s1")

	err := e.run(runDelete, "delete", "s1", "--json")
	require.ErrorIs(t, err, ErrConfirmJSON)
	assert.Len(t, e.srv.Store().Sessions(uid), 1)
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk(t *testing.T) {
	e := newTestEnv(t)
	e.login("ada")

	require.NoError(t, e.run(runAsk, "ask", "hello", "world"))
	assert.Equal(t, "You said: hello world\n", e.out.String())
	assert.Empty(t, e.errOut.String())
}

func TestAskJSONContinuesSession(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")
	seedThread(t, e, uid, "s1")

	require.NoError(t, e.run(runAsk, "ask", "--session", "s1", "--json", "and", "now?"))
	var resp struct {
		Success bool    `json:"success"`
		Data    AskData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "s1", resp.Data.SessionID)
	assert.Equal(t, "You said: and now?", resp.Data.Reply)
	assert.Empty(t, resp.Data.Errors)
	assert.NotEmpty(t, resp.Data.Notes, "intermediate and completed notes are reported")

	rows, err := e.srv.Store().History(uid, "s1")
	require.NoError(t, err)
	assert.Len(t, rows, 6, "the new exchange is appended to the existing thread")
}

func TestAskRequiresQuestion(t *testing.T) {
	e := newTestEnv(t)
	e.login("ada")
	err := e.run(runAsk, "ask")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// CHAT REPL
// =============================================================================

// scriptedInput feeds fixed lines to the REPL, then EOF.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestREPL(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")
	seedThread(t, e, uid, "s1")

	ctl, err := e.Controller()
	require.NoError(t, err)
	defer ctl.Close()

	in := &scriptedInput{lines: []string{
		"/help",
		"hello",
		"/threads",
		"/use s1",
		"/bogus",
		"/new",
		"/quit",
		"never sent",
	}}
	e.out.Reset()
	require.NoError(t, newREPL(e.Env, ctl).run(context.Background(), in, ""))

	out := e.out.String()
	assert.Contains(t, out, "Astra Chat")
	assert.Contains(t, out, "● connected")
	assert.Contains(t, out, "/reconnect")
	assert.Contains(t, out, "You said: hello")
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "Hi\nthere", "/use prints the thread")
	assert.Contains(t, out, "New thread")
	assert.NotContains(t, out, "never sent")
	assert.Contains(t, e.errOut.String(), "unknown command /bogus")
	assert.Len(t, in.lines, 1, "input after /quit is not read")
}

func TestREPLSendWhileDisconnected(t *testing.T) {
	e := newTestEnv(t)
	e.login("ada")
	e.Config.Backend.WSURL = "ws://127.0.0.1:1/agents/ws"

	ctl, err := e.Controller()
	require.NoError(t, err)
	defer ctl.Close()

	in := &scriptedInput{lines: []string{"hello"}}
	require.NoError(t, newREPL(e.Env, ctl).run(context.Background(), in, ""))
	assert.Contains(t, e.errOut.String(), "Not connected")

	msgs := ctl.Snapshot().Messages
	require.NotEmpty(t, msgs)
	assert.Equal(t, model.KindError, msgs[len(msgs)-1].Kind)
}

// =============================================================================
// NOTES / LEARNINGS
// =============================================================================

func TestNotesCommands(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")

	require.NoError(t, e.run(runNotes, "notes"))
	assert.Contains(t, e.out.String(), "No notes found.")

	require.NoError(t, e.run(runNotes, "notes", "add", "--title", "Groceries", "milk", "eggs"))
	assert.Contains(t, e.out.String(), "Note saved.")

	notes := e.srv.Store().Notes(uid)
	require.Len(t, notes, 1)
	id := strconv.Itoa(notes[0].ID)

	require.NoError(t, e.run(runNotes, "notes", "list"))
	assert.Contains(t, e.out.String(), "Groceries")
	assert.Contains(t, e.out.String(), "milk eggs")

	require.NoError(t, e.run(runNotes, "notes", "edit", id, "--title", "Shopping"))
	notes = e.srv.Store().Notes(uid)
	assert.Equal(t, "Shopping", notes[0].Title)
	assert.Equal(t, "milk eggs", notes[0].Content, "content is kept when not given")

	err := e.run(runNotes, "notes", "add", "--title", "Empty")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = e.run(runNotes, "notes", "rm", id)
	require.ErrorIs(t, err, ErrConfirmNoTTY)

	require.NoError(t, e.run(runNotes, "notes", "rm", id, "--confirm"))
	assert.Contains(t, e.out.String(), "Note deleted.")
	assert.Empty(t, e.srv.Store().Notes(uid))

	err = e.run(runNotes, "notes", "frob")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestLearningsCommand(t *testing.T) {
	e := newTestEnv(t)
	e.login("ada")

	require.NoError(t, e.run(runLearnings, "learnings"))
	out := e.out.String()
	assert.Contains(t, out, "(All)")
	assert.Contains(t, out, "[Workflow]")
	assert.Contains(t, out, "[Concept]")

	require.NoError(t, e.run(runLearnings, "learnings", "workflow"))
	out = e.out.String()
	assert.Contains(t, out, "(Workflow)")
	assert.Contains(t, out, "[Workflow]")
	assert.NotContains(t, out, "[Concept]")

	require.NoError(t, e.run(runLearnings, "learnings", "other"))
	assert.Contains(t, e.out.String(), "No learnings found.")

	err := e.run(runLearnings, "learnings", "bogus")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// PROFILE
// =============================================================================

func TestProfileCommand(t *testing.T) {
	e := newTestEnv(t)
	uid := e.login("ada")

	require.NoError(t, e.run(runProfile, "profile"))
	assert.Contains(t, e.out.String(), "ada@astra.local")

	require.NoError(t, e.run(runProfile, "profile", "set", "--full-name", "Ada Lovelace"))
	assert.Contains(t, e.out.String(), "Ada Lovelace")

	p, err := e.srv.Store().Profile(uid)
	require.NoError(t, err)
	require.NotNil(t, p.FullName)
	assert.Equal(t, "Ada Lovelace", *p.FullName)
	assert.Equal(t, "ada", p.Username)

	err = e.run(runProfile, "profile", "set")
	assert.Equal(t, ExitUsageError, GetExitCode(err), "set without fields")

	err = e.run(runProfile, "profile", "set", "--email", "")
	assert.Equal(t, ExitUsageError, GetExitCode(err), "email is required")

	err = e.run(runProfile, "profile", "frob")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigCommand(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run(runConfig, "config", "path"))
	assert.Equal(t, e.ConfigPath+"\n", e.out.String())

	require.NoError(t, e.run(runConfig, "config", "set", "agent.chunk_idle_ms", "750"))
	require.NoError(t, e.run(runConfig, "config", "get", "agent.chunk_idle_ms"))
	assert.Equal(t, "750\n", e.out.String())

	require.NoError(t, e.run(runConfig, "config", "show"))
	assert.Contains(t, e.out.String(), "[agent]")
	assert.Contains(t, e.out.String(), "750")

	err := e.run(runConfig, "config", "set", "ui.theme", "purple")
	var cfgErrs config.ValidateErrors
	require.True(t, errors.As(err, &cfgErrs), "invalid theme fails validation: %v", err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	err = e.run(runConfig, "config", "get", "nope.key")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = e.run(runConfig, "config", "set", "agent.name")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	cfg, err := config.LoadFromPath(e.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 750, cfg.Agent.ChunkIdleMs, "failed sets leave the file alone")
	assert.Equal(t, "auto", cfg.UI.Theme)
}
