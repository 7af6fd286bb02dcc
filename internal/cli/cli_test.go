// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing, exit codes and confirmation
// handling.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/auth"
	"github.com/jeranaias/astra-tui/internal/chat"
	"github.com/jeranaias/astra-tui/internal/config"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"list"},
			wantSub: "list",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"add", "--title", "Groceries", "milk"},
			wantSub: "add",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("title") != "Groceries" {
					t.Errorf("Flag(title) = %q, want %q", p.Flag("title"), "Groceries")
				}
				if p.Positional(1) != "milk" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "milk")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"set", "--email=ada@example.com"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("email") != "ada@example.com" {
					t.Errorf("Flag(email) = %q", p.Flag("email"))
				}
			},
		},
		{
			name:    "confirm does not swallow the next positional",
			args:    []string{"rm", "--confirm", "12"},
			wantSub: "rm",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("confirm") {
					t.Error("BoolFlag(confirm) should be true")
				}
				if p.Positional(1) != "12" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "12")
				}
			},
		},
		{
			name:    "negative number is positional",
			args:    []string{"edit", "-5"},
			wantSub: "edit",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(1) != "-5" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "-5")
				}
			},
		},
		{
			name:    "explicit empty value is set",
			args:    []string{"edit", "3", "--title="},
			wantSub: "edit",
			validate: func(t *testing.T, p *ArgParser) {
				v, ok := p.LookupFlag("title")
				if !ok || v != "" {
					t.Errorf("LookupFlag(title) = %q, %v; want \"\", true", v, ok)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if got := p.Subcommand(); got != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", got, tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_LookupFlag(t *testing.T) {
	p := NewArgParser([]string{"set", "--email", "a@b.c"})
	if _, ok := p.LookupFlag("username"); ok {
		t.Error("LookupFlag(username) should report absent")
	}
	if v, ok := p.LookupFlag("email"); !ok || v != "a@b.c" {
		t.Errorf("LookupFlag(email) = %q, %v", v, ok)
	}
	if got := p.FlagOrDefault("missing", "fallback"); got != "fallback" {
		t.Errorf("FlagOrDefault = %q, want fallback", got)
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	p := NewArgParser(nil)
	if p.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", p.Subcommand())
	}
	if p.PositionalCount() != 0 {
		t.Errorf("PositionalCount() = %d, want 0", p.PositionalCount())
	}
	if JoinPositionalArgs(p, 1) != "" {
		t.Error("JoinPositionalArgs on empty parser should be empty")
	}
}

func TestParseIntWithValidation(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIntWithValidation(tt.input, "note id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
			var ve *ValidationError
			if err != nil && !errors.As(err, &ve) {
				t.Errorf("err %T is not a *ValidationError", err)
			}
		})
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParse_Integration(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{name: "no args starts the tui", args: nil, wantCmd: CmdTUI},
		{name: "tui", args: []string{"tui"}, wantCmd: CmdTUI},
		{name: "login", args: []string{"login", "ada"}, wantCmd: CmdLogin,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "ada" {
					t.Errorf("Subcommand = %q, want ada", a.Subcommand)
				}
			}},
		{name: "ls alias", args: []string{"ls"}, wantCmd: CmdThreads},
		{name: "show alias", args: []string{"show", "s1"}, wantCmd: CmdHistory},
		{name: "rm alias with confirm", args: []string{"rm", "s1", "--confirm"}, wantCmd: CmdDelete,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "s1" || !a.Confirm {
					t.Errorf("Subcommand = %q, Confirm = %v", a.Subcommand, a.Confirm)
				}
			}},
		{name: "ask joins the query", args: []string{"ask", "what", "is", "go?"}, wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "what is go?" {
					t.Errorf("Query = %q", a.Query)
				}
			}},
		{name: "ask with session", args: []string{"ask", "--session", "s9", "and", "then?"}, wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Session != "s9" || a.Query != "and then?" {
					t.Errorf("Session = %q, Query = %q", a.Session, a.Query)
				}
			}},
		{name: "ask with short session", args: []string{"ask", "hi", "-s", "s2"}, wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Session != "s2" || a.Query != "hi" {
					t.Errorf("Session = %q, Query = %q", a.Session, a.Query)
				}
			}},
		{name: "chat with session", args: []string{"chat", "--session=s3"}, wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Session != "s3" {
					t.Errorf("Session = %q", a.Session)
				}
			}},
		{name: "global flags anywhere", args: []string{"notes", "--json", "list", "--config", "/tmp/a.toml", "-v"}, wantCmd: CmdNotes,
			validate: func(t *testing.T, a Args) {
				if !a.JSON || !a.Verbose || a.ConfigPath != "/tmp/a.toml" {
					t.Errorf("JSON=%v Verbose=%v ConfigPath=%q", a.JSON, a.Verbose, a.ConfigPath)
				}
				if a.Subcommand != "list" {
					t.Errorf("Subcommand = %q, want list", a.Subcommand)
				}
			}},
		{name: "config equals form", args: []string{"--config=/x.toml", "config", "path"}, wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.ConfigPath != "/x.toml" || a.Subcommand != "path" {
					t.Errorf("ConfigPath = %q, Subcommand = %q", a.ConfigPath, a.Subcommand)
				}
			}},
		{name: "learning alias", args: []string{"learning", "workflow"}, wantCmd: CmdLearnings},
		{name: "me alias", args: []string{"me"}, wantCmd: CmdProfile},
		{name: "version flag", args: []string{"--version"}, wantCmd: CmdVersion},
		{name: "help flag", args: []string{"-h"}, wantCmd: CmdHelp},
		{name: "case insensitive", args: []string{"THREADS"}, wantCmd: CmdThreads},
		{name: "unknown", args: []string{"frobnicate"}, wantCmd: CmdUnknown,
			validate: func(t *testing.T, a Args) {
				if a.Name != "frobnicate" {
					t.Errorf("Name = %q", a.Name)
				}
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("command = %v, want %v", cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	if CmdAsk.String() != "ask" {
		t.Errorf("CmdAsk.String() = %q", CmdAsk.String())
	}
	if CmdUnknown.String() != "unknown" {
		t.Errorf("CmdUnknown.String() = %q", CmdUnknown.String())
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	for _, want := range []string{"astra login <username>", "--json", Version} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestGetExitCode(t *testing.T) {
	var _ net.Error = timeoutErr{}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("note id", "x", "must be an integer"), ExitUsageError},
		{"missing argument", ErrMissingArgument("username", "astra login ada"), ExitUsageError},
		{"config validation", config.ValidateErrors{{Field: "agent.name", Message: "is required"}}, ExitConfigError},
		{"not logged in", fmt.Errorf("%w: run login", auth.ErrNotLoggedIn), ExitAuthError},
		{"unauthorized", &api.Error{Method: "GET", Path: "/users/me", Status: 401}, ExitAuthError},
		{"not found wrapped", NewCommandError("history", "s1", "could not fetch messages", &api.Error{Status: 404}), ExitNotFoundError},
		{"deadline", fmt.Errorf("ask: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"not connected", fmt.Errorf("%w: lost", chat.ErrNotConnected), ExitNetworkError},
		{"net error", timeoutErr{}, ExitNetworkError},
		{"dial text", errors.New("websocket dial failed"), ExitNetworkError},
		{"general", errors.New("something odd"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := &api.Error{Status: 404}
	err := NewCommandError("history", "s1", "could not fetch messages", inner)
	if !errors.Is(err, api.ErrNotFound) {
		t.Error("CommandError should unwrap to the api error")
	}
	if !strings.Contains(err.Error(), "could not fetch messages") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDisplayErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, NewValidationError("key", "bogus", "unknown key"), true)
	out := buf.String()
	if !strings.Contains(out, `"success": false`) && !strings.Contains(out, `"success":false`) {
		t.Errorf("JSON error output missing success=false: %s", out)
	}
	if !strings.Contains(out, "unknown key") {
		t.Errorf("JSON error output missing the reason: %s", out)
	}
}

// =============================================================================
// CONFIRMATION TESTS (confirm.go)
// =============================================================================

func TestRequireConfirmation(t *testing.T) {
	tty := func() bool { return true }
	noTTY := func() bool { return false }

	tests := []struct {
		name    string
		opts    ConfirmationOptions
		input   string
		want    bool
		wantErr error
	}{
		{"flag skips the prompt", ConfirmationOptions{ConfirmFlag: true, IsTTY: noTTY}, "", true, nil},
		{"json mode needs the flag", ConfirmationOptions{JSONMode: true, IsTTY: tty}, "y\n", false, ErrConfirmJSON},
		{"no tty needs the flag", ConfirmationOptions{IsTTY: noTTY}, "y\n", false, ErrConfirmNoTTY},
		{"yes", ConfirmationOptions{IsTTY: tty}, "y\n", true, nil},
		{"YES", ConfirmationOptions{IsTTY: tty}, "YES\n", true, nil},
		{"no", ConfirmationOptions{IsTTY: tty}, "n\n", false, nil},
		{"empty answer declines", ConfirmationOptions{IsTTY: tty}, "\n", false, nil},
		{"eof declines", ConfirmationOptions{IsTTY: tty}, "", false, nil},
		{"answer without newline", ConfirmationOptions{IsTTY: tty}, "yes", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			tt.opts.In = strings.NewReader(tt.input)
			tt.opts.Out = &out
			got, err := RequireConfirmation("Delete this chat?", tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			prompted := strings.Contains(out.String(), "Delete this chat? [y/N]")
			if wantPrompt := tt.wantErr == nil && !tt.opts.ConfirmFlag; prompted != wantPrompt {
				t.Errorf("prompted = %v, want %v (output %q)", prompted, wantPrompt, out.String())
			}
		})
	}
}

func TestPromptConfirmerRecordsRefusal(t *testing.T) {
	c := &promptConfirmer{opts: ConfirmationOptions{JSONMode: true}}
	if c.Confirm("Delete?") {
		t.Fatal("Confirm should decline in JSON mode without --confirm")
	}
	if !errors.Is(c.err, ErrConfirmJSON) {
		t.Errorf("err = %v, want ErrConfirmJSON", c.err)
	}
}

// =============================================================================
// JSON OUTPUT TESTS (json_output.go)
// =============================================================================

func TestJSONResponse(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONResponse("login", LoginData{UserID: 7}).Print(&buf); err != nil {
		t.Fatal(err)
	}
	resp := decodeJSONResponse(t, buf.Bytes())
	if resp.Command != "login" || !resp.Success {
		t.Errorf("Command = %q, Success = %v", resp.Command, resp.Success)
	}
	want := map[string]interface{}{"user_id": float64(7)}
	if !reflect.DeepEqual(resp.Data, want) {
		t.Errorf("Data = %#v, want %#v", resp.Data, want)
	}
}
