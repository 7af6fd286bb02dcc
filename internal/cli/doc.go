// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for
// astra.
//
// Every command that talks to the backend runs against an Env, which bundles
// the loaded configuration, the durable session store, the auth manager and
// the REST client. Commands return errors; the caller maps them to exit
// codes with GetExitCode.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed global flags plus the command's raw arguments
//   - ArgParser: uniform flag and positional parsing for subcommands
//   - Env: collaborators shared by the commands
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdTUI:
//	    err = cli.RunTUI(args)
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	}
//
// # Commands Overview
//
//   - tui: full-screen chat (default)
//   - login, logout: manage the stored session
//   - threads, history, delete: chat thread management
//   - ask, chat: one-shot question and line-mode REPL
//   - notes, learnings, profile: account data
//   - config: view and modify configuration
//
// All listing commands support --json.
package cli
