// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for astra.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdThreads
	CmdHistory
	CmdDelete
	CmdAsk
	CmdChat
	CmdNotes
	CmdLearnings
	CmdProfile
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:       "tui",
	CmdLogin:     "login",
	CmdLogout:    "logout",
	CmdThreads:   "threads",
	CmdHistory:   "history",
	CmdDelete:    "delete",
	CmdAsk:       "ask",
	CmdChat:      "chat",
	CmdNotes:     "notes",
	CmdLearnings: "learnings",
	CmdProfile:   "profile",
	CmdConfig:    "config",
	CmdVersion:   "version",
	CmdHelp:      "help",
}

// String returns the command's name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool   // Output in JSON format
	Verbose    bool   // Debug logging
	ConfigPath string // --config override

	// Command-specific
	Name       string // command word as typed
	Subcommand string
	Query      string
	Session    string // --session for ask
	Confirm    bool   // --confirm for destructive commands

	// Raw args (remaining after the command word)
	Raw []string
}

// Parser returns an ArgParser over the command's raw arguments.
func (a Args) Parser() *ArgParser {
	return NewArgParser(a.Raw)
}

const usageText = `astra - terminal client for the Astra agent

Usage:
  astra                          Start the TUI (default)
  astra tui                      Start the TUI
  astra login <username>         Log in and store the session
  astra logout                   Forget the stored session
  astra threads                  List chat threads
  astra history <id>             Print a thread transcript
  astra delete <id> [--confirm]  Delete a chat thread
  astra ask "question"           Ask once and print the reply
    --session ID                 Continue an existing thread
  astra chat                     Line-mode chat (/new, /threads, /use ID, /quit)
  astra notes [list|add|edit|rm] Manage notes
  astra learnings [type]         List learnings (all, concept, code_fact, ...)
  astra profile [show|set]       Show or edit the profile
    --username, --email, --full-name, --image-url
  astra config [show|get|set|path]
  astra version                  Show version
  astra help                     Show this help

Global flags:
  --json                         Output in JSON format
  -v, --verbose                  Debug logging
  --config PATH                  Use an alternative config file

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "astra version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name) and returns the command
// and its arguments.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Name = cmd
	parsedArgs.Raw = remaining

	p := NewArgParser(remaining)
	parsedArgs.Subcommand = p.Subcommand()
	parsedArgs.Confirm = p.BoolFlag("confirm")

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "login":
		return CmdLogin, parsedArgs
	case "logout":
		return CmdLogout, parsedArgs
	case "threads", "ls":
		return CmdThreads, parsedArgs
	case "history", "show":
		return CmdHistory, parsedArgs
	case "delete", "rm":
		return CmdDelete, parsedArgs
	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs
	case "chat":
		parsedArgs.Session = p.Flag("session")
		return CmdChat, parsedArgs
	case "notes", "note":
		return CmdNotes, parsedArgs
	case "learnings", "learning":
		return CmdLearnings, parsedArgs
	case "profile", "me":
		return CmdProfile, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the line.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--json":
			parsedArgs.JSON = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch {
		case arg == "-s" || arg == "--session":
			if i+1 < len(remaining) {
				i++
				args.Session = remaining[i]
			}
		case strings.HasPrefix(arg, "--session="):
			args.Session = strings.TrimPrefix(arg, "--session=")
		case !strings.HasPrefix(arg, "-"):
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(os.Stdout)
	}
	PrintVersion(os.Stdout)
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage(os.Stdout)
}
