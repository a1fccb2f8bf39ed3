// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command line arguments and implements the non-TUI
// commands: login, logout, ask, chat, conversations, and version.
package cli

import (
	"fmt"
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
	CmdAsk
	CmdChat
	CmdConversations
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Server   string // --server overrides the configured backend URL
	Context  string // --context overrides the configured location hint
	Username string // --user for login
	Quiet    bool
	Verbose  bool

	// Command-specific
	Query          string // ask: the question text
	ConversationID int64  // ask/chat: continue an existing conversation

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `opsdeck - terminal client for the OpsDeck assistant

OpsDeck is a conversational interface to your operations backend. It keeps
per-conversation history on the server and works from any terminal.

Usage:
  opsdeck                      Start the TUI (default)
  opsdeck login [--user NAME]  Authenticate and store credentials
  opsdeck logout               Remove stored credentials
  opsdeck ask "question"       Ask a single question and print the reply
  opsdeck chat                 Interactive chat in the terminal
  opsdeck conversations        List your conversations by recency
  opsdeck version              Show version information

Global flags:
  --server URL     Override the backend URL for this invocation
  --context PATH   Location hint sent with chat messages
  -q, --quiet      Minimal output
  -v, --verbose    Verbose output

Examples:
  opsdeck login --user admin
  opsdeck ask "what services are degraded?"
  opsdeck ask --conversation 7 "and yesterday?"
  opsdeck chat

Configuration lives in ~/.opsdeck/config.toml. Environment overrides:
OPSDECK_SERVER_URL, OPSDECK_CONTEXT, OPSDECK_THEME.
`

// PrintUsage prints the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("opsdeck %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args and returns the command to run with its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "login":
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "conversations", "convos", "ls":
		return CmdConversations, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		PrintUsage()
		os.Exit(1)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--server":
			if i+1 < len(args) {
				i++
				parsed.Server = args[i]
			}
		case "--context":
			if i+1 < len(args) {
				i++
				parsed.Context = args[i]
			}
		case "--user", "-u":
			if i+1 < len(args) {
				i++
				parsed.Username = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--server="):
				parsed.Server = strings.TrimPrefix(arg, "--server=")
			case strings.HasPrefix(arg, "--context="):
				parsed.Context = strings.TrimPrefix(arg, "--context=")
			case strings.HasPrefix(arg, "--user="):
				parsed.Username = strings.TrimPrefix(arg, "--user=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs parses ask command arguments: flags plus the question text.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch {
		case arg == "-c" || arg == "--conversation":
			if i+1 < len(remaining) {
				i++
				args.ConversationID = parseConversationID(remaining[i])
			}
		case strings.HasPrefix(arg, "--conversation="):
			args.ConversationID = parseConversationID(strings.TrimPrefix(arg, "--conversation="))
		default:
			query = append(query, arg)
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command arguments.
func parseChatArgs(args *Args, remaining []string) {
	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch {
		case arg == "-c" || arg == "--conversation":
			if i+1 < len(remaining) {
				i++
				args.ConversationID = parseConversationID(remaining[i])
			}
		case strings.HasPrefix(arg, "--conversation="):
			args.ConversationID = parseConversationID(strings.TrimPrefix(arg, "--conversation="))
		}
		i++
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
