// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for threadline.
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
	CmdChat
	CmdAsk
	CmdHistory
	CmdCache
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdHistory:
		return "history"
	case CmdCache:
		return "cache"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Thread     string // --thread ID
	NewThread  bool   // --new-thread: generate a fresh thread id
	Graph      string // --graph NAME
	BaseURL    string // --base-url URL
	ConfigPath string // --config PATH
	Debug      bool   // --debug: log to threadline-debug.log
	NoMarkdown bool   // --no-markdown
	JSON       bool   // --json output where supported
	Quiet      bool

	// Command-specific
	Query      string // ask message
	RawOutput  bool   // ask --raw
	Subcommand string
	Name       string // first argument after the subcommand

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `threadline - terminal client for streaming chat backends

Usage:
  threadline                      Start the TUI (default)
  threadline chat                 Line-mode chat
  threadline ask "message"        Send one message and print the reply
  threadline history              Print the thread's transcript
  threadline cache [list|get|delete|clear]
                                  Inspect cached tool results
  threadline config [show|path|get|set]
                                  Configuration
  threadline version              Show version
  threadline help                 Show this help

Global Flags:
  --thread ID        Thread id (default from config, "1")
  --new-thread       Start a fresh thread with a random id
  --graph NAME       Graph name sent with each message (default "common")
  --base-url URL     Backend base URL (default http://localhost:8000/api)
  --config PATH      Config file (default ~/.threadline/config.toml)
  --debug            Write a debug log to threadline-debug.log
  --no-markdown      Print assistant text without markdown rendering
  --json             JSON output (history, cache, config, version)
  -q, --quiet        Less chatter on stderr

Ask Flags:
  --raw              Print only the assistant text, unformatted

Examples:
  threadline --thread 42
  threadline ask "summarize the last report" --raw > summary.txt
  echo "hello" | threadline ask
  threadline history --thread 42 --json
  threadline cache get search

Environment:
  THREADLINE_BASE_URL, THREADLINE_THREAD, THREADLINE_GRAPH,
  THREADLINE_CACHE, THREADLINE_CACHE_PATH, THREADLINE_THEME

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("threadline version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
// Global flags are accepted anywhere on the line.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "chat", "repl":
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "history", "log":
		return CmdHistory, parsedArgs

	case "cache":
		parseSubcommandArgs(&parsedArgs, remaining)
		return CmdCache, parsedArgs

	case "config":
		parseSubcommandArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Subcommand = cmd
		return CmdUnknown, parsedArgs
	}
}

// valueFlags take an argument, either as the next word or after "=".
var valueFlags = map[string]func(*Args, string){
	"--thread":   func(a *Args, v string) { a.Thread = v },
	"--graph":    func(a *Args, v string) { a.Graph = v },
	"--base-url": func(a *Args, v string) { a.BaseURL = v },
	"--config":   func(a *Args, v string) { a.ConfigPath = v },
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--new-thread":
			parsedArgs.NewThread = true
			continue
		case "--debug":
			parsedArgs.Debug = true
			continue
		case "--no-markdown":
			parsedArgs.NoMarkdown = true
			continue
		case "--json":
			parsedArgs.JSON = true
			continue
		case "-q", "--quiet":
			parsedArgs.Quiet = true
			continue
		}

		if set, ok := valueFlags[arg]; ok {
			if i+1 < len(args) {
				i++
				set(&parsedArgs, args[i])
			}
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			if set, known := valueFlags[name]; known {
				set(&parsedArgs, value)
				continue
			}
		}
		remaining = append(remaining, arg)
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		switch arg {
		case "--raw", "-r":
			args.RawOutput = true
		case "--":
		default:
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseSubcommandArgs records the subcommand and its first argument.
func parseSubcommandArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Subcommand = strings.ToLower(p.Subcommand())
	args.Name = p.Positional(1)
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		NewJSONResponse("version", data).Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// HandleUnknown reports an unknown command, with a suggestion when one is
// close, and returns a usage error.
func HandleUnknown(args Args) error {
	msg := "not a threadline command"
	if s := SuggestCommand(args.Subcommand); s != "" {
		msg += fmt.Sprintf(", did you mean %q?", s)
	}
	return &ValidationError{Field: "command", Value: args.Subcommand, Reason: msg, Example: "threadline help"}
}
