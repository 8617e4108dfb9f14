// =============================================================================
// commands.go - Built-in and Configured Commands
// =============================================================================
//
// Every session the host creates gets the same command set:
//
//   help      list the registered commands and their help text
//   history   print the session's history ring, oldest first
//   version   print the program title
//
// followed by the reply commands declared as [[command]] tables in the
// config file. All of them go through cli.Registry like any firmware
// command would, so the registry's limits apply to them too.
//
// Handler output is written to the session's transport. Lines inside one
// reply are separated by CRLF; the session itself writes the CRLF and
// prompt that follow the last line.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dlly11/embedded-cli/cli"
)

// crlf separates lines of handler output on the wire.
const crlf = "\r\n"

// maxSuggestDistance is the largest edit distance for which an unknown
// command gets a "did you mean" suggestion.
const maxSuggestDistance = 2

type builtinCommand struct {
	name    string
	help    string
	handler func(s *cli.Session) cli.Handler
}

func builtinCommands() []builtinCommand {
	return []builtinCommand{
		{name: "help", help: "List commands", handler: helpHandler},
		{name: "history", help: "Show history", handler: historyHandler},
		{name: "version", help: "Show version", handler: func(*cli.Session) cli.Handler { return versionHandler() }},
	}
}

// newSession creates a session with its own registry holding the built-in
// commands followed by the configured ones.
func newSession(cfg Config) (*cli.Session, error) {
	reg := cli.NewRegistry(cfg.Capacity, cfg.HelpSize)

	session, err := cli.NewSession(reg, cli.WithPrompt(cfg.Prompt))
	if err != nil {
		return nil, err
	}

	for _, b := range builtinCommands() {
		if err := session.AddCommand(b.name, b.handler(session), b.help); err != nil {
			return nil, fmt.Errorf("register %s: %w", b.name, err)
		}
	}
	for _, c := range cfg.Commands {
		if err := session.AddCommand(c.Name, replyHandler(c.Reply, cli.ReturnCode(c.Code)), c.Help); err != nil {
			return nil, fmt.Errorf("register %s: %w", c.Name, err)
		}
	}
	return session, nil
}

// GO CONCEPT: Function Types as Interfaces
// ----------------------------------------
// cli.HandlerFunc is a function type with a Handle method that calls the
// function itself, the same trick as net/http's HandlerFunc. A closure
// converted to cli.HandlerFunc therefore satisfies cli.Handler, and each
// handler below captures what it needs (the session, a reply string)
// without defining a struct.

// helpHandler lists the session's commands in registration order, one per
// line, with names padded to a common width.
func helpHandler(s *cli.Session) cli.Handler {
	return cli.HandlerFunc(func(w io.Writer) (cli.ReturnCode, error) {
		commands := s.Registry().Commands()

		width := 0
		for _, c := range commands {
			width = max(width, len(c.Name()))
		}

		lines := make([]string, len(commands))
		for i, c := range commands {
			lines[i] = strings.TrimRight(fmt.Sprintf("%-*s  %s", width, c.Name(), c.Help()), " ")
		}
		return cli.Success, cli.Print(w, strings.Join(lines, crlf))
	})
}

// historyHandler prints the recallable lines. The line that invoked it is
// not yet in the ring.
func historyHandler(s *cli.Session) cli.Handler {
	return cli.HandlerFunc(func(w io.Writer) (cli.ReturnCode, error) {
		history := s.History()
		if len(history) == 0 {
			return cli.Success, cli.Print(w, "(empty)")
		}

		lines := make([]string, len(history))
		for i, line := range history {
			lines[i] = fmt.Sprintf("%d  %s", i+1, line)
		}
		return cli.Success, cli.Print(w, strings.Join(lines, crlf))
	})
}

func versionHandler() cli.Handler {
	return cli.HandlerFunc(func(w io.Writer) (cli.ReturnCode, error) {
		return cli.Success, cli.Print(w, fullTitle())
	})
}

// replyHandler prints reply and returns code.
func replyHandler(reply string, code cli.ReturnCode) cli.Handler {
	return cli.HandlerFunc(func(w io.Writer) (cli.ReturnCode, error) {
		if reply == "" {
			return code, nil
		}
		return code, cli.Print(w, reply)
	})
}

// suggestCommand returns the registered name closest to name, or "" when
// nothing is within maxSuggestDistance edits.
func suggestCommand(reg *cli.Registry, name string) string {
	if name == "" {
		return ""
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, c := range reg.Commands() {
		dist := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c.Name()))
		if dist < bestDist {
			best, bestDist = c.Name(), dist
		}
	}
	return best
}
