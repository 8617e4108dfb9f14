package cli

import (
	"fmt"
	"io"
)

// ReturnCode is the status a handler reports after running.
// Success is zero; any other value is application-defined.
type ReturnCode int

// Success is the status of a handler that completed normally.
const Success ReturnCode = 0

// Result is the outcome of one Run call.
type Result struct {
	// Code is the handler's status when a line was dispatched.
	Code ReturnCode

	// Idle is true when Run returned because the transport had no data.
	Idle bool
}

// Handler runs a command.
//
// w is the output sink, normally the session's transport. It is nil when
// the command is invoked without a live transport, so handlers must check
// before writing (Print and Printf do). A handler that fails to write
// should return an error wrapping ErrWrite.
type Handler interface {
	Handle(w io.Writer) (ReturnCode, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
// A closure carries whatever state the command needs.
type HandlerFunc func(w io.Writer) (ReturnCode, error)

// Handle calls f(w).
func (f HandlerFunc) Handle(w io.Writer) (ReturnCode, error) {
	return f(w)
}

// Command is a registered handler with its name and optional help text.
// Commands are immutable; replace one by removing and re-adding it.
type Command struct {
	name    string
	help    string
	handler Handler
}

// Name returns the dispatch key.
func (c Command) Name() string { return c.name }

// Help returns the help text, or "" if none was given.
func (c Command) Help() string { return c.help }

// Handler returns the command's handler.
func (c Command) Handler() Handler { return c.handler }

// Print writes the operands to w in the manner of fmt.Print.
// It does nothing when w is nil and reports failures as ErrWrite.
func Print(w io.Writer, a ...any) error {
	if w == nil {
		return nil
	}
	if _, err := fmt.Fprint(w, a...); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Printf writes formatted output to w in the manner of fmt.Printf.
// It does nothing when w is nil and reports failures as ErrWrite.
func Printf(w io.Writer, format string, a ...any) error {
	if w == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, format, a...); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
