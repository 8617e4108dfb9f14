package cli

import (
	"errors"
	"fmt"
)

// Sentinel errors for the command line.
var (
	// ErrNoData is returned by Transport.ReadByte when no byte is available
	// yet. It is not a failure: Run returns an idle Result when it sees it.
	ErrNoData = errors.New("no data available")

	// ErrRead indicates the transport failed to deliver a byte.
	ErrRead = errors.New("transport read failed")

	// ErrWrite indicates a write to the transport or to a handler's output
	// sink failed.
	ErrWrite = errors.New("transport write failed")

	// ErrCapacityExceeded indicates the registry already holds its maximum
	// number of commands.
	ErrCapacityExceeded = errors.New("command registry is full")

	// ErrDuplicateName indicates a command with the same name is registered.
	ErrDuplicateName = errors.New("command already registered")

	// ErrNotFound indicates Remove was called for a name that is not
	// registered.
	ErrNotFound = errors.New("command not registered")

	// ErrCommandNotFound indicates a submitted line matched no command.
	ErrCommandNotFound = errors.New("command not found")

	// ErrEmptyName indicates a command was added without a name.
	ErrEmptyName = errors.New("command name is empty")

	// ErrNameTooLong indicates a command name exceeds MaxNameLength.
	ErrNameTooLong = errors.New("command name too long")

	// ErrHelpTooLong indicates help text exceeds the registry's help size.
	ErrHelpTooLong = errors.New("help text too long")

	// ErrNilHandler indicates a command was added without a handler.
	ErrNilHandler = errors.New("command handler is nil")

	// ErrPromptTooLong indicates a prompt exceeds MaxPromptLength.
	ErrPromptTooLong = errors.New("prompt too long")
)

// Op identifies the transport operation that failed.
type Op int

const (
	// OpRead is a single-byte read.
	OpRead Op = iota
	// OpWrite is a byte or text write.
	OpWrite
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// TransportError represents a failure of the underlying byte channel.
type TransportError struct {
	Op    Op
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("transport %s failed", e.Op)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel matching the failed operation,
// so callers can test errors.Is(err, ErrRead) without knowing the cause.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrRead:
		return e.Op == OpRead
	case ErrWrite:
		return e.Op == OpWrite
	}
	return false
}

// CommandError associates a registry failure with the command name that
// caused it.
type CommandError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Name)
}

// Unwrap returns the sentinel describing the failure.
func (e *CommandError) Unwrap() error {
	return e.Err
}

func newReadError(cause error) error {
	return &TransportError{Op: OpRead, Cause: cause}
}

func newWriteError(cause error) error {
	return &TransportError{Op: OpWrite, Cause: cause}
}

func newCommandError(name string, err error) error {
	return &CommandError{Name: name, Err: err}
}
