package transport

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrInterrupted is returned by Console reads after the user pressed
// Ctrl-C or Ctrl-D. In raw mode the terminal no longer turns those keys
// into signals, so the console does it instead.
var ErrInterrupted = errors.New("interrupted")

const (
	ctrlC     = 0x03
	ctrlD     = 0x04
	backspace = 0x08
	del       = 0x7f
)

// Console is a Stream over the process's terminal. When in is a TTY it is
// switched to raw mode so every keystroke, including escape sequences,
// reaches the session unprocessed; Close restores the previous mode.
//
// Most terminals send DEL for the Backspace key in raw mode. The console
// delivers it as BS, the erase key the session understands.
type Console struct {
	*Stream

	fd       int
	oldState *term.State
}

// OpenConsole reads from in and writes to out. Piped input is read as is.
func OpenConsole(in, out *os.File) (*Console, error) {
	c := &Console{fd: int(in.Fd())}

	if term.IsTerminal(c.fd) {
		state, err := term.MakeRaw(c.fd)
		if err != nil {
			return nil, fmt.Errorf("enter raw mode: %w", err)
		}
		c.oldState = state
	}

	c.Stream = NewStream(in, out, WithFilter(consoleFilter))
	return c, nil
}

// IsRaw reports whether the console switched the terminal to raw mode.
func (c *Console) IsRaw() bool {
	return c.oldState != nil
}

// Close restores the terminal. The input file is left open.
func (c *Console) Close() error {
	err := c.Stream.Close()
	if c.oldState != nil {
		if rerr := term.Restore(c.fd, c.oldState); rerr != nil && err == nil {
			err = rerr
		}
		c.oldState = nil
	}
	return err
}

// consoleFilter maps DEL to BS and turns Ctrl-C and Ctrl-D into
// ErrInterrupted.
func consoleFilter(b byte) (byte, error) {
	switch b {
	case ctrlC, ctrlD:
		return b, ErrInterrupted
	case del:
		return backspace, nil
	}
	return b, nil
}
