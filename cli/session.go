package cli

import (
	"errors"
	"io"
)

// Session is the line editor: it owns the in-progress line, the prompt and
// the history ring, and dispatches completed lines to its Registry.
//
// A Session is created once by its owner and driven by calling Run from a
// single control loop. It is not safe for concurrent use.
type Session struct {
	registry *Registry
	prompt   lineBuffer

	// raw holds every byte echoed for the current line, control and escape
	// bytes included. filtered holds only its letters and digits and is
	// the dispatch key.
	raw      lineBuffer
	filtered lineBuffer

	history historyRing
	cursor  int
}

// Option configures a Session.
type Option func(*Session) error

// WithPrompt sets the prompt drawn after every submitted line.
func WithPrompt(prompt string) Option {
	return func(s *Session) error {
		if len(prompt) > MaxPromptLength {
			return ErrPromptTooLong
		}
		s.prompt.set([]byte(prompt))
		return nil
	}
}

// NewSession creates a session dispatching to reg. A nil reg gets a
// registry of DefaultCapacity commands.
func NewSession(reg *Registry, opts ...Option) (*Session, error) {
	if reg == nil {
		reg = NewRegistry(DefaultCapacity, DefaultHelpSize)
	}
	s := &Session{registry: reg}
	s.prompt.set([]byte(DefaultPrompt))

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddCommand registers a command on the session's registry.
func (s *Session) AddCommand(name string, handler Handler, help string) error {
	return s.registry.Add(name, handler, help)
}

// RemoveCommand unregisters a command from the session's registry.
func (s *Session) RemoveCommand(name string) error {
	return s.registry.Remove(name)
}

// Registry returns the session's command registry.
func (s *Session) Registry() *Registry { return s.registry }

// Prompt returns the current prompt.
func (s *Session) Prompt() string { return string(s.prompt.bytes()) }

// Start draws the first prompt.
func (s *Session) Start(t Transport) error {
	return s.writePrompt(t)
}

// Run consumes bytes from t until a line is submitted, the transport has no
// more data, or reading fails.
//
// A submitted line returns the handler's status, or the dispatch error
// (ErrCommandNotFound, a handler error, or ErrWrite) once the prompt has
// been redrawn. With no data available Run returns an idle Result and the
// partially typed line stays buffered. A read failure returns an error
// matching ErrRead and also keeps the line, so a later Run continues it.
// Every other outcome clears the line.
func (s *Session) Run(t Transport) (Result, error) {
	result, keepLine, err := s.processLoop(t)
	if !keepLine {
		s.Reset()
	}
	return result, err
}

// Reset discards the line being edited. History is kept.
func (s *Session) Reset() {
	s.raw.clear()
	s.filtered.clear()
}

// History returns the recallable lines, oldest first.
func (s *Session) History() []string {
	out := make([]string, 0, s.history.len())
	for i := 0; i < s.history.len(); i++ {
		line, _ := s.history.at(i)
		out = append(out, string(line))
	}
	return out
}

// HistoryCursor returns the index of the entry the next up-arrow recalls.
func (s *Session) HistoryCursor() int { return s.cursor }

// Pending returns the raw and filtered contents of the line being edited.
func (s *Session) Pending() (raw, filtered string) {
	return string(s.raw.bytes()), string(s.filtered.bytes())
}

// processLoop runs the byte state machine. The boolean reports whether the
// line must survive this call: true when reading paused or failed.
func (s *Session) processLoop(t Transport) (Result, bool, error) {
	for {
		b, err := t.ReadByte()
		if err != nil {
			if errors.Is(err, ErrNoData) {
				return Result{Idle: true}, true, nil
			}
			return Result{}, true, newReadError(err)
		}

		switch b {
		case keyCR:
			res, err := s.submit(t)
			return res, false, err

		case keyLF:
			err = s.writePrompt(t)

		case keyBackspace:
			err = s.backspace(t)

		case keyUp, keyDown:
			if s.raw.endsWith(keyEscape, keyBracket) {
				err = s.recall(t, b == keyUp)
			} else {
				err = s.insert(t, b)
			}

		default:
			err = s.insert(t, b)
		}

		if err != nil {
			return Result{}, false, err
		}
	}
}

// submit handles carriage return: dispatch the filtered line, record it in
// history and redraw the prompt. The dispatch outcome is returned last; a
// handler's status is kept even when it also returns an error.
func (s *Session) submit(t Transport) (Result, error) {
	if err := s.writePrompt(t); err != nil {
		return Result{}, err
	}

	code, dispatchErr := s.registry.dispatchBytes(s.filtered.bytes(), t)

	s.history.push(s.filtered.bytes())
	s.cursor = s.history.len() - 1

	if err := s.writePrompt(t); err != nil {
		return Result{}, err
	}
	if dispatchErr != nil {
		return Result{Code: code}, dispatchErr
	}
	return Result{Code: code}, nil
}

// backspace pops the raw line and echoes an erase when it had a byte. The
// filtered line is popped regardless of what the raw byte was.
func (s *Session) backspace(t Transport) error {
	if s.raw.pop() {
		if err := s.writeString(t, eraseSequence); err != nil {
			return err
		}
	}
	s.filtered.pop()
	return nil
}

// insert buffers and echoes an ordinary byte. Bytes that do not fit are
// dropped without echo.
func (s *Session) insert(t Transport, b byte) error {
	if s.raw.full() {
		return nil
	}
	s.raw.push(b)
	if err := s.writeByte(t, b); err != nil {
		return err
	}
	if isAlphanumeric(b) {
		s.filtered.push(b)
	}
	return nil
}

// recall replaces the line with the history entry under the cursor and
// then moves the cursor one step older (up) or newer (down), clamped to
// the ends of the ring.
func (s *Session) recall(t Transport, older bool) error {
	if s.history.len() == 0 {
		return nil
	}

	entry, ok := s.history.at(s.cursor)

	if older {
		if s.cursor > 0 {
			s.cursor--
		}
	} else if s.cursor < s.history.len()-1 {
		s.cursor++
	}

	if !ok {
		return nil
	}

	erase := s.raw.countAlphanumeric()
	s.raw.set(entry)
	s.filtered.set(entry)

	for i := 0; i < erase; i++ {
		if err := s.writeByte(t, keyBackspace); err != nil {
			return err
		}
	}
	if err := s.writeByte(t, ' '); err != nil {
		return err
	}
	for _, b := range s.raw.bytes() {
		if err := s.writeByte(t, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) writePrompt(t Transport) error {
	if err := s.writeString(t, newline); err != nil {
		return err
	}
	if _, err := t.Write(s.prompt.bytes()); err != nil {
		return newWriteError(err)
	}
	return nil
}

func (s *Session) writeString(t Transport, str string) error {
	if _, err := io.WriteString(t, str); err != nil {
		return newWriteError(err)
	}
	return nil
}

func (s *Session) writeByte(t Transport, b byte) error {
	if err := t.WriteByte(b); err != nil {
		return newWriteError(err)
	}
	return nil
}
