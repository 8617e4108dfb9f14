package cli

import "io"

// Registry is a bounded table of named commands.
//
// Its storage is allocated once by NewRegistry; Add never grows it. Names
// are unique and the table never holds more than Cap() commands.
type Registry struct {
	commands []Command
	helpSize int
}

// NewRegistry creates a registry holding at most capacity commands with
// help text of at most helpSize bytes. Non-positive values fall back to
// DefaultCapacity and DefaultHelpSize.
func NewRegistry(capacity, helpSize int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if helpSize <= 0 {
		helpSize = DefaultHelpSize
	}
	return &Registry{
		commands: make([]Command, 0, capacity),
		helpSize: helpSize,
	}
}

// Add registers handler under name with optional help text.
//
// A duplicate name fails with ErrDuplicateName regardless of remaining
// space; a new name fails with ErrCapacityExceeded once the registry is
// full. Successful adds keep insertion order.
func (r *Registry) Add(name string, handler Handler, help string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case len(name) > MaxNameLength:
		return newCommandError(name, ErrNameTooLong)
	case len(help) > r.helpSize:
		return newCommandError(name, ErrHelpTooLong)
	case handler == nil:
		return newCommandError(name, ErrNilHandler)
	}

	if r.index(name) >= 0 {
		return newCommandError(name, ErrDuplicateName)
	}
	if len(r.commands) == cap(r.commands) {
		return newCommandError(name, ErrCapacityExceeded)
	}

	r.commands = append(r.commands, Command{name: name, help: help, handler: handler})
	return nil
}

// Remove unregisters the command called name. The last command takes the
// removed slot, so the order of the remaining commands may change.
func (r *Registry) Remove(name string) error {
	i := r.index(name)
	if i < 0 {
		return newCommandError(name, ErrNotFound)
	}

	last := len(r.commands) - 1
	r.commands[i] = r.commands[last]
	r.commands[last] = Command{}
	r.commands = r.commands[:last]
	return nil
}

// Dispatch runs the command whose name equals token, passing w as its
// output sink (w may be nil). The handler's status and error are returned
// unchanged. An unknown token fails with ErrCommandNotFound.
func (r *Registry) Dispatch(token string, w io.Writer) (ReturnCode, error) {
	i := r.index(token)
	if i < 0 {
		return 0, newCommandError(token, ErrCommandNotFound)
	}
	return r.commands[i].handler.Handle(w)
}

// dispatchBytes is Dispatch for the session's line buffer. Comparing
// against string(token) does not allocate.
func (r *Registry) dispatchBytes(token []byte, w io.Writer) (ReturnCode, error) {
	for i := range r.commands {
		if r.commands[i].name == string(token) {
			return r.commands[i].handler.Handle(w)
		}
	}
	return 0, newCommandError(string(token), ErrCommandNotFound)
}

// Lookup returns the command called name.
func (r *Registry) Lookup(name string) (Command, bool) {
	i := r.index(name)
	if i < 0 {
		return Command{}, false
	}
	return r.commands[i], true
}

// Commands returns a copy of the registered commands in their current order.
func (r *Registry) Commands() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

// Cap returns the maximum number of commands.
func (r *Registry) Cap() int { return cap(r.commands) }

// HelpSize returns the maximum help text length in bytes.
func (r *Registry) HelpSize() int { return r.helpSize }

func (r *Registry) index(name string) int {
	for i := range r.commands {
		if r.commands[i].name == name {
			return i
		}
	}
	return -1
}
