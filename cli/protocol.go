package cli

import "io"

// Size limits and defaults. Every buffer is a fixed-size array so the
// editing path never allocates.
const (
	// LineLength is the capacity of the raw and filtered line buffers.
	LineLength = 32

	// HistoryDepth is the number of submitted lines kept for recall.
	HistoryDepth = 8

	// MaxNameLength is the maximum command name length in bytes.
	MaxNameLength = 32

	// MaxPromptLength is the maximum prompt length in bytes.
	MaxPromptLength = 32

	// DefaultPrompt is the prompt used when none is configured.
	DefaultPrompt = "cli> "

	// DefaultCapacity is a reasonable registry size for small targets.
	DefaultCapacity = 8

	// DefaultHelpSize is a reasonable help text bound for small targets.
	DefaultHelpSize = 32
)

// Control bytes recognised by the line editor.
const (
	keyCR        = '\r'
	keyLF        = '\n'
	keyBackspace = '\x08'
	keyEscape    = '\x1b'
	keyBracket   = '['
	keyUp        = 'A'
	keyDown      = 'B'
)

const (
	// newline precedes every prompt redraw.
	newline = "\r\n"

	// eraseSequence moves back one cell, blanks it, and moves back again.
	eraseSequence = "\x08 \x08"
)

// Transport is the duplex byte channel a Session runs over.
//
// ReadByte must return ErrNoData (or an error wrapping it) when no byte is
// pending, and any other error only for a real failure. Write is the bulk
// text write used for prompts and handler output.
type Transport interface {
	io.ByteReader
	io.ByteWriter
	io.Writer
}

// isAlphanumeric reports whether b is an ASCII letter or digit.
func isAlphanumeric(b byte) bool {
	return ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
