// =============================================================================
// lineeditor.go - Line Mode Input
// =============================================================================
//
// By default the host puts the terminal in raw mode and hands every
// keystroke to the session, exactly as a serial terminal would. Line mode
// (--line-mode) is for terminals and editors that would rather edit a whole
// line locally first:
//
//   - Interactive: ergochat/readline does the editing, with Emacs
//     keybindings and a persistent history file.
//   - Non-interactive (piped input or Emacs comint): lines are read with
//     bufio.Scanner.
//
// Either way each finished line is written to a pipe followed by a carriage
// return, and the session reads the pipe as if the bytes had been typed.
// The session still echoes what it receives, so an interactive line shows
// twice, once from readline and once from the device. That is what a
// line-buffered terminal attached to a remote-echo device looks like.
//
// =============================================================================

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

// GO CONCEPT: Third-Party Modules
// -------------------------------
// github.com/ergochat/readline and golang.org/x/term are not part of the
// standard library. go.mod pins their versions and go.sum records their
// hashes; "go build" downloads them on first use. golang.org/x/... modules
// are maintained by the Go team but versioned outside the main release.

// historySize is the maximum number of readline history entries kept.
const historySize = 500

// GO CONCEPT: Interfaces and Structural Typing
// ---------------------------------------------
// Go interfaces are satisfied implicitly. readline.Instance and
// bufio.Scanner have different APIs, so LineEditor wraps both behind
// GetLine()/Close(). feedLines only ever sees the LineEditor.
//
// Compare to Swift: the same idea as hiding two implementations behind
// one protocol, except that here a struct with a mode flag does the job,
// because only two variants exist and neither is exported.

// LineEditor reads whole lines from the user.
type LineEditor struct {
	// interactive is true when stdin is a TTY and we are not inside Emacs.
	interactive bool

	// rl is the readline instance in interactive mode, nil otherwise.
	rl *readline.Instance

	// scanner reads lines in non-interactive mode, nil otherwise.
	scanner *bufio.Scanner
}

// GO CONCEPT: Pointers and nil
// ----------------------------
// rl and scanner are pointers; whichever mode is not in use stays nil.
// Methods check the mode flag (or the pointer itself, as Close does)
// before touching them. Dereferencing a nil pointer panics, so the check
// is part of the type's contract.
//
// Compare to Swift: a nil pointer field plays the part of an Optional,
// but the compiler does not force you to unwrap it.

// NewLineEditor creates a LineEditor for stdin, choosing readline when
// stdin is a terminal. historyFile may be empty to disable history.
func NewLineEditor(historyFile string) *LineEditor {
	isInteractive := term.IsTerminal(int(os.Stdin.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""

	if !isInteractive {
		return newScannerEditor(os.Stdin)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:  historyFile,
		HistoryLimit: historySize,

		// Only non-blank lines are saved; see GetLine.
		DisableAutoSaveHistory: true,

		// The session draws its own prompt.
		Prompt: "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newScannerEditor(os.Stdin)
	}

	return &LineEditor{
		interactive: true,
		rl:          rl,
	}
}

// GO CONCEPT: Constructor Functions
// ---------------------------------
// Go has no constructors. By convention NewX builds and returns a ready
// value. The lower-case newScannerEditor is the same pattern kept private
// to the package; tests call it directly with a strings.Reader.

// newScannerEditor creates a non-interactive LineEditor over r.
func newScannerEditor(r io.Reader) *LineEditor {
	return &LineEditor{scanner: bufio.NewScanner(r)}
}

// GO CONCEPT: Sentinel Errors
// ---------------------------
// io.EOF is a package-level error value, not a type. Code compares
// against it to tell "input ended" from a real failure. GetLine maps
// readline's Ctrl-C (readline.ErrInterrupt) onto io.EOF so that callers
// only have one "finished" signal to handle. When an error may be
// wrapped, errors.Is is the safer comparison; these values come straight
// from the library, so == is enough.

// GetLine reads one line without its terminator. It returns io.EOF at end
// of input or when the user presses Ctrl-C.
func (le *LineEditor) GetLine() (string, error) {
	if le.interactive {
		line, err := le.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return "", io.EOF
			}
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			le.rl.SaveToHistory(line)
		}
		return line, nil
	}

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Close releases the readline instance, restoring the terminal.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

// IsInteractive reports whether readline is in use.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}

// GO CONCEPT: io.Pipe
// --------------------
// io.Pipe connects code that writes with code that reads, with no buffer
// in between: each Write blocks until the other side has read it. Here
// the line editor writes and the session's transport reads, so typed
// lines become a byte stream without a temporary file or channel.
// CloseWithError(nil) makes the reader see io.EOF; any other error is
// passed through to it.

// feedLines copies lines from le into w, each terminated by a carriage
// return, until input ends or w is closed. End of input closes w so the
// reading side sees io.EOF.
func feedLines(le *LineEditor, w *io.PipeWriter) {
	for {
		line, err := le.GetLine()
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			w.CloseWithError(err)
			return
		}
		if _, err := io.WriteString(w, line+"\r"); err != nil {
			return
		}
	}
}
