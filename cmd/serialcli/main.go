// =============================================================================
// main.go - serialcli Entry Point
// =============================================================================
//
// serialcli runs the embedded command line on a host so it can be used and
// tested without hardware. The terminal (or a socket client) plays the part
// of the serial terminal attached to the device's UART.
//
// Usage:
//
//	serialcli                               Run on this terminal (raw mode)
//	serialcli --line-mode                   Edit lines locally with readline
//	serialcli --listen unix:/tmp/cli.sock   Serve one session per connection
//	serialcli --config serialcli.toml       Load prompt, limits and commands
//	serialcli --help                        Show help
//
// The CLI supports three modes:
//   - Console: every keystroke goes to the session (default)
//   - Line:    readline edits a line, the session receives it on Enter
//   - Serve:   sessions run over Unix or TCP sockets
//
// =============================================================================

// GO CONCEPT: Packages
// --------------------
// Every Go source file starts with a "package" declaration. The package
// name "main" tells the compiler this is an executable program, and it
// must contain a func main() as the entry point. The reusable pieces live
// in the cli and transport library packages; this package only wires them
// to a terminal or socket.
package main

// GO CONCEPT: Imports
// -------------------
// The import block lists the packages this file depends on. Paths without
// a domain come from the standard library; paths that start with a domain
// ("github.com/...") are modules recorded in go.mod. A package from this
// repository is imported by its full module path, just like a third-party
// one.
//
// Standard library packages used here:
//   - "context"   carries cancellation from the signal handler to the loop
//   - "log"       the host's timestamped logger
//   - "os/signal" turns SIGINT and SIGTERM into channel messages
//
// Compare to Swift: Swift imports whole modules ("import Foundation") and
// the names inside become visible unqualified. Go always qualifies: you
// write log.New, never just New.
import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dlly11/embedded-cli/transport"
)

// GO CONCEPT: Constants
// ---------------------
// "const" declares values fixed at compile time. Grouping them in a block
// with parentheses is the usual style. Constants are limited to strings,
// numbers and booleans, and they are untyped until used: the same numeric
// constant can be passed where an int, a byte or a time.Duration is
// expected.
//
// Compare to Swift: "let" can hold any value computed at runtime. Go's
// closest equivalent to that is a package-level "var".
const (
	// version is the current version of serialcli.
	version = "0.1.0"

	// appName is the display name used in banners and logs.
	appName = "serialcli"
)

// GO CONCEPT: Functions
// ---------------------
// Functions are declared with "func", and the return type follows the
// parameter list. A function that returns nothing simply omits it.
//
// Compare to Swift:
//
//	Swift: func fullTitle() -> String { ... }
//	Go:    func fullTitle() string { ... }
func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

// GO CONCEPT: Raw String Literals
// --------------------------------
// Backtick strings are raw: newlines, tabs and backslashes are kept
// exactly as written, so multi-line text reads the way it prints. The
// session's own output uses interpreted strings ("\r\n") because a serial
// terminal needs both bytes spelled out.
func welcomeBanner() string {
	return fmt.Sprintf(`%s - embedded command line
Type 'help' for available commands.
Press Ctrl-C or Ctrl-D to exit.
`, fullTitle())
}

// =============================================================================
// Command-Line Argument Parsing
// =============================================================================

// GO CONCEPT: Structs as Configuration Objects
// ---------------------------------------------
// Grouping parsed flags into a struct keeps parseArguments pure: it takes
// the argument slice and returns a value, so tests call it directly with
// any argv instead of patching os.Args.

// arguments holds the parsed command-line arguments.
type arguments struct {
	// configPath is the TOML file named with --config.
	configPath string

	// listen is the address given with --listen; it enables serve mode.
	listen string

	// lineMode selects readline line editing instead of raw mode.
	lineMode bool

	// prompt overrides the configured prompt when promptSet is true. An
	// empty prompt is allowed, so the flag needs its own marker.
	prompt    string
	promptSet bool

	// quiet discards log output.
	quiet bool

	showHelp    bool
	showVersion bool
}

// parseArguments parses argv (without the program name).
func parseArguments(argv []string) (arguments, error) {
	var args arguments
	remaining := argv

	// GO CONCEPT: Closures
	// --------------------
	// value is a function literal that captures "remaining" by reference.
	// Each call shortens the same slice the for loop below reads, so flags
	// and their arguments are consumed in one pass without an index.
	//
	// Compare to Swift: a closure capturing a "var" behaves the same way;
	// Go needs no capture list or [weak self].
	// value pops the argument that follows flag.
	value := func(flag, what string) (string, error) {
		if len(remaining) == 0 {
			return "", fmt.Errorf("%s requires %s argument", flag, what)
		}
		v := remaining[0]
		remaining = remaining[1:]
		return v, nil
	}

	for len(remaining) > 0 {
		arg := remaining[0]
		remaining = remaining[1:]

		// GO CONCEPT: Switch Statements
		// ------------------------------
		// A Go switch does not fall through: each case ends on its own,
		// so no "break" is needed. One case may list several values
		// ("--quiet", "-q"). A switch with no expression ("switch {")
		// is a tidy if/else chain; run uses that form below.
		var err error
		switch arg {
		case "--config":
			args.configPath, err = value(arg, "a path")

		case "--listen":
			args.listen, err = value(arg, "an address")

		case "--prompt":
			args.prompt, err = value(arg, "a text")
			args.promptSet = err == nil

		case "--line-mode":
			args.lineMode = true

		case "--quiet", "-q":
			args.quiet = true

		case "--help", "-h":
			args.showHelp = true

		case "--version", "-v":
			args.showVersion = true

		default:
			err = fmt.Errorf("unknown argument: %s", arg)
		}
		if err != nil {
			return args, err
		}
	}

	if args.lineMode && args.listen != "" {
		return args, fmt.Errorf("--line-mode and --listen cannot be combined")
	}
	return args, nil
}

// GO CONCEPT: Accepting Interfaces
// --------------------------------
// printUsage writes to an io.Writer rather than to os.Stdout. Anything
// with a Write method fits: os.Stdout, os.Stderr, or a bytes.Buffer in a
// test. The function states what it needs, not which concrete type it
// gets.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `USAGE: serialcli [options]

OPTIONS:
  --config <path>      Load settings and commands from a TOML file
  --listen <address>   Serve sessions on unix:<path> or tcp:<host:port>
  --line-mode          Edit whole lines locally (readline)
  --prompt <text>      Prompt drawn after every line (default "cli> ")
  --quiet, -q          Do not log to stderr
  --help, -h           Show this help
  --version, -v        Show version

KEYS:
  Enter               Run the line
  Backspace           Delete the last character
  Up / Down           Recall older / newer lines (console and serve mode)
  Ctrl-C, Ctrl-D      Exit (console mode)

EXAMPLES:
  serialcli
  serialcli --config ./serialcli.toml --prompt "mcu> "
  serialcli --listen tcp:127.0.0.1:2323
`)
}

func printVersion() {
	fmt.Println(fullTitle())
}

// printError prints an error message to stderr.
func printError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

// newLogger creates the host logger. Quiet loggers discard everything.
func newLogger(w io.Writer, quiet bool) *log.Logger {
	if quiet {
		w = io.Discard
	}
	return log.New(w, "["+appName+"] ", log.LstdFlags)
}

// =============================================================================
// Signal Handling
// =============================================================================

// GO CONCEPT: Signals and Channels
// ---------------------------------
// signal.Notify delivers OS signals on a channel instead of killing the
// process. A goroutine waits on the channel and cancels the context; every
// blocking call in the session loop watches that context, so the program
// unwinds normally and the terminal mode is restored by the deferred
// Close calls.
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()
}

// GO CONCEPT: Goroutines
// ----------------------
// "go f()" starts f concurrently and returns at once. Goroutines are
// cheap (a few kilobytes of stack), so one per blocking job is normal:
// one waits for signals here, one reads each transport, one serves each
// socket connection.
//
// Compare to Swift: roughly Task { ... }, but without async/await. The
// goroutine blocks like ordinary code and the runtime schedules others
// meanwhile.

// =============================================================================
// Modes
// =============================================================================

// run starts the mode selected by cfg and args and blocks until it ends.
func run(ctx context.Context, cfg Config, args arguments, logger *log.Logger) error {
	switch {
	case cfg.Listen != "":
		return runServe(ctx, cfg, logger)
	case args.lineMode:
		return runLineMode(ctx, cfg, logger)
	default:
		return runConsole(ctx, cfg, logger)
	}
}

func runServe(ctx context.Context, cfg Config, logger *log.Logger) error {
	listener, err := listen(cfg.Listen)
	if err != nil {
		return err
	}
	return newServer(listener, cfg, logger).serve(ctx)
}

// GO CONCEPT: defer
// -----------------
// "defer console.Close()" runs Close when runConsole returns, on every
// path including early error returns. That is how the terminal always
// leaves raw mode. Deferred calls run last in, first out.
//
// Compare to Swift: "defer { }" works the same way but is scoped to the
// enclosing block; Go's defer is always scoped to the function.
func runConsole(ctx context.Context, cfg Config, logger *log.Logger) error {
	console, err := transport.OpenConsole(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer console.Close()

	if console.IsRaw() {
		// The terminal no longer maps "\n" to "\r\n".
		logger.SetOutput(crlfWriter{logger.Writer()})
	}

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	return runSession(ctx, session, console, cfg.PollInterval, logger)
}

func runLineMode(ctx context.Context, cfg Config, logger *log.Logger) error {
	editor := NewLineEditor(cfg.HistoryFile)
	defer editor.Close()

	pr, pw := io.Pipe()
	go feedLines(editor, pw)

	port := transport.NewStream(pr, os.Stdout, transport.WithCloser(pr))
	defer port.Close()

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	return runSession(ctx, session, port, cfg.PollInterval, logger)
}

// GO CONCEPT: Implicit Interface Satisfaction
// -------------------------------------------
// crlfWriter never declares that it implements io.Writer. Having a method
// Write([]byte) (int, error) is enough, and the compiler checks it where
// the value is used as an io.Writer (logger.SetOutput above).
//
// Compare to Swift: a type must name its protocols ("struct W: Writer").
// In Go the relationship is structural.

// crlfWriter turns "\n" into "\r\n" for output to a raw-mode terminal.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// =============================================================================
// Main Entry Point
// =============================================================================

// GO CONCEPT: Exit Codes
// ----------------------
// main returns nothing. A normal return exits with status 0; os.Exit(1)
// ends the process at once with a failure status. os.Exit skips deferred
// calls, so it is only used before anything needing cleanup has started.
func main() {
	args, err := parseArguments(os.Args[1:])
	if err != nil {
		printError(err.Error())
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if args.showHelp {
		printUsage(os.Stdout)
		return
	}
	if args.showVersion {
		printVersion()
		return
	}

	cfg, err := loadConfiguration(args)
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	logger := newLogger(os.Stderr, args.quiet)

	if cfg.Listen == "" && !args.quiet {
		fmt.Print(welcomeBanner())
	}

	if err := run(ctx, cfg, args, logger); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}
