// =============================================================================
// repl.go - Session Poll Loop
// =============================================================================
//
// On a microcontroller the command line runs as one task that calls Run
// whenever the UART has data. runSession is that task for the host: it
// draws the first prompt, then calls Run until the peer goes away or the
// context is cancelled.
//
// Run returns in one of four ways, and the loop handles each:
//
//	idle               wait for input (or sleep poll_interval) and go again
//	status             log non-zero statuses and go again
//	dispatch error     log it (with a suggestion for typos) and go again
//	transport failure  stop; a hangup is a normal end
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/dlly11/embedded-cli/cli"
	"github.com/dlly11/embedded-cli/transport"
)

// GO CONCEPT: Type Assertions on Interfaces
// -----------------------------------------
// "w, ok := port.(waiter)" asks at runtime whether the value inside a
// cli.Transport also has a Wait method. The two-value form never panics:
// ok is false when it does not. This lets the loop use an optional
// capability without widening the Transport interface that every port
// must implement.
//
// Compare to Swift: "if let w = port as? Waiter { ... }".

// waiter is implemented by transports that can block until input arrives,
// such as transport.Stream. Other transports are polled.
type waiter interface {
	Wait(ctx context.Context) error
}

// runSession drives session over port. It returns nil when the peer hangs
// up or ctx is cancelled, and the error otherwise.
func runSession(ctx context.Context, session *cli.Session, port cli.Transport, pollInterval time.Duration, logger *log.Logger) error {
	if err := session.Start(port); err != nil {
		return hangupOrError(err)
	}

	for ctx.Err() == nil {
		result, err := session.Run(port)

		switch {
		case err == nil && result.Idle:
			waitForInput(ctx, port, pollInterval)

		case err == nil:
			if result.Code != cli.Success {
				logger.Printf("command returned status %d", result.Code)
			}

		case errors.Is(err, cli.ErrRead), errors.Is(err, cli.ErrWrite):
			return hangupOrError(err)

		default:
			logDispatchError(session, err, logger)
		}
	}
	return nil
}

// GO CONCEPT: select
// ------------------
// select waits on several channel operations and runs whichever is ready
// first. Here that is either cancellation (ctx.Done()) or the timer
// firing. Stopping the timer with defer releases it early when the
// context wins.

// waitForInput blocks until port has data, the poll interval passes, or
// ctx is done.
func waitForInput(ctx context.Context, port cli.Transport, pollInterval time.Duration) {
	if w, ok := port.(waiter); ok {
		// Wait only fails when ctx is done, which the caller checks.
		_ = w.Wait(ctx)
		return
	}

	timer := time.NewTimer(pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// GO CONCEPT: errors.Is and errors.As
// -----------------------------------
// Errors are often wrapped with extra context (fmt.Errorf("...: %w", err)).
// errors.Is walks that chain looking for a particular value such as
// cli.ErrCommandNotFound. errors.As walks it looking for a particular
// type and, when found, fills in the target pointer so its fields
// (cmdErr.Name) can be read.
func logDispatchError(session *cli.Session, err error, logger *log.Logger) {
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || !errors.Is(err, cli.ErrCommandNotFound) {
		logger.Printf("command failed: %v", err)
		return
	}

	// Enter on an empty line is not worth a log entry.
	if cmdErr.Name == "" {
		return
	}

	if hint := suggestCommand(session.Registry(), cmdErr.Name); hint != "" {
		logger.Printf("unknown command %q (did you mean %q?)", cmdErr.Name, hint)
		return
	}
	logger.Printf("unknown command %q", cmdErr.Name)
}

// hangupOrError returns nil for errors that mean the other end went away.
func hangupOrError(err error) error {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, transport.ErrClosed),
		errors.Is(err, transport.ErrInterrupted):
		return nil
	}
	return err
}
