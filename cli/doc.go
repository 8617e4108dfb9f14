// Package cli provides an allocation-free interactive command line for
// byte-oriented serial channels such as a UART or a USB CDC port.
//
// A Session reads one byte at a time from a Transport, echoes what was
// typed, handles backspace and up/down history recall, and when the user
// presses Enter dispatches the alphanumeric projection of the line to a
// Registry of named command handlers.
//
// # Terminal Protocol
//
// The session speaks a plain character-terminal protocol:
//
//	CR  (0x0D)        submit the line, run the command, redraw the prompt
//	LF  (0x0A)        redraw the prompt only
//	BS  (0x08)        erase the last character ("\x08 \x08")
//	ESC [ A           recall the previous history entry
//	ESC [ B           recall the next history entry
//	anything else     echoed and buffered (32 bytes max, excess dropped)
//
// Only ASCII letters and digits reach the dispatch token, so the line
// "led on!" dispatches the command named "ledon".
//
// # Basic Usage
//
//	reg := cli.NewRegistry(cli.DefaultCapacity, cli.DefaultHelpSize)
//	session, err := cli.NewSession(reg)
//	if err != nil {
//	    return err
//	}
//
//	session.AddCommand("hello", cli.HandlerFunc(func(w io.Writer) (cli.ReturnCode, error) {
//	    if err := cli.Print(w, "Hello"); err != nil {
//	        return 0, err
//	    }
//	    return cli.Success, nil
//	}), "Say hello")
//
//	if err := session.Start(port); err != nil {
//	    return err
//	}
//	for {
//	    result, err := session.Run(port)
//	    switch {
//	    case errors.Is(err, cli.ErrRead):
//	        // buffers are kept; call Run again once the port recovers
//	    case err != nil:
//	        // unknown command, handler failure or write failure
//	    case result.Idle:
//	        // nothing to read yet
//	    }
//	}
//
// # Thread Safety
//
// A Session and its Registry are meant for a single cooperative control
// loop. They hold no locks and must not be used from more than one
// goroutine at a time.
package cli
