// Package transport provides hosted implementations of cli.Transport.
//
// A serial port on a microcontroller can be polled: reading either yields
// a byte or says nothing has arrived yet. Operating system streams block
// instead, so Stream runs a reader goroutine that moves bytes into a
// channel and answers ReadByte from that channel without blocking.
//
//	conn, _ := net.Dial("tcp", "127.0.0.1:2323")
//	port := transport.NewConn(conn)
//	defer port.Close()
//
//	session.Start(port)
//	for {
//	    result, err := session.Run(port)
//	    if result.Idle {
//	        port.Wait(ctx)
//	    }
//	    ...
//	}
//
// A Stream may be read from only one goroutine (the session's control
// loop). Writes go straight to the underlying writer.
package transport

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dlly11/embedded-cli/cli"
)

// readChunkSize is the size of each read from the underlying reader.
const readChunkSize = 256

// ErrClosed is returned by reads after Close.
var ErrClosed = errors.New("transport closed")

// Stream adapts a blocking reader and a writer to cli.Transport.
type Stream struct {
	w      io.Writer
	closer io.Closer
	filter func(byte) (byte, error)

	bytes chan byte
	done  chan struct{}

	// pending holds a byte taken from the channel by Wait.
	pending    byte
	hasPending bool

	mu      sync.Mutex
	readErr error

	closeOnce sync.Once
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithCloser makes Close also close c (for example the net.Conn or file
// behind the reader).
func WithCloser(c io.Closer) StreamOption {
	return func(s *Stream) { s.closer = c }
}

// WithFilter passes every byte read through filter, which returns the byte
// to queue in its place. A non-nil error stops the reader; bytes already
// queued are still delivered, then ReadByte returns the error.
func WithFilter(filter func(byte) (byte, error)) StreamOption {
	return func(s *Stream) { s.filter = filter }
}

// NewStream starts reading r in the background and writes to w.
func NewStream(r io.Reader, w io.Writer, opts ...StreamOption) *Stream {
	s := &Stream{
		w:     w,
		bytes: make(chan byte, readChunkSize),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.readLoop(r)
	return s
}

// readLoop copies bytes from r into the channel until r fails, the filter
// rejects a byte, or the stream is closed.
func (s *Stream) readLoop(r io.Reader) {
	defer close(s.bytes)

	var chunk [readChunkSize]byte
	for {
		n, err := r.Read(chunk[:])
		for _, b := range chunk[:n] {
			if s.filter != nil {
				var ferr error
				if b, ferr = s.filter(b); ferr != nil {
					s.setReadErr(ferr)
					return
				}
			}
			select {
			case s.bytes <- b:
			case <-s.done:
				s.setReadErr(ErrClosed)
				return
			}
		}
		if err != nil {
			s.setReadErr(err)
			return
		}
	}
}

func (s *Stream) setReadErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr == nil {
		s.readErr = err
	}
}

// Err returns the error that stopped the reader, or nil while it runs.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}

// ReadByte returns the next received byte, or cli.ErrNoData if none has
// arrived. Once the reader has stopped and every byte has been delivered
// it returns the reader's error (io.EOF when the peer hung up).
func (s *Stream) ReadByte() (byte, error) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, nil
	}

	select {
	case b, ok := <-s.bytes:
		if ok {
			return b, nil
		}
		if err := s.Err(); err != nil {
			return 0, err
		}
		return 0, ErrClosed
	default:
		return 0, cli.ErrNoData
	}
}

// Wait blocks until a byte is ready, the reader stops, or ctx is done.
// It never consumes data: the byte it waited for is returned by the next
// ReadByte.
func (s *Stream) Wait(ctx context.Context) error {
	if s.hasPending {
		return nil
	}

	select {
	case b, ok := <-s.bytes:
		if ok {
			s.pending = b
			s.hasPending = true
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteByte writes a single byte.
func (s *Stream) WriteByte(c byte) error {
	_, err := s.w.Write([]byte{c})
	return err
}

// Write writes p to the underlying writer.
func (s *Stream) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Close stops the reader and closes the configured closer. It is safe to
// call more than once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}
