// =============================================================================
// server.go - Socket Serve Mode
// =============================================================================
//
// With --listen (or listen in the config file) the host accepts connections
// on a Unix domain socket or TCP port instead of using the terminal. Each
// connection stands in for one serial line: it gets its own Session and
// Registry and is driven by its own runSession goroutine, so sessions
// never share history or a half-typed line.
//
// Connect with any raw terminal client, for example:
//
//	socat -,raw,echo=0 UNIX-CONNECT:/tmp/serialcli.sock
//	socat -,raw,echo=0 TCP:127.0.0.1:2323
//	nc -C 127.0.0.1 2323
//
// Enter must arrive as CR: a bare LF only redraws the prompt, which is why
// plain line-mode nc needs -C.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"sync"

	"github.com/dlly11/embedded-cli/transport"
)

// GO CONCEPT: Mutexes and WaitGroups
// ----------------------------------
// Several goroutines add and remove connections, so the conns map is
// guarded by a sync.Mutex; Go maps are not safe for concurrent writes.
// A sync.WaitGroup counts running sessions: Add before each goroutine
// starts, Done when it ends, and Wait blocks until the count is zero.
// map[net.Conn]struct{} is Go's set idiom, since an empty struct takes
// no memory.

// server accepts connections and runs one session per connection.
type server struct {
	listener net.Listener
	cfg      Config
	logger   *log.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}

	wg sync.WaitGroup
}

func newServer(listener net.Listener, cfg Config, logger *log.Logger) *server {
	return &server{
		listener: listener,
		cfg:      cfg,
		logger:   logger,
		conns:    make(map[net.Conn]struct{}),
	}
}

// serve accepts connections until ctx is cancelled or the listener fails.
// It closes every open connection and waits for their sessions before
// returning.
func (s *server) serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.listener.Close() })
	defer stop()

	s.logger.Printf("listening on %s %s", s.listener.Addr().Network(), s.listener.Addr())

	var acceptErr error
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = err
			}
			break
		}

		s.track(conn)
		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}

	s.closeAll()
	s.wg.Wait()
	return acceptErr
}

// handleConnection runs a session for conn until the peer hangs up.
func (s *server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	peer := peerName(conn)
	s.logger.Printf("session opened (%s)", peer)

	port := transport.NewConn(conn)
	defer port.Close()

	session, err := newSession(s.cfg)
	if err != nil {
		s.logger.Printf("session setup failed (%s): %v", peer, err)
		return
	}

	if err := runSession(ctx, session, port, s.cfg.PollInterval, s.logger); err != nil {
		s.logger.Printf("session ended with error (%s): %v", peer, err)
		return
	}
	s.logger.Printf("session closed (%s)", peer)
}

// peerName names the remote end for logs. Unix socket clients are usually
// unnamed.
func peerName(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}
	return "local"
}

func (s *server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// listen opens addr, replacing a stale Unix socket file left behind by a
// previous run.
func listen(addr string) (net.Listener, error) {
	network, path, err := transport.SplitAddress(addr)
	if err != nil {
		return nil, err
	}
	if network == "unix" {
		if info, statErr := os.Stat(path); statErr == nil && info.Mode()&os.ModeSocket != 0 {
			os.Remove(path)
		}
	}
	return transport.Listen(addr)
}
