// =============================================================================
// mockterminal_test.go - Test Terminals for the Host
// =============================================================================
//
// Two stand-ins for the person at the serial terminal:
//
//   - scriptPort is an in-memory cli.Transport that replays a fixed input
//     script and records everything the session writes back. It cannot be
//     waited on, so runSession polls it.
//   - startTestServer runs the real serve mode on a temporary Unix socket,
//     and dialTestServer connects to it like `socat` would.
//
// =============================================================================

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dlly11/embedded-cli/cli"
)

// scriptPort replays input one byte per read. Once the script is used up it
// reports cli.ErrNoData, or io.EOF when hangup is set.
type scriptPort struct {
	input  []byte
	hangup bool

	// readErr, when set, is returned once the script is used up.
	readErr error

	out bytes.Buffer
}

func newScriptPort(input string, hangup bool) *scriptPort {
	return &scriptPort{input: []byte(input), hangup: hangup}
}

func (p *scriptPort) ReadByte() (byte, error) {
	if len(p.input) == 0 {
		switch {
		case p.readErr != nil:
			return 0, p.readErr
		case p.hangup:
			return 0, io.EOF
		default:
			return 0, cli.ErrNoData
		}
	}
	b := p.input[0]
	p.input = p.input[1:]
	return b, nil
}

func (p *scriptPort) WriteByte(c byte) error {
	return p.out.WriteByte(c)
}

func (p *scriptPort) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

// lockedBuffer is a bytes.Buffer safe for the concurrent writes of a
// logger shared by several sessions.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestLogger returns a logger without timestamps and the buffer it
// writes to.
func newTestLogger() (*log.Logger, *lockedBuffer) {
	buf := &lockedBuffer{}
	return log.New(buf, "", 0), buf
}

// testServer is a running serve mode instance.
type testServer struct {
	socketPath string
	logs       *lockedBuffer

	cancel context.CancelFunc
	done   chan error
}

// startTestServer serves cfg on a fresh Unix socket. The server is stopped
// when the test ends.
func startTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()

	// Use /tmp directly: t.TempDir() paths can exceed the 104-byte socket
	// path limit on macOS.
	tmpDir, err := os.MkdirTemp("/tmp", "serialcli-test-")
	require.NoError(t, err, "failed to create temp dir")
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	socketPath := filepath.Join(tmpDir, "s.sock")

	listener, err := listen("unix:" + socketPath)
	require.NoError(t, err, "failed to listen")

	logger, logs := newTestLogger()
	ctx, cancel := context.WithCancel(context.Background())

	ts := &testServer{
		socketPath: socketPath,
		logs:       logs,
		cancel:     cancel,
		done:       make(chan error, 1),
	}
	go func() {
		ts.done <- newServer(listener, cfg, logger).serve(ctx)
	}()

	t.Cleanup(func() { ts.stop(t) })
	return ts
}

// stop cancels the server and waits for serve to return. It may be called
// more than once.
func (ts *testServer) stop(t *testing.T) error {
	t.Helper()
	ts.cancel()

	select {
	case err, ok := <-ts.done:
		if ok {
			close(ts.done)
		}
		return err
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server did not stop")
		return nil
	}
}

// dialTestServer connects to ts and consumes the first prompt.
func dialTestServer(t *testing.T, ts *testServer) net.Conn {
	t.Helper()

	conn, err := net.Dial("unix", ts.socketPath)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { conn.Close() })

	readUntil(t, conn, "cli> ")
	return conn
}

// readUntil reads from conn until the accumulated output contains want,
// and returns the output.
func readUntil(t *testing.T, conn net.Conn, want string) string {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	var got strings.Builder
	buf := make([]byte, 256)

	for !strings.Contains(got.String(), want) {
		conn.SetReadDeadline(deadline)
		n, err := conn.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				require.FailNowf(t, "timed out", "waiting for %q, got %q", want, got.String())
			}
			require.NoError(t, err, "read failed waiting for %q (got %q)", want, got.String())
		}
	}
	return got.String()
}
