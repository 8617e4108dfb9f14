package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// DialTimeout bounds how long Dial waits for a connection.
const DialTimeout = 5 * time.Second

// NewConn wraps a network connection. Closing the Stream closes conn.
func NewConn(conn net.Conn) *Stream {
	return NewStream(conn, conn, WithCloser(conn))
}

// SplitAddress parses "network:address" where network is unix or tcp,
// e.g. "unix:/tmp/serialcli.sock" or "tcp:127.0.0.1:2323". A bare
// "host:port" is treated as tcp and a bare path as unix.
func SplitAddress(addr string) (network, address string, err error) {
	if addr == "" {
		return "", "", fmt.Errorf("empty address")
	}

	if prefix, rest, ok := strings.Cut(addr, ":"); ok {
		switch prefix {
		case "unix", "tcp", "tcp4", "tcp6":
			if rest == "" {
				return "", "", fmt.Errorf("missing address after %q", prefix+":")
			}
			return prefix, rest, nil
		}
	}

	if strings.HasPrefix(addr, "/") || strings.HasPrefix(addr, ".") {
		return "unix", addr, nil
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return "tcp", addr, nil
	}
	return "", "", fmt.Errorf("unrecognised address %q", addr)
}

// Dial connects to addr (see SplitAddress) and wraps the connection.
func Dial(ctx context.Context, addr string) (*Stream, error) {
	network, address, err := SplitAddress(addr)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewConn(conn), nil
}

// Listen opens a listener on addr (see SplitAddress).
func Listen(addr string) (net.Listener, error) {
	network, address, err := SplitAddress(addr)
	if err != nil {
		return nil, err
	}
	l, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return l, nil
}
