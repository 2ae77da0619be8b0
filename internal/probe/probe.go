// Package probe determines whether a managed server is reachable by
// attempting a TCP handshake against its configured address. A successful
// connection is closed immediately; every failure mode (refused, timed
// out, unresolvable, canceled) collapses to "offline".
package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Address is a (host, port) pair derived from a server's properties
// document. It is computed once per command invocation and never persisted.
type Address struct {
	Host string
	Port int
}

// String returns the address in dial form, e.g. "127.0.0.1:25565".
func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Prober reports whether an address is accepting TCP connections.
// The supervisor depends on this interface so tests can script
// online/offline transitions without opening sockets.
type Prober interface {
	IsOnline(ctx context.Context, addr Address) bool
}

// TCP is the production Prober. The zero value uses DefaultTimeout.
type TCP struct {
	// Timeout bounds each connection attempt. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds a single probe attempt when none is configured.
const DefaultTimeout = time.Second

// IsOnline attempts a TCP connection to addr. It returns true and closes
// the connection if the handshake succeeds within the timeout, false on
// any error. It never returns an error: transient connectivity failures
// are expected states, not faults.
func (p TCP) IsOnline(ctx context.Context, addr Address) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
