package transport

import (
	"context"
	"net"
	"time"

	ncerr "pavlovrcon/internal/errors"
)

// TCPDialer connects straight to the server.
type TCPDialer struct {
	Timeout time.Duration

	// KeepAlive is passed to net.Dialer.  Zero keeps the system
	// default and a negative value disables keep-alive probes.
	KeepAlive time.Duration
}

// Dial connects to address over TCP.  Failures are returned as
// *errors.NetworkError.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, ncerr.Wrap("dial", address, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// Commands are small and latency matters more than batching.
		tc.SetNoDelay(true) //nolint:errcheck
	}
	return conn, nil
}

// Close is a no-op.
func (d *TCPDialer) Close() error { return nil }
