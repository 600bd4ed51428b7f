// Package transport opens the byte stream an RCON session runs over.
// Dialers decide how the server is reached, directly or through an SSH
// gateway, and know nothing about the protocol spoken on top.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound connections to the RCON port.
type Dialer interface {
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases long-lived resources such as an SSH session.
	// Stateless dialers return nil.
	Close() error
}
