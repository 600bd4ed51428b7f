// Package tunnel reaches RCON ports that are only exposed on a game
// host's loopback interface by forwarding the connection through an SSH
// gateway, using golang.org/x/crypto/ssh.
package tunnel

import (
	"context"
	"net"
)

// Tunnel is an encrypted channel that RCON connections can be forwarded
// through.
type Tunnel interface {
	Connect(ctx context.Context) error

	// Dial opens a connection to address on the far side of the tunnel.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	Close() error
	IsAlive() bool
}
