package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"pavlovrcon/tunnel"
	"pavlovrcon/util"
)

// SSHDialer forwards connections through an SSH gateway.  The gateway
// session is opened lazily on the first Dial and shared by every
// connection made afterwards, including reconnects.
type SSHDialer struct {
	tunnel tunnel.Tunnel
	logger *util.Logger
	gw     string

	mu        sync.Mutex
	connected bool
}

// NewSSHDialer returns a dialer backed by an [tunnel.SSHTunnel].
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	return newSSHDialer(tunnel.NewSSHTunnel(cfg, logger),
		fmt.Sprintf("%s@%s:%d", cfg.User, cfg.Host, cfg.Port), logger)
}

func newSSHDialer(t tunnel.Tunnel, gw string, logger *util.Logger) *SSHDialer {
	return &SSHDialer{tunnel: t, gw: gw, logger: logger}
}

func (d *SSHDialer) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}
	d.logger.Verbose("opening SSH tunnel via %s", d.gw)
	if err := d.tunnel.Connect(ctx); err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}
	d.connected = true
	d.logger.Verbose("SSH tunnel established")
	return nil
}

// Dial connects to address on the far side of the gateway.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close tears the gateway session down.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}
	d.connected = false
	return d.tunnel.Close()
}
