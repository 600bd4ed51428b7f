package tunnel

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	ncerr "pavlovrcon/internal/errors"
	"pavlovrcon/util"
)

// SSHConfig describes the gateway an RCON session is tunnelled through.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	Password      string // used before prompting when set
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration

	// KeepAlive is the interval between keepalive@openssh.com probes.
	// Zero disables them.
	KeepAlive time.Duration

	// Prompt reads a secret from the terminal.  Nil means
	// ReadSecret on stdin.
	Prompt Prompter
}

// SSHTunnel implements [Tunnel].  A dropped SSH session is
// re-established by the next Dial, so a reconnecting RCON client does
// not have to manage the gateway itself.
type SSHTunnel struct {
	config *SSHConfig
	logger *util.Logger

	mu     sync.RWMutex
	client *ssh.Client
	alive  bool
	closed bool
}

// NewSSHTunnel returns a tunnel that is ready to [SSHTunnel.Connect].
func NewSSHTunnel(cfg *SSHConfig, logger *util.Logger) *SSHTunnel {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 15 * time.Second
	}
	return &SSHTunnel{config: cfg, logger: logger}
}

func (t *SSHTunnel) addr() string {
	return net.JoinHostPort(t.config.Host, fmt.Sprint(t.config.Port))
}

// Connect dials the gateway and completes the SSH handshake.
func (t *SSHTunnel) Connect(ctx context.Context) error {
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ncerr.ErrClosed
	}

	client, err := t.dial(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.client != nil {
		t.client.Close()
	}
	t.client = client
	t.alive = true
	t.mu.Unlock()

	go t.monitor(client)
	if t.config.KeepAlive > 0 {
		go t.keepalive(client)
	}
	return nil
}

func (t *SSHTunnel) dial(ctx context.Context) (*ssh.Client, error) {
	methods, err := BuildAuthMethods(t.config)
	if err != nil {
		return nil, ncerr.WrapSSH("auth", t.config.Host, t.config.Port, err)
	}
	hk, err := hostKeyCallback(t.config)
	if err != nil {
		return nil, ncerr.WrapSSH("hostkey", t.config.Host, t.config.Port, err)
	}

	addr := t.addr()
	t.logger.Debug("ssh: dialing %s as %s", addr, t.config.User)

	dialer := net.Dialer{Timeout: t.config.ConnTimeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, ncerr.Wrap("dial", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, &ssh.ClientConfig{
		User:            t.config.User,
		Auth:            methods,
		HostKeyCallback: hk,
		Timeout:         t.config.ConnTimeout,
	})
	if err != nil {
		tcpConn.Close()
		return nil, ncerr.WrapSSH("handshake", t.config.Host, t.config.Port, err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// Dial forwards a connection to address through the gateway,
// reconnecting the SSH session first if it has dropped.
func (t *SSHTunnel) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	t.mu.RLock()
	client, alive, closed := t.client, t.alive, t.closed
	t.mu.RUnlock()

	if closed {
		return nil, ncerr.ErrClosed
	}
	if !alive || client == nil {
		t.logger.Verbose("ssh: session to %s is down, reconnecting", t.addr())
		if err := t.Connect(ctx); err != nil {
			return nil, err
		}
		t.mu.RLock()
		client = t.client
		t.mu.RUnlock()
	}

	t.logger.Debug("ssh: forwarding %s %s", network, address)
	conn, err := client.Dial(network, address)
	if err != nil {
		return nil, ncerr.Wrap("dial", address, fmt.Errorf("via ssh %s: %w", t.addr(), err))
	}
	return conn, nil
}

// Close shuts the SSH session down.  A closed tunnel cannot be reused.
func (t *SSHTunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.alive = false
	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}

// IsAlive reports whether the SSH session is up.
func (t *SSHTunnel) IsAlive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.alive
}

// monitor waits for client to go away and marks the tunnel down, unless
// a newer client has replaced it in the meantime.
func (t *SSHTunnel) monitor(client *ssh.Client) {
	err := client.Wait()

	t.mu.Lock()
	if t.client == client {
		t.alive = false
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Verbose("ssh: session closed: %v", err)
	} else {
		t.logger.Verbose("ssh: session closed")
	}
}

// keepalive probes the gateway so a half-dead session is noticed before
// the next RCON redial needs it.
func (t *SSHTunnel) keepalive(client *ssh.Client) {
	ticker := time.NewTicker(t.config.KeepAlive)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.RLock()
		current := t.client == client && t.alive
		t.mu.RUnlock()
		if !current {
			return
		}
		if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
			t.logger.Warn("ssh: keepalive failed: %v", err)
			client.Close()
			return
		}
		t.logger.Debug("ssh: keepalive ok")
	}
}
