package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// Every tuneable default lives here so the CLI flags, the config file
// and the environment loader agree on them.

const (
	// DefaultPort is the RCON port a Pavlov server listens on unless
	// RconSettings.txt says otherwise.
	DefaultPort = 9100

	// DefaultTimeout is how long one command waits for its response.
	DefaultTimeout = 5 * time.Second

	// DefaultHandshakeTimeout bounds dial plus authentication.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultReconnectDelay spaces failed reconnect attempts.
	DefaultReconnectDelay = 2 * time.Second

	// DefaultAuthFailureMarker marks a rejected password on the
	// "Authenticated" line.
	DefaultAuthFailureMarker = "1"

	// DefaultTCPKeepAlive is the keep-alive probe interval on the RCON
	// connection.  Pavlov drops idle RCON clients silently, so probes
	// let a dead link surface as a read error.
	DefaultTCPKeepAlive = 30 * time.Second

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultSSHKeepAlive is the SSH keepalive interval.
	DefaultSSHKeepAlive = 30 * time.Second

	// DefaultConnTimeout is the SSH gateway connection timeout.
	DefaultConnTimeout = 15 * time.Second
)

// Default returns a Config populated with the defaults above.
func Default() *Config {
	return &Config{
		Port:              DefaultPort,
		Timeout:           DefaultTimeout,
		HandshakeTimeout:  DefaultHandshakeTimeout,
		ReconnectDelay:    DefaultReconnectDelay,
		AuthFailureMarker: DefaultAuthFailureMarker,
		SSHKeepAlive:      DefaultSSHKeepAlive,
		Verbose:           1,
	}
}
