// Package config defines the runtime configuration for pavrcon and the
// helpers that fill it from a TOML file and the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "pavlovrcon/internal/errors"
	"pavlovrcon/tunnel"
)

// Config holds every tuneable for one pavrcon run.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Host string
	Port int

	// Password is the plaintext RCON password unless PasswordHashed is
	// set, in which case it is already the MD5 hex digest.
	Password       string
	PasswordFile   string
	PasswordHashed bool

	Timeout           time.Duration
	HandshakeTimeout  time.Duration
	ReconnectDelay    time.Duration
	AuthFailureMarker string
	NoDNS             bool

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw [user@]host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string
	SSHKeepAlive   time.Duration

	// ── Command ──────────────────────────────────────────────────────
	// Command is the command line to run once.  Empty means console
	// mode: read commands from stdin.
	Command string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Raw     bool // print responses as received instead of indented
	Stats   bool // print counters as JSON on exit
}

// SSH returns the tunnel configuration, or nil when no tunnel is set.
func (c *Config) SSH() *tunnel.SSHConfig {
	if !c.TunnelEnabled {
		return nil
	}
	return &tunnel.SSHConfig{
		User:          c.TunnelUser,
		Host:          c.TunnelHost,
		Port:          c.TunnelPort,
		KeyPath:       c.SSHKeyPath,
		PromptPass:    c.SSHPassword,
		UseAgent:      c.UseSSHAgent,
		StrictHostKey: c.StrictHostKey,
		KnownHosts:    c.KnownHostsPath,
		ConnTimeout:   DefaultConnTimeout,
		KeepAlive:     c.SSHKeepAlive,
	}
}

// ApplyTunnelSpec parses TunnelSpec into the Tunnel* fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &ncerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: err.Error()}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ReadPasswordFile loads Password from PasswordFile when one is set.
// Surrounding whitespace, including the trailing newline, is dropped.
func (c *Config) ReadPasswordFile() error {
	if c.PasswordFile == "" {
		return nil
	}
	b, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return &ncerr.ConfigError{
			Field:   "password-file",
			Value:   c.PasswordFile,
			Message: err.Error(),
		}
	}
	c.Password = strings.TrimSpace(string(b))
	return nil
}

// ParsePort accepts a decimal port number in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "steam@game01.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q, expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is complete and consistent.
// Failures are *errors.ConfigError values.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &ncerr.ConfigError{
			Field:   "host",
			Message: "server host is required",
			Hint:    "pavrcon [options] <host> <port> [command...]",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("Pavlov servers default to %d", DefaultPort),
		}
	}
	if c.PasswordHashed && !isMD5Hex(c.Password) {
		return &ncerr.ConfigError{
			Field:   "password-hashed",
			Message: "password is not a 32-character hex MD5 digest",
			Hint:    "drop --password-hashed to send the password's hash instead",
		}
	}
	if c.HandshakeTimeout <= 0 {
		return &ncerr.ConfigError{Field: "handshake-timeout", Value: c.HandshakeTimeout, Message: "must be positive"}
	}
	if c.ReconnectDelay < 0 {
		return &ncerr.ConfigError{Field: "reconnect-delay", Value: c.ReconnectDelay, Message: "must not be negative"}
	}
	if strings.TrimSpace(c.AuthFailureMarker) == "" {
		return &ncerr.ConfigError{Field: "auth-failure-marker", Message: "must not be empty"}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: "tunnel host is required"}
	}
	if c.TunnelEnabled && c.TunnelUser == "" {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: "tunnel user is required",
			Hint:    "use user@host, e.g. -T steam@game01",
		}
	}
	return nil
}

func isMD5Hex(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
