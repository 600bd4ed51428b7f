package config

// loader.go - configuration loading from a TOML file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (LoadFromEnv)
//   3. Config file  (LoadFile)
//   4. Defaults   (defaults.go)

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigFile names the config file when --config is not given.
const EnvConfigFile = "PAVRCON_CONFIG"

// ── Config file ──────────────────────────────────────────────────────

type fileConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	Password          string `toml:"password"`
	PasswordFile      string `toml:"password_file"`
	PasswordHashed    bool   `toml:"password_hashed"`
	Timeout           string `toml:"timeout"`
	HandshakeTimeout  string `toml:"handshake_timeout"`
	ReconnectDelay    string `toml:"reconnect_delay"`
	AuthFailureMarker string `toml:"auth_failure_marker"`
	Verbose           int    `toml:"verbose"`
	Raw               bool   `toml:"raw"`

	SSH struct {
		Tunnel        string `toml:"tunnel"`
		Key           string `toml:"key"`
		Agent         bool   `toml:"agent"`
		StrictHostKey bool   `toml:"strict_hostkey"`
		KnownHosts    string `toml:"known_hosts"`
		KeepAlive     string `toml:"keepalive"`
	} `toml:"ssh"`
}

// LoadFile overlays the TOML file at path onto cfg.  Only keys present
// in the file are applied.  Durations use Go syntax ("5s", "1m30s").
//
//	host = "10.0.0.5"
//	port = 9100
//	password_file = "/etc/pavlov/rcon.pass"
//	timeout = "5s"
//
//	[ssh]
//	tunnel = "steam@game01"
func LoadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("password_file") {
		cfg.PasswordFile = strings.TrimSpace(raw.PasswordFile)
	}
	if meta.IsDefined("password_hashed") {
		cfg.PasswordHashed = raw.PasswordHashed
	}

	durations := []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"timeout", raw.Timeout, &cfg.Timeout},
		{"handshake_timeout", raw.HandshakeTimeout, &cfg.HandshakeTimeout},
		{"reconnect_delay", raw.ReconnectDelay, &cfg.ReconnectDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.val))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("auth_failure_marker") {
		cfg.AuthFailureMarker = raw.AuthFailureMarker
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}
	if meta.IsDefined("raw") {
		cfg.Raw = raw.Raw
	}

	if meta.IsDefined("ssh", "tunnel") {
		cfg.TunnelSpec = strings.TrimSpace(raw.SSH.Tunnel)
	}
	if meta.IsDefined("ssh", "key") {
		cfg.SSHKeyPath = strings.TrimSpace(raw.SSH.Key)
	}
	if meta.IsDefined("ssh", "agent") {
		cfg.UseSSHAgent = raw.SSH.Agent
	}
	if meta.IsDefined("ssh", "strict_hostkey") {
		cfg.StrictHostKey = raw.SSH.StrictHostKey
	}
	if meta.IsDefined("ssh", "known_hosts") {
		cfg.KnownHostsPath = strings.TrimSpace(raw.SSH.KnownHosts)
	}
	if meta.IsDefined("ssh", "keepalive") {
		v, err := time.ParseDuration(strings.TrimSpace(raw.SSH.KeepAlive))
		if err != nil {
			return fmt.Errorf("parse ssh.keepalive: %w", err)
		}
		cfg.SSHKeepAlive = v
	}
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the PAVRCON_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations accept Go
// syntax or a bare number of seconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  Call it after LoadFile and
// before CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("PAVRCON_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("PAVRCON_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := os.Getenv("PAVRCON_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("PAVRCON_PASSWORD_FILE"); v != "" {
		cfg.PasswordFile = v
	}
	if envBool("PAVRCON_PASSWORD_HASHED") {
		cfg.PasswordHashed = true
	}
	if v := os.Getenv("PAVRCON_AUTH_FAILURE_MARKER"); v != "" {
		cfg.AuthFailureMarker = v
	}

	for key, dst := range map[string]*time.Duration{
		"PAVRCON_TIMEOUT":           &cfg.Timeout,
		"PAVRCON_HANDSHAKE_TIMEOUT": &cfg.HandshakeTimeout,
		"PAVRCON_RECONNECT_DELAY":   &cfg.ReconnectDelay,
		"PAVRCON_SSH_KEEPALIVE":     &cfg.SSHKeepAlive,
	} {
		d, ok, err := envDuration(key)
		if err != nil {
			return err
		}
		if ok {
			*dst = d
		}
	}

	// SSH tunnel
	if v := os.Getenv("PAVRCON_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("PAVRCON_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("PAVRCON_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("PAVRCON_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("PAVRCON_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("PAVRCON_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := os.Getenv("PAVRCON_VERBOSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Verbose = n
		}
	}
	if envBool("PAVRCON_RAW") {
		cfg.Raw = true
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) (time.Duration, bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, true, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}
