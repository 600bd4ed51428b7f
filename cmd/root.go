// Package cmd wires up the CLI flags and dispatches to the core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"pavlovrcon/config"
	"pavlovrcon/internal/core"
	"pavlovrcon/internal/metrics"
	"pavlovrcon/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X pavlovrcon/cmd.version=1.1.0"
var version = "1.0.0" //nolint:gochecknoglobals

// stdout is where --stats and --dry-run write.  Tests replace it.
var stdout io.Writer = os.Stdout //nolint:gochecknoglobals

// Execute parses args and runs one pavrcon session.
//
// Settings are layered defaults, then the config file, then PAVRCON_*
// environment variables, then flags.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()

	if path := configPath(args); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return err
		}
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		return err
	}

	fs := flag.NewFlagSet("pavrcon", flag.ContinueOnError)

	// ── server ───────────────────────────────────────────────────
	var password, configFile string
	fs.StringVar(&configFile, "config", "", "TOML config file (env "+config.EnvConfigFile+")")
	fs.StringVarP(&password, "password", "P", "", "RCON password")
	fs.StringVar(&cfg.PasswordFile, "password-file", cfg.PasswordFile, "Read the RCON password from a file")
	fs.BoolVar(&cfg.PasswordHashed, "password-hashed", cfg.PasswordHashed, "Password is already an MD5 hex digest")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "n", cfg.NoDNS, "Numeric-only, no DNS resolution")

	// ── timing ───────────────────────────────────────────────────
	fs.DurationVarP(&cfg.Timeout, "timeout", "w", cfg.Timeout, "Response timeout per command (0 fails fast)")
	fs.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "Dial and authentication timeout")
	fs.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "Pause between reconnect attempts")
	fs.StringVar(&cfg.AuthFailureMarker, "auth-failure-marker", cfg.AuthFailureMarker, "Text on the Authenticated line that means rejected")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")
	fs.DurationVar(&cfg.SSHKeepAlive, "ssh-keepalive", cfg.SSHKeepAlive, "SSH keepalive interval (0 disables)")

	// ── output ───────────────────────────────────────────────────
	var verbose int
	var quiet bool
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&quiet, "quiet", "q", false, "Only print responses and errors")
	fs.BoolVar(&cfg.Raw, "raw", cfg.Raw, "Print responses exactly as received")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print session statistics as JSON on exit")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "pavrcon %s\n", version)
		return nil
	}

	if fs.Changed("password") {
		cfg.Password = password
	}
	switch {
	case quiet:
		cfg.Verbose = 0
	case verbose > 0:
		cfg.Verbose = 1 + verbose
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}
	if cfg.Password == "" {
		if err := cfg.ReadPasswordFile(); err != nil {
			return err
		}
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(stdout, "configuration ok: %s\n", util.FormatAddr(cfg.Host, cfg.Port))
		return nil
	}

	if cfg.Password == "" {
		secret, err := util.ReadSecret("RCON password: ")
		if err != nil {
			return fmt.Errorf("no RCON password given (use --password, --password-file or PAVRCON_PASSWORD): %w", err)
		}
		cfg.Password = string(secret)
	}

	// ── run ──────────────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	m := metrics.New()

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}
	err = mode.Run(ctx)

	if cfg.Stats {
		fmt.Fprintln(stdout, m.JSON())
	}
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath finds --config ahead of the real parse, since the file has
// to be loaded before flags are layered over it.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(config.EnvConfigFile)
}

// parsePositional reads <host> <port> [command ...].  Host and port may
// be omitted when the config file or environment provides them.
func parsePositional(cfg *config.Config, remaining []string) error {
	if len(remaining) == 0 {
		return nil
	}
	cfg.Host = remaining[0]

	if len(remaining) < 2 {
		return nil
	}
	port, err := config.ParsePort(remaining[1])
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	cfg.Port = port

	if len(remaining) > 2 {
		cfg.Command = strings.Join(remaining[2:], " ")
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `pavrcon - Pavlov VR RCON client v%s

Sends commands to a Pavlov dedicated server over RCON and prints the
JSON responses.  Without a command, reads commands from stdin.

Usage:
  pavrcon [options] <host> <port> [command...]

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  pavrcon -P secret 10.0.0.5 9100 ServerInfo          One command
  pavrcon -P secret 10.0.0.5 9100                     Interactive console
  pavrcon -T steam@game01 127.0.0.1 9100 RefreshList  Through an SSH tunnel
  printf 'ServerInfo\nRotateMap\n' | pavrcon 10.0.0.5 9100
`)
}
