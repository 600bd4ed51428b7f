package core

import (
	"os"

	"pavlovrcon/config"
	"pavlovrcon/internal/capability"
	"pavlovrcon/internal/metrics"
	"pavlovrcon/internal/transport"
	"pavlovrcon/rcon"
	"pavlovrcon/util"
)

// Build constructs the Mode for cfg.  cfg must already be validated
// and carry the password.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if _, err := util.ResolveAddr(cfg.Host, cfg.Port, cfg.NoDNS); err != nil {
		return nil, err
	}

	return &ConnectMode{
		Client:     clientConfig(cfg, logger, m),
		Capability: buildCapability(cfg),
		Logger:     logger,
	}, nil
}

// clientConfig maps the CLI configuration onto rcon.Config.
func clientConfig(cfg *config.Config, logger *util.Logger, m *metrics.Collector) rcon.Config {
	timeout := cfg.Timeout
	if timeout <= 0 {
		// rcon treats zero as "use the default"; a negative budget is
		// its fail-fast mode.
		timeout = -1
	}

	return rcon.Config{
		Host:              cfg.Host,
		Port:              cfg.Port,
		Password:          cfg.Password,
		PasswordHashed:    cfg.PasswordHashed,
		Timeout:           timeout,
		HandshakeTimeout:  cfg.HandshakeTimeout,
		ReconnectDelay:    cfg.ReconnectDelay,
		AuthFailureMarker: cfg.AuthFailureMarker,
		Dialer:            buildDialer(cfg, logger),
		Logger:            logger,
		Metrics:           m,
		OnAuthenticated: func(payload string) {
			logger.Verbose("server: %s", payload)
		},
		OnError: func(err error) {
			logger.Warn("%v", err)
		},
	}
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if ssh := cfg.SSH(); ssh != nil {
		return transport.NewSSHDialer(ssh, logger)
	}
	return &transport.TCPDialer{
		Timeout:   cfg.HandshakeTimeout,
		KeepAlive: config.DefaultTCPKeepAlive,
	}
}

// buildCapability picks exec mode when a command was given on the
// command line and the interactive console otherwise.
func buildCapability(cfg *config.Config) capability.Capability {
	if cfg.Command != "" {
		return &capability.Exec{Command: cfg.Command, Raw: cfg.Raw}
	}
	k := &capability.Console{Raw: cfg.Raw}
	if util.IsTerminal(os.Stdin) {
		k.Prompt = "> "
	}
	return k
}
