package core

import (
	"context"

	"pavlovrcon/internal/capability"
	"pavlovrcon/rcon"
	"pavlovrcon/util"
)

// ConnectMode connects an rcon.Client and runs a capability on it.
type ConnectMode struct {
	Client     rcon.Config
	Capability capability.Capability
	Logger     *util.Logger
}

// Run connects, hands the client to the capability, and closes the
// client when the capability returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	client := rcon.New(m.Client)
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return err
	}
	m.Logger.Verbose("connected to %s", client.Addr())

	return m.Capability.Handle(ctx, client)
}
