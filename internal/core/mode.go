// Package core is the orchestration layer.  It turns a Config into a
// connected rcon.Client plus the capability to run against it.
//
// Architecture layers (bottom → top):
//
//	frame, bus  →  session  →  rcon  →  capability  →  core  →  cmd (CLI)
//
// Build is the single dispatch point cmd.Execute goes through.
package core

import "context"

// Mode is one complete run of pavrcon, from dialing the server to
// closing the client.
type Mode interface {
	Run(ctx context.Context) error
}
