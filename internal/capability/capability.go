// Package capability defines what pavrcon does once a client is
// connected.  Each Capability is one behaviour (run a single command,
// drive an interactive console) and works against an Invoker rather
// than a concrete client, which keeps it testable without a server.
package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"pavlovrcon/rcon"
)

// Invoker sends one command and waits for its tagged response.
// *rcon.Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, commandLine, tag string) (rcon.Message, error)
}

// Capability runs against a connected client.
type Capability interface {
	// Handle blocks until the behaviour is done or ctx is cancelled.
	Handle(ctx context.Context, c Invoker) error
}

// printMessage writes m to w, indented unless raw is set.
func printMessage(w io.Writer, m rcon.Message, raw bool) error {
	body := []byte(m.Raw)
	if !raw {
		var buf bytes.Buffer
		if err := json.Indent(&buf, m.Raw, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", body)
	return err
}
