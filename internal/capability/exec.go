package capability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"pavlovrcon/rcon"
)

// Exec sends a single command and prints the response.
type Exec struct {
	Command string
	Raw     bool

	// Out defaults to os.Stdout.
	Out io.Writer
}

// Handle invokes Command once.  A response with Successful=false is
// printed and then reported as an error so the process exits non-zero.
func (e *Exec) Handle(ctx context.Context, c Invoker) error {
	line := strings.TrimSpace(e.Command)
	if line == "" {
		return fmt.Errorf("no command to send")
	}

	m, err := c.Invoke(ctx, line, rcon.TagOf(line))
	if err != nil {
		return err
	}
	if err := printMessage(e.out(), m, e.Raw); err != nil {
		return err
	}
	if !m.Successful {
		return fmt.Errorf("server reported %q as unsuccessful", m.Command)
	}
	return nil
}

func (e *Exec) out() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return os.Stdout
}
