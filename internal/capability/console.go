package capability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pavlovrcon/rcon"
	"pavlovrcon/util"
)

// Console reads command lines from In and prints each response to Out.
// Requests that fail are reported to ErrOut and the console moves on
// to the next line; only a closed client ends it early.
type Console struct {
	Raw bool

	// In, Out and ErrOut default to the process's standard streams.
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// Prompt is written to ErrOut before each line when non-empty.
	Prompt string
}

// Handle runs until In is exhausted or ctx is cancelled.
func (k *Console) Handle(ctx context.Context, c Invoker) error {
	in, out, errOut := k.streams()
	k.prompt(errOut)

	err := util.ScanLines(ctx, in, func(line string) error {
		defer k.prompt(errOut)

		if strings.HasPrefix(line, "#") {
			return nil
		}
		m, err := c.Invoke(ctx, line, rcon.TagOf(line))
		switch {
		case errors.Is(err, rcon.ErrClosed):
			return err
		case err != nil:
			fmt.Fprintf(errOut, "%s: %v\n", rcon.TagOf(line), err)
			return nil
		}
		if err := printMessage(out, m, k.Raw); err != nil {
			return err
		}
		if !m.Successful {
			fmt.Fprintf(errOut, "%s: unsuccessful\n", m.Command)
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (k *Console) prompt(w io.Writer) {
	if k.Prompt != "" {
		fmt.Fprint(w, k.Prompt)
	}
}

func (k *Console) streams() (io.Reader, io.Writer, io.Writer) {
	in, out, errOut := k.In, k.Out, k.ErrOut
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return in, out, errOut
}
