package util

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
)

// DefaultBufSize is the standard buffer size for network reads (32 KiB).
const DefaultBufSize = 32 * 1024

// ScanLines calls fn for every non-blank line read from r until EOF,
// an error from fn, or context cancellation.  Lines are trimmed of
// surrounding whitespace.
func ScanLines(ctx context.Context, r io.Reader, fn func(line string) error) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
					return ctx.Err()
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := fn(line); err != nil {
				return err
			}
		}
	}
}

// IsHarmless returns true for errors that are expected when a
// connection is closed on purpose.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
