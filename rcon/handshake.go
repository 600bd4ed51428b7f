package rcon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	ncerr "pavlovrcon/internal/errors"
	"pavlovrcon/internal/session"
)

const (
	authMarker = "Authenticated"

	// ackSettle is how long an unterminated acknowledgement line may
	// sit idle before it is taken as complete.
	ackSettle = 100 * time.Millisecond

	// maxHandshakeBytes bounds what is buffered while waiting for the
	// acknowledgement line.
	maxHandshakeBytes = 64 << 10
)

// ack is the outcome of a successful handshake.
type ack struct {
	// payload is the acknowledgement line as received.
	payload string
	// received is everything read during the handshake.  It may
	// already hold the first JSON responses.
	received []byte
}

// open dials the server and runs the handshake on the new connection.
// The returned session is authenticated but not yet installed.
func (c *Client) open(ctx context.Context) (*session.Session, *ack, error) {
	c.logger.Verbose("rcon: connecting to %s", c.addr)

	conn, err := c.dialer.Dial(ctx, "tcp", c.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	sess := session.New(conn, c.logger, c.metrics)
	if c.cfg.MaxFrameSize > 0 {
		sess.Decoder.MaxFrameSize = c.cfg.MaxFrameSize
	}

	a, err := c.handshake(ctx, sess)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}
	sess.Logger.Verbose("rcon: authenticated to %s", c.addr)
	return sess, a, nil
}

// handshake sends the credential and waits for the acknowledgement.
// The acknowledgement is plain text, so it is examined before any
// bytes reach the JSON decoder.
func (c *Client) handshake(ctx context.Context, sess *session.Session) (*ack, error) {
	deadline := time.Now().Add(c.cfg.HandshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := sess.Conn.SetDeadline(deadline); err != nil {
		return nil, ncerr.Wrap("handshake", c.addr, err)
	}
	defer sess.Conn.SetDeadline(time.Time{}) //nolint:errcheck

	// Unblock the read below if ctx ends first.
	stop := context.AfterFunc(ctx, func() {
		sess.Conn.SetDeadline(time.Now()) //nolint:errcheck
	})
	defer stop()

	sess.Logger.Debug("rcon: sending credential=<redacted>")
	if err := sess.Write([]byte(c.credential)); err != nil {
		return nil, c.handshakeErr(ctx, err)
	}

	var (
		received []byte
		line     string
		settling bool
	)
	for {
		var (
			chunk []byte
			err   error
		)
		if settling {
			// The line may continue in the next read, so wait briefly
			// for the rest before judging it.
			by := time.Now().Add(ackSettle)
			if by.After(deadline) {
				by = deadline
			}
			chunk, err = sess.ReadBefore(by)
			if errors.Is(err, os.ErrDeadlineExceeded) && ctx.Err() == nil {
				return c.acknowledge(sess, line, received)
			}
		} else {
			chunk, err = sess.Read()
		}
		if err != nil {
			return nil, c.handshakeErr(ctx, err)
		}
		received = append(received, chunk...)

		var found, complete bool
		line, found, complete = authLine(received)
		switch {
		case !found:
			if len(received) > maxHandshakeBytes {
				return nil, ncerr.Wrap("handshake", c.addr,
					fmt.Errorf("no acknowledgement in the first %d bytes", len(received)))
			}
		case !complete:
			settling = true
		default:
			return c.acknowledge(sess, line, received)
		}
	}
}

// acknowledge judges the acknowledgement line.
func (c *Client) acknowledge(sess *session.Session, line string, received []byte) (*ack, error) {
	sess.Logger.Debug("rcon: server replied %q", line)
	if strings.Contains(strings.TrimPrefix(line, authMarker), c.cfg.AuthFailureMarker) {
		return nil, fmt.Errorf("%w (server replied %q)", ErrInvalidPassword, line)
	}
	return &ack{payload: line, received: received}, nil
}

// handshakeErr prefers the context's error when ctx ended the wait.
func (c *Client) handshakeErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("handshake with %s: %w", c.addr, ctx.Err())
	}
	return fmt.Errorf("handshake with %s: %w", c.addr, err)
}

// authLine returns the acknowledgement line if b contains one ahead of
// any JSON.  The line runs from the marker to the next newline or
// opening brace; complete reports whether either has arrived.
func authLine(b []byte) (line string, found, complete bool) {
	text := b
	if i := bytes.IndexByte(text, '{'); i >= 0 {
		text = text[:i]
		complete = true
	}
	start := bytes.Index(text, []byte(authMarker))
	if start < 0 {
		return "", false, false
	}
	rest := text[start:]
	if end := bytes.IndexAny(rest, "\r\n"); end >= 0 {
		rest = rest[:end]
		complete = true
	}
	return strings.TrimSpace(string(rest)), true, complete
}
