package rcon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pavlovrcon/internal/bus"
	"pavlovrcon/internal/frame"
)

// Invoke writes commandLine and waits up to Config.Timeout for the
// response whose Command field equals tag.  An empty tag means
// TagOf(commandLine).
//
// If another request for the same tag is still waiting, Invoke queues
// behind it; the time spent queued counts against the timeout.  A lost
// connection is not reported separately: the request times out with
// ErrNoResponse.
func (c *Client) Invoke(ctx context.Context, commandLine, tag string) (Message, error) {
	return c.InvokeTimeout(ctx, commandLine, tag, c.cfg.Timeout)
}

// InvokeTimeout is Invoke with an explicit budget.  A budget of zero or
// less fails with ErrNoResponse immediately and writes nothing.
func (c *Client) InvokeTimeout(ctx context.Context, commandLine, tag string, budget time.Duration) (Message, error) {
	if budget <= 0 {
		return Message{}, fmt.Errorf("%w: no time budget for %q", ErrNoResponse, commandLine)
	}
	if tag == "" {
		tag = TagOf(commandLine)
	}

	c.mu.Lock()
	closed, started := c.closed, c.supervising || c.sess != nil
	c.mu.Unlock()
	if closed {
		return Message{}, ErrClosed
	}
	if !started {
		return Message{}, ErrNotConnected
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()
	expires := time.Now().Add(budget)

	result := make(chan frame.Message, 1)
	reg, err := c.register(ctx, tag, timer.C, func(m frame.Message) { result <- m })
	if err != nil {
		return Message{}, c.invokeErr(err, tag, budget)
	}
	defer reg.Cancel()

	// Backstop so the listener cannot outlive its budget even if this
	// goroutine is never scheduled again.
	cleanup := time.AfterFunc(time.Until(expires), func() { reg.Cancel() })
	defer cleanup.Stop()

	if sess := c.current(); sess != nil && c.Connected() {
		if err := sess.Write([]byte(commandLine)); err != nil {
			// The reader sees the same failure and reconnects.
			sess.Logger.Verbose("rcon: write %q: %v", tag, err)
		} else {
			c.metrics.CommandSent()
			sess.Logger.Debug("rcon: sent %q", commandLine)
		}
	} else {
		c.logger.Verbose("rcon: not connected, %q will time out unless the link returns", tag)
	}

	select {
	case m := <-result:
		return m, nil
	case <-timer.C:
		return Message{}, c.invokeErr(errTimeout, tag, budget)
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// InvokeInto is Invoke followed by decoding the full response into v.
func (c *Client) InvokeInto(ctx context.Context, commandLine, tag string, v interface{}) error {
	m, err := c.Invoke(ctx, commandLine, tag)
	if err != nil {
		return err
	}
	return m.Decode(v)
}

var errTimeout = errors.New("timed out")

// register installs fn for tag, waiting for a previous request on the
// same tag to release it first.
func (c *Client) register(ctx context.Context, tag string, expired <-chan time.Time, fn bus.Handler) (*bus.Registration, error) {
	for {
		reg, err := c.bus.RegisterOnce(tag, fn)
		if err == nil {
			return reg, nil
		}
		c.logger.Debug("rcon: %q is busy, queueing", tag)
		select {
		case <-c.bus.Released(tag):
		case <-expired:
			return nil, errTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) invokeErr(err error, tag string, budget time.Duration) error {
	if err != errTimeout {
		return err
	}
	c.metrics.Timeout()
	return fmt.Errorf("%w: no %q response within %s", ErrNoResponse, tag, budget)
}
