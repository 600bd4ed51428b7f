package rcon

import (
	"errors"
	"fmt"
	"time"

	ncerr "pavlovrcon/internal/errors"
	"pavlovrcon/internal/retry"
	"pavlovrcon/internal/session"
)

// supervise owns the reader goroutine.  It serves sess until the
// connection fails, then replaces it with a freshly dialled and
// authenticated session, forever, until the client is closed or the
// server rejects the password.
func (c *Client) supervise(sess *session.Session, a *ack) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		c.supervising = false
		c.mu.Unlock()
	}()

	for {
		c.activate(sess, a)
		err := sess.Serve(c.dispatch, c.report)

		c.active.Store(false)
		sess.Close()
		if c.ctx.Err() != nil {
			return
		}
		sess.Logger.Warn("rcon: connection to %s lost: %v", c.addr, err)

		sess, a, err = c.reconnect()
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.Error("rcon: giving up on %s: %v", c.addr, err)
				c.report(err)
			}
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			sess.Close()
			return
		}
		c.install(sess)
		c.mu.Unlock()
	}
}

// reconnect dials until a handshake succeeds.  The first attempt is
// immediate and later ones are spaced by ReconnectDelay.  Only a
// rejected password or Close stops it.
func (c *Client) reconnect() (*session.Session, *ack, error) {
	c.mu.Lock()
	c.sess = nil
	c.mu.Unlock()
	c.metrics.Reconnect()

	var (
		sess *session.Session
		a    *ack
	)
	b := retry.Constant(c.cfg.ReconnectDelay)
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		// Refused or reset dials are routine while a server restarts.
		log := c.logger.Warn
		if ncerr.IsRetryable(err) {
			log = c.logger.Verbose
		}
		log("rcon: reconnect attempt %d to %s failed: %v (next in %s)",
			attempt, c.addr, err, wait)
		c.report(fmt.Errorf("reconnect attempt %d: %w", attempt, err))
	}

	err := b.Do(c.ctx, func(attempt int) error {
		s, got, err := c.open(c.ctx)
		if errors.Is(err, ErrInvalidPassword) {
			return retry.Permanent(err)
		}
		if err != nil {
			return err
		}
		sess, a = s, got
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	c.logger.Info("rcon: reconnected to %s", c.addr)
	return sess, a, nil
}
