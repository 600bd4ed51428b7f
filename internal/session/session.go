// Package session owns one connection to an RCON server, from dial to
// teardown.  A reconnect never reuses a Session: each new socket gets a
// fresh one with an empty decode buffer, so bytes from a dead
// connection can never be spliced onto a live one.
package session

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	ncerr "pavlovrcon/internal/errors"
	"pavlovrcon/internal/frame"
	"pavlovrcon/internal/metrics"
	"pavlovrcon/util"
)

// Session binds a connection to its frame decoder.
type Session struct {
	// ID identifies the connection in logs.
	ID      string
	Conn    net.Conn
	Decoder *frame.Decoder
	Logger  *util.Logger
	Metrics *metrics.Collector

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	errMu     sync.Mutex
	err       error
}

// New wraps conn in a Session.  logger and m may be nil.
func New(conn net.Conn, logger *util.Logger, m *metrics.Collector) *Session {
	id := uuid.NewString()[:8]
	m.ConnectionOpened()
	return &Session{
		ID:      id,
		Conn:    conn,
		Decoder: frame.NewDecoder(),
		Logger:  logger.With("conn", id),
		Metrics: m,
		done:    make(chan struct{}),
	}
}

// RemoteAddr returns the server address as a string.
func (s *Session) RemoteAddr() string {
	if a := s.Conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

// Read returns the next chunk from the socket.  The returned slice is
// owned by the caller.
func (s *Session) Read() ([]byte, error) {
	chunk, err := s.read()
	if err != nil {
		return nil, s.fail("read", err)
	}
	return chunk, nil
}

// ReadBefore is Read with a read deadline of t.  Running into the
// deadline returns os.ErrDeadlineExceeded and leaves the session open.
func (s *Session) ReadBefore(t time.Time) ([]byte, error) {
	if err := s.Conn.SetReadDeadline(t); err != nil {
		return nil, s.fail("read", err)
	}
	chunk, err := s.read()
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, err
	}
	if err != nil {
		return nil, s.fail("read", err)
	}
	return chunk, nil
}

func (s *Session) read() ([]byte, error) {
	bp := util.GetBuf()
	defer util.PutBuf(bp)

	n, err := s.Conn.Read(*bp)
	if n > 0 {
		s.Metrics.BytesReceived(int64(n))
		s.Logger.Debug("read %d bytes", n)
		chunk := make([]byte, n)
		copy(chunk, (*bp)[:n])
		return chunk, nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return nil, err
}

// Write sends p in full.  Concurrent writers are serialised so two
// commands never interleave on the wire.
func (s *Session) Write(p []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	n, err := s.Conn.Write(p)
	s.Metrics.BytesSent(int64(n))
	if err != nil {
		return s.fail("write", err)
	}
	return nil
}

// Deliver runs chunk through the decoder and hands every completed
// message to onMessage in stream order.  Decode failures go to onError;
// they never end the session.
func (s *Session) Deliver(chunk []byte, onMessage func(frame.Message), onError func(error)) {
	msgs, err := s.Decoder.Feed(chunk)
	if err != nil {
		s.Metrics.MalformedFrame()
		s.Logger.Warn("%v", err)
		if onError != nil {
			onError(err)
		}
	}
	for _, m := range msgs {
		onMessage(m)
	}
}

// Serve reads until the connection fails or is closed, delivering each
// chunk as it arrives.  It returns the error that ended the session.
func (s *Session) Serve(onMessage func(frame.Message), onError func(error)) error {
	for {
		chunk, err := s.Read()
		if err != nil {
			return err
		}
		s.Deliver(chunk, onMessage, onError)
	}
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the session, or nil while it is
// alive or after a clean Close.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close tears the session down.  It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.Conn.Close()
		s.Metrics.ConnectionClosed()
		close(s.done)
		s.Logger.Verbose("connection closed")
	})
	return err
}

// fail records the first transport error, closes the session and
// returns err wrapped so callers can match ErrConnectionLost.
func (s *Session) fail(op string, err error) error {
	select {
	case <-s.done:
		return ncerr.ErrClosed
	default:
	}

	wrapped := ncerr.Join(ncerr.ErrConnectionLost, ncerr.Wrap(op, s.RemoteAddr(), err))
	s.errMu.Lock()
	if s.err == nil {
		s.err = wrapped
	}
	s.errMu.Unlock()

	if !util.IsHarmless(err) {
		s.Logger.Warn("%s failed: %v", op, err)
	}
	s.Close()
	return wrapped
}
