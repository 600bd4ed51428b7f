package rcon

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"pavlovrcon/internal/bus"
	"pavlovrcon/internal/frame"
	"pavlovrcon/internal/metrics"
	"pavlovrcon/internal/session"
	"pavlovrcon/internal/transport"
	"pavlovrcon/util"
)

// Message is one decoded server response.  Command and Successful are
// always present; the rest of the object is kept in Raw and can be
// decoded with Message.Decode.
type Message = frame.Message

// Defaults applied by New when the matching Config field is zero.
const (
	DefaultTimeout           = 5 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultReconnectDelay    = 2 * time.Second
	DefaultAuthFailureMarker = "1"
)

// Config configures a Client.
type Config struct {
	Host string
	Port int

	// Password is the plaintext RCON password, or its MD5 hex digest
	// when PasswordHashed is set.
	Password       string
	PasswordHashed bool

	// Timeout is the response budget Invoke gives every command.  Zero
	// means DefaultTimeout, not "no budget": a caller that wants every
	// request to fail fast with ErrNoResponse, without writing
	// anything, must set a negative value.  The pavrcon "timeout"
	// setting maps its own 0 to -1 for that reason.
	Timeout time.Duration

	// HandshakeTimeout bounds the wait for the "Authenticated" line.
	HandshakeTimeout time.Duration

	// ReconnectDelay is the pause between failed reconnect attempts.
	// The first attempt after a drop is immediate and attempts never
	// stop; this constant pause after a failed attempt is the only
	// departure from retrying back to back.  Zero means
	// DefaultReconnectDelay.
	ReconnectDelay time.Duration

	// AuthFailureMarker is looked for on the "Authenticated" line; when
	// present the password was rejected.
	AuthFailureMarker string

	// MaxFrameSize bounds a single unfinished response.  Zero means
	// frame.DefaultMaxFrameSize.
	MaxFrameSize int

	// Dialer opens the connection.  Nil means a plain TCPDialer.
	Dialer transport.Dialer

	Logger  *util.Logger
	Metrics *metrics.Collector

	// OnAuthenticated is called with the acknowledgement text after
	// every successful handshake, reconnects included.
	OnAuthenticated func(payload string)

	// OnError receives errors that have no caller to return to:
	// malformed frames and failed reconnect attempts.
	OnError func(err error)
}

// Client is a session with one server.  All methods are safe for
// concurrent use.
type Client struct {
	cfg        Config
	addr       string
	credential string
	dialer     transport.Dialer
	logger     *util.Logger
	metrics    *metrics.Collector
	bus        *bus.Bus

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	sess        *session.Session
	supervising bool
	closed      bool

	active atomic.Bool
	wg     sync.WaitGroup
}

// New returns a Client for cfg.  It does not connect.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.AuthFailureMarker == "" {
		cfg.AuthFailureMarker = DefaultAuthFailureMarker
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &transport.TCPDialer{Timeout: cfg.HandshakeTimeout}
	}

	credential := cfg.Password
	if !cfg.PasswordHashed {
		credential = HashPassword(cfg.Password)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:        cfg,
		addr:       net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		credential: credential,
		dialer:     dialer,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		bus:        bus.New(cfg.Logger),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Dial is New followed by Connect.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	c := New(cfg)
	if err := c.Connect(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Addr returns the server address.
func (c *Client) Addr() string { return c.addr }

// Connect dials the server and authenticates.  On success it starts the
// background reader, which also takes care of reconnecting.  Calling
// Connect on a client that is already connected is a no-op.
//
// A rejected password returns ErrInvalidPassword and leaves the client
// disconnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.supervising {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	sess, a, err := c.open(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		sess.Close()
		return ErrClosed
	}
	if c.supervising {
		// Lost a race with a concurrent Connect.
		sess.Close()
		return nil
	}
	c.install(sess)
	c.supervising = true
	c.wg.Add(1)
	go c.supervise(sess, a)
	return nil
}

// Connected reports whether the client is authenticated and its
// connection is up.
func (c *Client) Connected() bool { return c.active.Load() }

// Close disconnects and stops reconnecting.  Pending requests run out
// their timeouts.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()

	c.active.Store(false)
	c.cancel()
	var err error
	if sess != nil {
		err = sess.Close()
	}
	c.wg.Wait()
	if derr := c.dialer.Close(); err == nil {
		err = derr
	}
	c.logger.Verbose("rcon: closed %s", c.addr)
	return err
}

// Pending returns the number of requests waiting for a response.
func (c *Client) Pending() int { return c.bus.Pending() }

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() metrics.Snapshot { return c.metrics.Snapshot() }

func (c *Client) install(sess *session.Session) {
	c.sess = sess
	c.active.Store(true)
}

// activate announces an installed session and decodes whatever the
// handshake read past the acknowledgement.  It runs on the reader
// goroutine, which owns the session's decoder.
func (c *Client) activate(sess *session.Session, a *ack) {
	c.metrics.Authenticated()
	if c.cfg.OnAuthenticated != nil {
		c.cfg.OnAuthenticated(a.payload)
	}
	sess.Deliver(a.received, c.dispatch, c.report)
}

func (c *Client) current() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// dispatch routes one decoded message to the request waiting for it.
func (c *Client) dispatch(m frame.Message) {
	if c.bus.Dispatch(m.Command, m) {
		c.metrics.ResponseDispatched()
		return
	}
	c.metrics.FrameDropped()
}

func (c *Client) report(err error) {
	c.metrics.RecordError(err.Error())
	if c.cfg.OnError != nil {
		c.cfg.OnError(err)
	}
}
