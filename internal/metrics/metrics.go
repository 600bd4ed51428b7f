// Package metrics provides lightweight, lock-free counters for tracking
// runtime statistics of an RCON session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for an RCON session.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	reconnects        atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	commandsSent      atomic.Int64
	responses         atomic.Int64
	dropped           atomic.Int64
	timeouts          atomic.Int64
	malformed         atomic.Int64
	errorsTotal       atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastAuth     time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// Reconnect records a supervisor-initiated reconnection.
func (c *Collector) Reconnect() {
	if c == nil {
		return
	}
	c.reconnects.Add(1)
}

// Reconnects returns the total reconnection count.
func (c *Collector) Reconnects() int64 {
	if c == nil {
		return 0
	}
	return c.reconnects.Load()
}

// Authenticated records a successful handshake.
func (c *Collector) Authenticated() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastAuth = time.Now()
	c.mu.Unlock()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from the network.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to the network.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Request metrics ──────────────────────────────────────────────────

// CommandSent records one command line written to the server.
func (c *Collector) CommandSent() {
	if c == nil {
		return
	}
	c.commandsSent.Add(1)
}

// ResponseDispatched records a message delivered to a waiting request.
func (c *Collector) ResponseDispatched() {
	if c == nil {
		return
	}
	c.responses.Add(1)
}

// FrameDropped records a message that no request was waiting for.
func (c *Collector) FrameDropped() {
	if c == nil {
		return
	}
	c.dropped.Add(1)
}

// Timeout records a request that gave up waiting.
func (c *Collector) Timeout() {
	if c == nil {
		return
	}
	c.timeouts.Add(1)
}

// MalformedFrame records a frame that failed to decode.
func (c *Collector) MalformedFrame() {
	if c == nil {
		return
	}
	c.malformed.Add(1)
}

// CommandsSent returns the total number of commands written.
func (c *Collector) CommandsSent() int64 {
	if c == nil {
		return 0
	}
	return c.commandsSent.Load()
}

// Timeouts returns the total number of timed-out requests.
func (c *Collector) Timeouts() int64 {
	if c == nil {
		return 0
	}
	return c.timeouts.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	Reconnects        int64  `json:"reconnects"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	CommandsSent      int64  `json:"commands_sent"`
	ResponsesReceived int64  `json:"responses_received"`
	FramesDropped     int64  `json:"frames_dropped"`
	Timeouts          int64  `json:"timeouts"`
	MalformedFrames   int64  `json:"malformed_frames"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastAuthenticated string `json:"last_authenticated,omitempty"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		Reconnects:        c.reconnects.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		CommandsSent:      c.commandsSent.Load(),
		ResponsesReceived: c.responses.Load(),
		FramesDropped:     c.dropped.Load(),
		Timeouts:          c.timeouts.Load(),
		MalformedFrames:   c.malformed.Load(),
		ErrorsTotal:       c.errorsTotal.Load(),
	}
	if !c.lastAuth.IsZero() {
		s.LastAuthenticated = c.lastAuth.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
