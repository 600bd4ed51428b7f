// Package errors provides domain-specific error types for pavlovrcon.
//
// These types carry structured context (operation, address, raw frame
// bytes, retryability) that helps callers decide how to handle failures
// and provides better diagnostics than plain string wrapping.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrInvalidPassword is returned when the server rejects the
	// credential.  It is fatal to the connection attempt and is never
	// retried by the reconnect supervisor.
	ErrInvalidPassword = errors.New("invalid password provided to server")

	// ErrNoResponse is returned to the caller of a request whose timeout
	// budget elapsed before a matching response arrived.
	ErrNoResponse = errors.New("server took too long to respond")

	// ErrConnectionLost marks a transport failure.  It is handled by the
	// reconnect supervisor and never returned from a request.
	ErrConnectionLost = errors.New("connection lost")

	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("session is closed")

	// ErrInvalidArgument is returned by the typed command helpers when
	// an argument would not survive the space-separated command line.
	ErrInvalidArgument = errors.New("invalid command argument")

	// ErrCommandFailed is returned when the server answered with
	// "Successful": false.
	ErrCommandFailed = errors.New("server reported the command as unsuccessful")

	// ErrTagBusy is returned by the command bus when a listener is
	// already registered under the requested tag.
	ErrTagBusy = errors.New("listener already registered for tag")
)

// ── Structured error types ───────────────────────────────────────────

// MalformedFrameError is raised when a chunk looked like JSON but could
// not be decoded.  It is tied to that chunk only; the connection stays up.
type MalformedFrameError struct {
	Raw []byte // the chunk that failed to decode
	Err error  // underlying parse error
}

func (e *MalformedFrameError) Error() string {
	raw := e.Raw
	if len(raw) > 64 {
		raw = raw[:64]
	}
	return fmt.Sprintf("invalid response returned from server: %v (raw %q)", e.Err, raw)
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "dial", "write", "read", "handshake"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// Malformed creates a MalformedFrameError holding a copy of raw.
func Malformed(raw []byte, err error) *MalformedFrameError {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return &MalformedFrameError{Raw: cp, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.  An invalid
// password never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrInvalidPassword) {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsMalformed reports whether err carries a MalformedFrameError.
func IsMalformed(err error) bool {
	var me *MalformedFrameError
	return errors.As(err, &me)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
