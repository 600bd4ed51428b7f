package errors

import (
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
)

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "dial", Addr: "10.0.0.5:9100", Err: io.EOF, Retryable: true},
			want: "dial 10.0.0.5:9100: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "write", Addr: "10.0.0.5:9100", Err: fmt.Errorf("broken pipe")},
			want: "write 10.0.0.5:9100: broken pipe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	err := &NetworkError{Op: "read", Addr: "x", Err: io.EOF}
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestMalformedFrameError(t *testing.T) {
	raw := []byte(`{"Command":"Kick",`)
	inner := fmt.Errorf("unexpected end of JSON input")
	err := Malformed(raw, inner)

	raw[0] = 'X' // the error must keep its own copy
	if err.Raw[0] != '{' {
		t.Errorf("raw bytes aliased the caller's buffer: %q", err.Raw)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to the parse error")
	}
	if !IsMalformed(fmt.Errorf("dispatch: %w", err)) {
		t.Error("IsMalformed should see through wrapping")
	}
	if !strings.Contains(err.Error(), "invalid response") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMalformedFrameError_TruncatesRaw(t *testing.T) {
	raw := []byte("{" + strings.Repeat("a", 500))
	msg := Malformed(raw, io.ErrUnexpectedEOF).Error()
	// The first 64 bytes of raw are "{" plus 63 a's.
	if !strings.Contains(msg, `"{`+strings.Repeat("a", 63)+`"`) {
		t.Errorf("message should quote the first 64 raw bytes: %q", msg)
	}
	if strings.Contains(msg, strings.Repeat("a", 64)) {
		t.Errorf("message should truncate the raw chunk, got %d bytes", len(msg))
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "bastion.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake bastion.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "password",
				Message: "required",
			},
			want: "config: --password: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := Wrap("dial", "10.0.0.1:9100", inner)

	if err.Op != "dial" || err.Addr != "10.0.0.1:9100" {
		t.Errorf("wrong fields: Op=%q Addr=%q", err.Op, err.Addr)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: false}, false},
		{"invalid password", fmt.Errorf("auth: %w", ErrInvalidPassword), false},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable_NetOpError(t *testing.T) {
	opErr := &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{IsTemporary: true},
	}
	if !classifyRetryable(opErr) {
		t.Error("temporary OpError should be retryable")
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrInvalidPassword, ErrNoResponse, ErrConnectionLost,
		ErrNotConnected, ErrClosed, ErrTagBusy,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
