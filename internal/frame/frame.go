// Package frame extracts JSON messages from the RCON byte stream.
//
// The stream is not length-prefixed: a read may deliver part of one
// message, exactly one message, or several messages back to back, and
// may be preceded by plain-text chatter such as the authentication line.
// A Decoder accumulates bytes across reads and yields every complete
// JSON object as soon as its closing brace arrives.
package frame

import (
	"bytes"
	"encoding/json"
	"fmt"

	ncerr "pavlovrcon/internal/errors"
)

// DefaultMaxFrameSize caps how many bytes of a single unfinished
// object a Decoder will buffer before giving up on it.
const DefaultMaxFrameSize = 1 << 20

// Message is one decoded server response.
type Message struct {
	// Command is the correlation tag: the name of the command this
	// message answers.
	Command string `json:"Command"`

	// Successful reports whether the server executed the command.
	Successful bool `json:"Successful"`

	// Raw is the complete JSON object as received.  Fields beyond
	// Command and Successful vary per command and are decoded on demand.
	Raw json.RawMessage `json:"-"`
}

// Decode unmarshals the full message into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Raw) == 0 {
		return fmt.Errorf("frame: message %q has no payload", m.Command)
	}
	return json.Unmarshal(m.Raw, v)
}

// Parse decodes a single JSON object into a Message.
func Parse(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, err
	}
	m.Raw = append(json.RawMessage(nil), b...)
	return m, nil
}

// Decoder turns raw socket reads into Messages.  The zero value is
// ready to use.  A Decoder belongs to exactly one connection and is not
// safe for concurrent use.
type Decoder struct {
	// MaxFrameSize overrides DefaultMaxFrameSize when positive.
	MaxFrameSize int

	buf []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Buffered returns the number of bytes held while waiting for the rest
// of an unfinished object.
func (d *Decoder) Buffered() int { return len(d.buf) }

// Reset drops any partially received object.
func (d *Decoder) Reset() { d.buf = d.buf[:0] }

// Feed consumes one chunk and returns the messages it completes, in
// stream order.  A chunk that only carries part of an object yields no
// messages; the bytes are kept for the next call.
//
// An object whose braces balance but whose contents are not valid JSON
// is reported as a *errors.MalformedFrameError and skipped.  Messages
// decoded from the same chunk are still returned alongside the error.
func (d *Decoder) Feed(chunk []byte) ([]Message, error) {
	// Fast path: one whole message per read.
	if len(d.buf) == 0 {
		trimmed := bytes.TrimSpace(chunk)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			if m, err := Parse(trimmed); err == nil {
				return []Message{m}, nil
			}
		}
	}

	d.buf = append(d.buf, chunk...)

	var (
		out  []Message
		errs []error
	)
	for {
		start := bytes.IndexByte(d.buf, '{')
		if start < 0 {
			// Nothing but chatter; none of it can begin a frame.
			d.buf = d.buf[:0]
			break
		}
		end, resync := objectEnd(d.buf[start:])
		if resync > 0 {
			// A stray quote swallowed the rest of the stream into one
			// string.  Give up on the broken object and start over at
			// the next one.
			errs = append(errs, ncerr.Malformed(d.buf[start:start+resync],
				fmt.Errorf("unterminated string")))
			d.buf = d.buf[start+resync:]
			continue
		}
		if end < 0 {
			// Incomplete object: keep it and wait for more bytes.
			d.buf = append(d.buf[:0], d.buf[start:]...)
			if len(d.buf) > d.maxFrameSize() {
				errs = append(errs, ncerr.Malformed(d.buf,
					fmt.Errorf("frame exceeds %d bytes", d.maxFrameSize())))
				d.buf = d.buf[:0]
			}
			break
		}

		candidate := d.buf[start : start+end]
		m, err := Parse(candidate)
		if err != nil {
			errs = append(errs, ncerr.Malformed(candidate, err))
		} else {
			out = append(out, m)
		}
		d.buf = d.buf[start+end:]
	}

	if len(errs) == 0 {
		return out, nil
	}
	if len(errs) == 1 {
		return out, errs[0]
	}
	return out, ncerr.Join(errs...)
}

func (d *Decoder) maxFrameSize() int {
	if d.MaxFrameSize > 0 {
		return d.MaxFrameSize
	}
	return DefaultMaxFrameSize
}

// objectEnd returns the length of the object that opens at b[0], or -1
// if its closing brace has not arrived yet.  Braces inside JSON strings
// do not count.
//
// A string can never contain `{"` followed by anything but a
// delimiter: the quote would end it, and valid JSON allows only `,`,
// `:`, `]`, `}` or whitespace after a string.  Meeting such a sequence
// inside a string means an unbalanced quote earlier in the object, so
// objectEnd returns the offset of that `{` as resync and the caller
// restarts there.
func objectEnd(b []byte) (end, resync int) {
	depth := 0
	inString := false
	escaped := false
	for i, c := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			case c == '{' && opensObject(b[i:]):
				return -1, i
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, 0
			}
		}
	}
	return -1, 0
}

// opensObject reports whether b, which starts with '{', continues with
// a quoted key rather than closing a string that ends in '{'.
func opensObject(b []byte) bool {
	if len(b) < 3 || b[1] != '"' {
		return false
	}
	switch b[2] {
	case ',', ':', ']', '}', ' ', '\t', '\r', '\n':
		return false
	}
	return true
}
