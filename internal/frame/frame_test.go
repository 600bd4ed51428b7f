package frame

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	ncerr "pavlovrcon/internal/errors"
)

const kickResponse = `{"Command":"Kick","UniqueID":"76561198000000000","Successful":true}`

// TestFeed_EverySplit verifies that a message split at any byte offset
// decodes to the same Message as the unsplit parse.
func TestFeed_EverySplit(t *testing.T) {
	payloads := []string{
		kickResponse,
		`{"Command":"ServerInfo","ServerInfo":{"MapLabel":"datacenter","PlayerCount":"3/10"},"Successful":true}`,
		`{"Command":"Banlist","BanList":["a}b","{c"],"Successful":false}`,
		`{"Command":"UpdateServerName","Name":"say \"hi\" {now}","Successful":true}`,
	}

	for _, payload := range payloads {
		want, err := Parse([]byte(payload))
		if err != nil {
			t.Fatalf("Parse(%s): %v", payload, err)
		}

		for split := 0; split <= len(payload); split++ {
			d := NewDecoder()
			var got []Message

			first, err := d.Feed([]byte(payload[:split]))
			if err != nil {
				t.Fatalf("split %d: first feed: %v", split, err)
			}
			got = append(got, first...)

			second, err := d.Feed([]byte(payload[split:]))
			if err != nil {
				t.Fatalf("split %d: second feed: %v", split, err)
			}
			got = append(got, second...)

			if len(got) != 1 {
				t.Fatalf("split %d: got %d messages, want 1", split, len(got))
			}
			assertMessage(t, got[0], want)
			if d.Buffered() != 0 {
				t.Errorf("split %d: %d bytes left buffered", split, d.Buffered())
			}
		}
	}
}

// TestFeed_ByteByByte feeds one byte per call.
func TestFeed_ByteByByte(t *testing.T) {
	d := NewDecoder()
	var got []Message
	for i := 0; i < len(kickResponse); i++ {
		msgs, err := d.Feed([]byte{kickResponse[i]})
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		got = append(got, msgs...)
	}
	if len(got) != 1 || got[0].Command != "Kick" || !got[0].Successful {
		t.Fatalf("got %+v", got)
	}
}

// TestFeed_Concatenated verifies N messages in one chunk yield N
// messages in order.
func TestFeed_Concatenated(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var b strings.Builder
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, `{"Command":"Cmd%d","Successful":%t}`, i, i%2 == 0)
			}

			msgs, err := NewDecoder().Feed([]byte(b.String()))
			if err != nil {
				t.Fatalf("Feed: %v", err)
			}
			if len(msgs) != n {
				t.Fatalf("got %d messages, want %d", len(msgs), n)
			}
			for i, m := range msgs {
				if want := fmt.Sprintf("Cmd%d", i); m.Command != want {
					t.Errorf("message %d: Command = %q, want %q", i, m.Command, want)
				}
				if m.Successful != (i%2 == 0) {
					t.Errorf("message %d: Successful = %v", i, m.Successful)
				}
			}
		})
	}
}

// TestFeed_ConcatenatedAcrossChunks mixes concatenation with a split.
func TestFeed_ConcatenatedAcrossChunks(t *testing.T) {
	stream := `{"Command":"A","Successful":true}{"Command":"B","Successful":true}{"Command":"C","Successful":true}`
	d := NewDecoder()

	cut := strings.Index(stream, `"B"`)
	first, err := d.Feed([]byte(stream[:cut]))
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Feed([]byte(stream[cut:]))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, m := range append(first, second...) {
		names = append(names, m.Command)
	}
	if got := strings.Join(names, ","); got != "A,B,C" {
		t.Errorf("got %s, want A,B,C", got)
	}
}

func TestFeed_SkipsChatter(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  int
	}{
		{"auth line only", "Authenticated=1\n", 0},
		{"auth line then json", "Authenticated=1\n" + kickResponse, 1},
		{"stray closing brace", "} " + kickResponse, 1},
		{"whitespace around", "\r\n  " + kickResponse + "\n", 1},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			msgs, err := d.Feed([]byte(tt.chunk))
			if err != nil {
				t.Fatalf("Feed: %v", err)
			}
			if len(msgs) != tt.want {
				t.Fatalf("got %d messages, want %d", len(msgs), tt.want)
			}
			if d.Buffered() != 0 {
				t.Errorf("chatter left %d bytes buffered", d.Buffered())
			}
		})
	}
}

func TestFeed_Malformed(t *testing.T) {
	d := NewDecoder()
	chunk := `{"Command":"Kick",,}` + `{"Command":"Ban","Successful":true}`

	msgs, err := d.Feed([]byte(chunk))
	if err == nil {
		t.Fatal("expected a malformed frame error")
	}
	if !ncerr.IsMalformed(err) {
		t.Fatalf("error %v is not a MalformedFrameError", err)
	}
	var me *ncerr.MalformedFrameError
	if !ncerr.As(err, &me) {
		t.Fatalf("error %T does not unwrap to *MalformedFrameError", err)
	}
	if !bytes.Equal(me.Raw, []byte(`{"Command":"Kick",,}`)) {
		t.Errorf("raw context = %q", me.Raw)
	}
	if len(msgs) != 1 || msgs[0].Command != "Ban" {
		t.Fatalf("valid neighbour should still decode, got %+v", msgs)
	}

	// The decoder keeps working after a bad frame.
	msgs, err = d.Feed([]byte(kickResponse))
	if err != nil || len(msgs) != 1 {
		t.Fatalf("after malformed frame: msgs=%v err=%v", msgs, err)
	}
}

// TestFeed_UnbalancedQuote covers an object with a stray quote.  A
// string-aware scan alone would treat every later byte as string
// content and never close the object.
func TestFeed_UnbalancedQuote(t *testing.T) {
	broken := `{"Command":"x,"Successful":true}`

	tests := []struct {
		name   string
		chunks []string
	}{
		{"separate reads", []string{broken, kickResponse, kickResponse, kickResponse}},
		{"same read", []string{broken + kickResponse + kickResponse + kickResponse}},
		{"split after the break", []string{broken + `{"Comm`, kickResponse[6:], kickResponse + kickResponse}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			var (
				got       []Message
				malformed []*ncerr.MalformedFrameError
			)
			for _, chunk := range tt.chunks {
				msgs, err := d.Feed([]byte(chunk))
				got = append(got, msgs...)
				if err != nil {
					var me *ncerr.MalformedFrameError
					if !ncerr.As(err, &me) {
						t.Fatalf("error %v is not a MalformedFrameError", err)
					}
					malformed = append(malformed, me)
				}
			}

			if len(malformed) != 1 {
				t.Fatalf("got %d malformed reports, want 1", len(malformed))
			}
			if string(malformed[0].Raw) != broken {
				t.Errorf("raw context = %q, want %q", malformed[0].Raw, broken)
			}
			if len(got) != 3 {
				t.Fatalf("got %d messages, want 3", len(got))
			}
			for _, m := range got {
				if m.Command != "Kick" {
					t.Errorf("got %+v", m)
				}
			}
			if d.Buffered() != 0 {
				t.Errorf("%d bytes left buffered", d.Buffered())
			}
		})
	}
}

// TestFeed_BraceAtStringEnd keeps strings that end in '{' intact.
func TestFeed_BraceAtStringEnd(t *testing.T) {
	payload := `{"Command":"UpdateServerName","Name":"lobby {","Tags":["{","x{"],"Successful":true}`
	for split := 0; split <= len(payload); split++ {
		d := NewDecoder()
		first, err1 := d.Feed([]byte(payload[:split]))
		second, err2 := d.Feed([]byte(payload[split:]))
		if err1 != nil || err2 != nil {
			t.Fatalf("split %d: errors %v, %v", split, err1, err2)
		}
		if n := len(first) + len(second); n != 1 {
			t.Fatalf("split %d: got %d messages", split, n)
		}
	}
}

func TestFeed_NonObjectBalanced(t *testing.T) {
	// Balanced braces around something that is not an object body.
	_, err := NewDecoder().Feed([]byte(`{not json}`))
	if !ncerr.IsMalformed(err) {
		t.Fatalf("got %v, want malformed", err)
	}
}

func TestFeed_MaxFrameSize(t *testing.T) {
	d := &Decoder{MaxFrameSize: 32}
	_, err := d.Feed([]byte(`{"Command":"Banlist","BanList":["` + strings.Repeat("x", 64)))
	if !ncerr.IsMalformed(err) {
		t.Fatalf("got %v, want malformed for oversized frame", err)
	}
	if d.Buffered() != 0 {
		t.Errorf("oversized frame should be dropped, %d bytes buffered", d.Buffered())
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := NewDecoder()
	if _, err := d.Feed([]byte(`{"Command":"Ki`)); err != nil {
		t.Fatal(err)
	}
	if d.Buffered() == 0 {
		t.Fatal("partial frame should be buffered")
	}
	d.Reset()
	msgs, err := d.Feed([]byte(kickResponse))
	if err != nil || len(msgs) != 1 {
		t.Fatalf("after reset: msgs=%v err=%v", msgs, err)
	}
}

func TestMessage_Decode(t *testing.T) {
	m, err := Parse([]byte(kickResponse))
	if err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Command    string
		UniqueID   string
		Successful bool
	}
	if err := m.Decode(&resp); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if resp.UniqueID != "76561198000000000" || !resp.Successful {
		t.Errorf("decoded %+v", resp)
	}

	if err := (Message{Command: "Empty"}).Decode(&resp); err == nil {
		t.Error("decoding a message without payload should fail")
	}
}

func assertMessage(t *testing.T, got, want Message) {
	t.Helper()
	if got.Command != want.Command || got.Successful != want.Successful {
		t.Errorf("got (%q, %v), want (%q, %v)", got.Command, got.Successful, want.Command, want.Successful)
	}
	if !bytes.Equal(got.Raw, want.Raw) {
		t.Errorf("raw mismatch:\n got %s\nwant %s", got.Raw, want.Raw)
	}
}
