package rcon

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// commandPattern splits a read into command lines.  Commands go out
// without a terminator, so back-to-back writes can share a read.
// Arguments are lower case or numeric, or an all-caps game mode that
// ends the read.
var commandPattern = regexp.MustCompile(`[A-Z][A-Za-z]*[0-9]*(?: [a-z0-9_./-]+| [A-Z]+\b)*`)

// ackPause separates the pieces of a split acknowledgement.  It is
// well under ackSettle.
const ackPause = 20 * time.Millisecond

// fakeServer is a loopback Pavlov RCON endpoint.
type fakeServer struct {
	t  *testing.T
	ln net.Listener

	mu sync.Mutex
	// ack answers the credential on each connection, by connection
	// index.  The last entry repeats.  "" never answers.
	ack []string
	// reply builds the response to a command.  Returning "" sends
	// nothing.
	reply func(cmd string) string
	// delay postpones each reply.
	delay time.Duration

	conns       []net.Conn
	credentials []string
	commands    []string
	accepted    chan struct{}
}

func newFakeServer(t *testing.T, reply func(cmd string) string, ack ...string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if len(ack) == 0 {
		ack = []string{"Authenticated"}
	}
	s := &fakeServer{
		t:        t,
		ln:       ln,
		ack:      ack,
		reply:    reply,
		accepted: make(chan struct{}, 16),
	}
	go s.serve()
	t.Cleanup(s.close)
	return s
}

// echoReply answers every command with a successful response tagged by
// the command name.
func echoReply(cmd string) string {
	return `{"Command":"` + TagOf(cmd) + `","Successful":true}`
}

func (s *fakeServer) config() Config {
	host, port, _ := net.SplitHostPort(s.ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return Config{
		Host:             host,
		Port:             p,
		Password:         "secret",
		Timeout:          2 * time.Second,
		HandshakeTimeout: 2 * time.Second,
		ReconnectDelay:   20 * time.Millisecond,
	}
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		idx := len(s.conns)
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		s.accepted <- struct{}{}
		go s.handle(conn, idx)
	}
}

func (s *fakeServer) handle(conn net.Conn, idx int) {
	defer conn.Close()
	buf := make([]byte, 4096)

	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.credentials = append(s.credentials, string(buf[:n]))
	ack := s.ack[len(s.ack)-1]
	if idx < len(s.ack) {
		ack = s.ack[idx]
	}
	s.mu.Unlock()

	if ack == "" {
		// Never acknowledge.
		conn.Read(buf) //nolint:errcheck
		return
	}
	// A '|' in ack splits it into separate writes.
	for i, part := range strings.Split(ack, "|") {
		if i > 0 {
			time.Sleep(ackPause)
		}
		if _, err := conn.Write([]byte(part)); err != nil {
			return
		}
	}

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		for _, cmd := range commandPattern.FindAllString(string(buf[:n]), -1) {
			s.mu.Lock()
			s.commands = append(s.commands, cmd)
			reply, delay := s.reply, s.delay
			s.mu.Unlock()

			if reply == nil {
				continue
			}
			resp := reply(cmd)
			if resp == "" {
				continue
			}
			go func() {
				if delay > 0 {
					time.Sleep(delay)
				}
				conn.Write([]byte(resp)) //nolint:errcheck
			}()
		}
	}
}

func (s *fakeServer) setDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// drop closes every open server-side connection.
func (s *fakeServer) drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
}

func (s *fakeServer) close() {
	s.ln.Close()
	s.drop()
}

func (s *fakeServer) gotCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *fakeServer) gotCredentials() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.credentials...)
}

// waitAccepted blocks until n connections have been accepted in total.
func (s *fakeServer) waitAccepted(n int) {
	s.t.Helper()
	for {
		s.mu.Lock()
		got := len(s.conns)
		s.mu.Unlock()
		if got >= n {
			return
		}
		select {
		case <-s.accepted:
		case <-time.After(3 * time.Second):
			s.t.Fatalf("server accepted %d connections, want %d", got, n)
		}
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
