package util

import (
	"fmt"
	"net"
	"strconv"
)

// ResolveAddr joins host and port.  With noDNS set the host must
// already be an IP literal, since nothing is looked up.
func ResolveAddr(host string, port int, noDNS bool) (string, error) {
	if noDNS && net.ParseIP(host) == nil {
		return "", fmt.Errorf("%q is not an IP address and DNS is disabled (-n)", host)
	}
	return FormatAddr(host, port), nil
}

// FormatAddr returns host:port, bracketing IPv6 literals.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// UnusedPort returns a loopback TCP port that nothing listens on at the
// time of the call.
func UnusedPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("probe for an unused port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	return port, l.Close()
}
