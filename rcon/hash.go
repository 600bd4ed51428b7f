package rcon

import (
	"crypto/md5" //nolint:gosec // the server authenticates with an MD5 digest
	"encoding/hex"
	"strings"
)

// HashPassword returns the credential the server expects: the lowercase
// hex MD5 digest of the plaintext RCON password.
func HashPassword(plain string) string {
	sum := md5.Sum([]byte(plain)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// TagOf returns the command name of a command line, which is the value
// the server echoes in the "Command" field of its response.
func TagOf(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
