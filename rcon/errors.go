package rcon

import ncerr "pavlovrcon/internal/errors"

var (
	// ErrInvalidPassword is returned by Connect when the server rejects
	// the password.  The client does not retry it.
	ErrInvalidPassword = ncerr.ErrInvalidPassword

	// ErrNoResponse is returned by Invoke when no matching response
	// arrived within the timeout, including while reconnecting.
	ErrNoResponse = ncerr.ErrNoResponse

	ErrNotConnected = ncerr.ErrNotConnected
	ErrClosed       = ncerr.ErrClosed

	// ErrInvalidArgument is returned by the typed commands before
	// anything is written.
	ErrInvalidArgument = ncerr.ErrInvalidArgument

	// ErrCommandFailed is returned by the typed commands alongside the
	// decoded response when the server reports it was unsuccessful.
	ErrCommandFailed = ncerr.ErrCommandFailed
)

// MalformedFrameError is passed to Config.OnError when the server sends
// something that looks like JSON but does not parse.
type MalformedFrameError = ncerr.MalformedFrameError
