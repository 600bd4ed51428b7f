// Package rcon is a client for the Pavlov VR dedicated server remote
// console.
//
// A Client keeps one TCP connection to the server.  On connect it sends
// the MD5 hash of the RCON password, waits for the "Authenticated"
// acknowledgement, and from then on writes plain-text command lines and
// reads back JSON objects.  Responses carry no request id; each one is
// matched to its request by the name in its "Command" field, so at most
// one request per command name is in flight at a time.  A second
// request for the same name waits for the first to finish.
//
// When the connection drops, the client reconnects and authenticates
// again in the background.  Requests issued while it is down are not
// failed early; they run out their timeout and return ErrNoResponse.
//
//	c := rcon.New(rcon.Config{Host: "10.0.0.5", Port: 9100, Password: "secret"})
//	if err := c.Connect(ctx); err != nil {
//		return err
//	}
//	defer c.Close()
//	msg, err := c.Invoke(ctx, "ServerInfo", "ServerInfo")
package rcon
