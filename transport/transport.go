package transport

import (
	"context"
	"net"
)

// Reactor is everything the client needs from the environment to perform an exchange.
// All the blocking methods must return promptly once the passed context is done.
type Reactor interface {
	// LookupHost resolves the host into a list of addresses. IP literals resolve to
	// themselves.
	LookupHost(ctx context.Context, host string) ([]string, error)
	// Dial opens a stream connection to the address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)
	// Secure performs the TLS handshake over the connection, verifying the peer against
	// the server name.
	Secure(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error)
	// Spawn runs the task concurrently with the caller.
	Spawn(task func())
}
