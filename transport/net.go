package transport

import (
	"context"
	"crypto/tls"
	"net"
)

var _ Reactor = new(Net)

// Net is the Reactor backed by the Go runtime netpoller. The zero value is ready to use.
type Net struct {
	Resolver *net.Resolver
	Dialer   *net.Dialer
	// TLS is the base configuration for secured connections. ServerName is always
	// overridden.
	TLS *tls.Config
}

func NewNet() *Net {
	return &Net{
		Resolver: net.DefaultResolver,
		Dialer:   new(net.Dialer),
	}
}

func (n *Net) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}

	resolver := n.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	return resolver.LookupHost(ctx, host)
}

func (n *Net) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := n.Dialer
	if dialer == nil {
		dialer = new(net.Dialer)
	}

	return dialer.DialContext(ctx, network, address)
}

func (n *Net) Secure(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	return handshake(ctx, conn, n.TLS, serverName)
}

func (*Net) Spawn(task func()) {
	go task()
}
