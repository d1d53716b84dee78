package transport

import (
	"context"
	"crypto/tls"
	"net"
)

func handshake(ctx context.Context, conn net.Conn, base *tls.Config, serverName string) (net.Conn, error) {
	var cfg *tls.Config
	if base != nil {
		cfg = base.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cfg.ServerName = serverName
	// no HTTP/2 support, so don't let the server choose it
	cfg.NextProtos = []string{"http/1.1"}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return tlsConn, nil
}
