package transport

import (
	"context"
	"log"
	"net"
	"time"
)

type Logger interface {
	Printf(fmt string, v ...any)
}

type logged struct {
	Reactor
	loggers []Logger
}

// Logged decorates the reactor, logging every resolution, dial and handshake together with
// its outcome and duration. If no loggers are passed, log.Default() is used.
func Logged(reactor Reactor, loggers ...Logger) Reactor {
	if len(loggers) == 0 {
		loggers = append(loggers, log.Default())
	}

	return logged{
		Reactor: reactor,
		loggers: loggers,
	}
}

func (l logged) LookupHost(ctx context.Context, host string) ([]string, error) {
	start := time.Now()
	addrs, err := l.Reactor.LookupHost(ctx, host)
	if err != nil {
		l.printf("resolve %s: %s (%s)", host, err, time.Since(start))
	} else {
		l.printf("resolve %s: %v (%s)", host, addrs, time.Since(start))
	}

	return addrs, err
}

func (l logged) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	start := time.Now()
	conn, err := l.Reactor.Dial(ctx, network, address)
	if err != nil {
		l.printf("dial %s %s: %s (%s)", network, address, err, time.Since(start))
	} else {
		l.printf("dial %s %s: connected (%s)", network, address, time.Since(start))
	}

	return conn, err
}

func (l logged) Secure(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	start := time.Now()
	secured, err := l.Reactor.Secure(ctx, conn, serverName)
	if err != nil {
		l.printf("tls %s: %s (%s)", serverName, err, time.Since(start))
	} else {
		l.printf("tls %s: handshake complete (%s)", serverName, time.Since(start))
	}

	return secured, err
}

func (l logged) printf(format string, v ...any) {
	for _, logger := range l.loggers {
		logger.Printf(format, v...)
	}
}
