package dummy

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/indigo-web/fetch/transport"
)

var _ transport.Reactor = new(Reactor)

var ErrRefused = errors.New("connection refused")

// Reactor resolves hosts from a static table and hands out prepared connections by the
// dialed address. Every call is counted, so tests can assert what was (not) attempted.
type Reactor struct {
	mu         sync.Mutex
	hosts      map[string][]string
	conns      map[string]*Conn
	dialErrs   map[string]error
	lookupErr  error
	secureErr  error
	lookups    int
	dialed     []string
	handshakes []string
	spawns     int
}

func NewReactor() *Reactor {
	return &Reactor{
		hosts:    make(map[string][]string),
		conns:    make(map[string]*Conn),
		dialErrs: make(map[string]error),
	}
}

// Host registers addresses the host resolves into.
func (r *Reactor) Host(host string, addrs ...string) *Reactor {
	r.hosts[host] = addrs
	return r
}

// Serve makes the address dialable, returning the connection.
func (r *Reactor) Serve(address string, conn *Conn) *Reactor {
	r.conns[address] = conn
	return r
}

// Refuse makes dialing the address fail with the error.
func (r *Reactor) Refuse(address string, err error) *Reactor {
	r.dialErrs[address] = err
	return r
}

func (r *Reactor) FailLookups(err error) *Reactor {
	r.lookupErr = err
	return r
}

func (r *Reactor) FailHandshakes(err error) *Reactor {
	r.secureErr = err
	return r
}

func (r *Reactor) LookupHost(ctx context.Context, host string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookups++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.lookupErr != nil {
		return nil, r.lookupErr
	}

	if addrs, found := r.hosts[host]; found {
		return addrs, nil
	}

	if net.ParseIP(host) != nil {
		return []string{host}, nil
	}

	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func (r *Reactor) Dial(ctx context.Context, _, address string) (net.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dialed = append(r.dialed, address)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.dialErrs[address]; err != nil {
		return nil, err
	}

	conn, found := r.conns[address]
	if !found {
		return nil, ErrRefused
	}

	return conn, nil
}

func (r *Reactor) Secure(_ context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handshakes = append(r.handshakes, serverName)
	if r.secureErr != nil {
		return nil, r.secureErr
	}

	return conn, nil
}

func (r *Reactor) Spawn(task func()) {
	r.mu.Lock()
	r.spawns++
	r.mu.Unlock()

	go task()
}

func (r *Reactor) Lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookups
}

// Dialed returns all the addresses dial was attempted to, in order.
func (r *Reactor) Dialed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.dialed...)
}

// Handshakes returns server names of all the attempted TLS handshakes.
func (r *Reactor) Handshakes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.handshakes...)
}

func (r *Reactor) Spawns() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.spawns
}
