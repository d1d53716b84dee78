package dummy

import (
	"io"
	"net"
	"sync"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is an in-memory connection. Reads return the fragments it was initialised with one
// by one, after that either io.EOF (or the configured error) is returned, or the read
// blocks until the connection is closed. All the written data is journaled.
type Conn struct {
	mu         sync.Mutex
	data       [][]byte
	pointer    int
	rest       []byte
	readErr    error
	hang       bool
	written    []byte
	writeLimit int
	writeErr   error
	writes     int
	closed     chan struct{}
	closeOnce  sync.Once
	onClose    func()
}

func NewConn(data ...[]byte) *Conn {
	return &Conn{
		data:    data,
		readErr: io.EOF,
		closed:  make(chan struct{}),
	}
}

// NewStringConn is NewConn taking strings.
func NewStringConn(data ...string) *Conn {
	fragments := make([][]byte, len(data))
	for i, str := range data {
		fragments[i] = []byte(str)
	}

	return NewConn(fragments...)
}

// Hang makes reads block until the connection is closed once all the fragments are consumed.
func (c *Conn) Hang() *Conn {
	c.hang = true
	return c
}

// FailReads replaces io.EOF returned after all the fragments with the error.
func (c *Conn) FailReads(err error) *Conn {
	c.readErr = err
	return c
}

// WriteLimit limits the number of bytes accepted by a single Write, simulating short writes.
func (c *Conn) WriteLimit(n int) *Conn {
	c.writeLimit = n
	return c
}

func (c *Conn) FailWrites(err error) *Conn {
	c.writeErr = err
	return c
}

// OnClose sets a hook called once the connection is closed for the first time.
func (c *Conn) OnClose(fn func()) *Conn {
	c.onClose = fn
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.mu.Lock()

	if c.isClosed() {
		c.mu.Unlock()
		return 0, net.ErrClosed
	}

	if len(c.rest) == 0 && c.pointer < len(c.data) {
		c.rest = c.data[c.pointer]
		c.pointer++
	}

	if len(c.rest) > 0 {
		n = copy(b, c.rest)
		c.rest = c.rest[n:]
		c.mu.Unlock()

		return n, nil
	}

	hang := c.hang
	c.mu.Unlock()

	if hang {
		<-c.closed
		return 0, net.ErrClosed
	}

	return 0, c.readErr
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.isClosed():
		return 0, net.ErrClosed
	case c.writeErr != nil:
		return 0, c.writeErr
	}

	n = len(b)
	if c.writeLimit > 0 {
		n = min(n, c.writeLimit)
	}

	c.writes++
	c.written = append(c.written, b[:n]...)

	return n, nil
}

// Written returns all the data written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

// Writes returns the number of successful Write calls.
func (c *Conn) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writes
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.onClose != nil {
			c.onClose()
		}
	})

	return nil
}

// Closed tells whether Close was called at least once.
func (c *Conn) Closed() bool {
	return c.isClosed()
}

// Done returns a channel closed along with the connection.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
}

func (c *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80}
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
