package transport

import (
	"net"
	"time"
)

// Client is the strictly sequential view of a connection: one read or write
// at a time, issued by a single goroutine. Read blocks until data arrives,
// returning io.EOF on a clean end of stream; transport failures come back
// as any other error, so callers can tell the two apart. Because reads are
// issued on demand, no more than one transport chunk is ever buffered ahead
// of the consumer.
type Client interface {
	Read() ([]byte, error)
	// Pushback preserves unconsumed bytes of a previous read; the next Read
	// returns them before touching the transport. At most one chunk may be
	// pending: pushing onto a non-empty pending slot is a caller bug and
	// panics.
	Pushback([]byte)
	Write([]byte) error
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	pending []byte
	timeout time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff,
		conn:    conn,
		timeout: timeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back.
// The read deadline is re-armed on every call.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	n, err := c.conn.Read(c.buff)
	if n > 0 {
		// the data takes priority over a possible error, which will anyway
		// repeat itself on the next read
		return c.buff[:n], nil
	}

	return nil, err
}

func (c *client) Pushback(b []byte) {
	if len(c.pending) > 0 {
		panic("transport: pushback onto a non-empty pending slot")
	}

	c.pending = b
}

func (c *client) Write(b []byte) error {
	_, err := c.conn.Write(b)
	return err
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	return c.conn.Close()
}
