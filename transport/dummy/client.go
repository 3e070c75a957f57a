package dummy

import (
	"io"
	"net"

	"github.com/seine-net/seine/transport"
)

var _ transport.Client = new(Client)

// Client replays the chunks it was initialised with, one per read, then
// reports a clean end of stream. All written data is journaled, making it a
// universal mock suitable for most of the tests.
type Client struct {
	closed  bool
	pointer int
	pending []byte
	written []byte
	data    [][]byte
}

func NewClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

func (c *Client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.closed || c.pointer >= len(c.data) {
		return nil, io.EOF
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(b []byte) {
	if len(c.pending) > 0 {
		panic("dummy: pushback onto a non-empty pending slot")
	}

	c.pending = b
}

func (c *Client) Write(p []byte) error {
	c.written = append(c.written, p...)
	return nil
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

func (c *Client) Closed() bool {
	return c.closed
}

// Written returns everything written so far.
func (c *Client) Written() string {
	return string(c.written)
}

// ResetWritten drops the journal, simplifying per-exchange assertions.
func (c *Client) ResetWritten() {
	c.written = nil
}

// Broken is a client whose every operation fails with the given error,
// imitating a dead transport.
type Broken struct {
	Err error
}

func (b Broken) Read() ([]byte, error) { return nil, b.Err }
func (b Broken) Pushback([]byte)       {}
func (b Broken) Write([]byte) error    { return b.Err }
func (Broken) Remote() net.Addr        { return nil }
func (Broken) Close() error            { return nil }
