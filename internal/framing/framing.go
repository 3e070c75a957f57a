package framing

import (
	"bytes"

	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/internal/buffer"
)

// Framer decides whether one complete message sits at the front of the
// buffer and, if so, consumes and returns it. A (nil, nil) result means
// more data is needed. TryCut never reads the stream itself and is
// idempotent between appends. The returned slice aliases the buffer and is
// valid until its next Append.
type Framer interface {
	TryCut(buff *buffer.Buffer) ([]byte, error)
}

// Line frames messages delimited by '\n'. The delimiter is part of the
// message.
type Line struct{}

func (Line) TryCut(buff *buffer.Buffer) ([]byte, error) {
	data := buff.View()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		return nil, nil
	}

	buff.Consume(idx + 1)

	return data[:idx+1], nil
}

var blockTerminator = []byte("\r\n\r\n")

// HeaderBlock frames an HTTP header section through its blank-line
// terminator. Accumulating MaxSize bytes without finding the terminator
// fails with 413; a block with zero header lines is valid.
type HeaderBlock struct {
	MaxSize int
}

func (h HeaderBlock) TryCut(buff *buffer.Buffer) ([]byte, error) {
	data := buff.View()
	idx := bytes.Index(data, blockTerminator)
	if idx == -1 {
		if h.MaxSize > 0 && len(data) >= h.MaxSize {
			return nil, status.ErrHeadersTooLarge
		}

		return nil, nil
	}

	buff.Consume(idx + len(blockTerminator))

	return data[:idx+len(blockTerminator)], nil
}
