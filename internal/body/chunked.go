package body

import (
	"io"

	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/transport"
)

type chunkedState uint8

const (
	eSize chunkedState = iota
	eSizeLF
	eBody
	eBodyCR
	eBodyLF
	eLastCR
	eLastLF
	eDone
)

// maxSizeDigits caps a single chunk-size line at 8 hex digits, an implicit
// 4GiB chunk limit.
const maxSizeDigits = 8

// chunked decodes chunked transfer encoding incrementally: each transport
// chunk advances the state machine, surplus bytes past the terminal
// 0-size chunk go back to the client via Pushback.
type chunked struct {
	client transport.Client
	state  chunkedState
	size   int
	digits int
}

func NewChunked(client transport.Client) http.BodyReader {
	return &chunked{client: client}
}

func (*chunked) Length() (int, bool) {
	return 0, false
}

func (c *chunked) Fetch() ([]byte, error) {
	for {
		if c.state == eDone {
			return nil, io.EOF
		}

		data, err := c.client.Read()
		switch err {
		case nil:
		case io.EOF:
			return nil, status.ErrUnexpectedEOF
		default:
			return nil, err
		}

		piece, err := c.feed(data)
		if err != nil {
			return nil, err
		}

		if len(piece) > 0 {
			return piece, nil
		}

		if c.state == eDone {
			return nil, io.EOF
		}
	}
}

// feed advances the decoder by one transport chunk and returns a body piece
// if the chunk uncovered one.
func (c *chunked) feed(data []byte) ([]byte, error) {
	for i := 0; i < len(data); i++ {
		char := data[i]

		switch c.state {
		case eSize:
			if char == '\r' {
				if c.digits == 0 {
					return nil, status.ErrBadChunk
				}

				c.state = eSizeLF
				continue
			}

			halfbyte := unhex(char)
			if halfbyte == 0xff {
				return nil, status.ErrBadChunk
			}

			if c.digits++; c.digits > maxSizeDigits {
				return nil, status.ErrBadChunk
			}

			c.size = c.size<<4 | int(halfbyte)
		case eSizeLF:
			if char != '\n' {
				return nil, status.ErrBadChunk
			}

			if c.size == 0 {
				c.state = eLastCR
			} else {
				c.state = eBody
			}
		case eBody:
			n := min(c.size, len(data)-i)
			piece := data[i : i+n]

			c.size -= n
			if c.size == 0 {
				c.state = eBodyCR
			}

			if i+n < len(data) {
				c.client.Pushback(data[i+n:])
			}

			return piece, nil
		case eBodyCR:
			if char != '\r' {
				return nil, status.ErrBadChunk
			}

			c.state = eBodyLF
		case eBodyLF:
			if char != '\n' {
				return nil, status.ErrBadChunk
			}

			c.state = eSize
			c.digits = 0
		case eLastCR:
			if char != '\r' {
				return nil, status.ErrBadChunk
			}

			c.state = eLastLF
		case eLastLF:
			if char != '\n' {
				return nil, status.ErrBadChunk
			}

			c.state = eDone
			if i+1 < len(data) {
				c.client.Pushback(data[i+1:])
			}

			return nil, nil
		}
	}

	return nil, nil
}

func unhex(char byte) byte {
	switch {
	case char >= '0' && char <= '9':
		return char - '0'
	case char >= 'a' && char <= 'f':
		return char - 'a' + 10
	case char >= 'A' && char <= 'F':
		return char - 'A' + 10
	default:
		return 0xff
	}
}
