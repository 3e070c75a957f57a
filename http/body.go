package http

import (
	"io"

	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// BodyReader serves a message body as a pull-based sequence of chunks.
// Fetch returns the next piece; the final piece may arrive together with
// io.EOF, and once the body is complete every further call returns
// (nil, io.EOF). Length reports the declared size when it is known upfront.
type BodyReader interface {
	Fetch() ([]byte, error)
	Length() (n int, known bool)
}

// Body is the user-facing wrapper over a BodyReader, adding whole-body
// convenience accessors on top of the streaming contract.
type Body struct {
	reader BodyReader
	buff   []byte
	err    error
}

func NewBody(reader BodyReader) *Body {
	return &Body{
		reader: reader,
	}
}

func (b *Body) Fetch() ([]byte, error) {
	return b.reader.Fetch()
}

func (b *Body) Length() (int, bool) {
	return b.reader.Length()
}

// Callback invokes cb for every non-empty piece of the body. The first
// error, either from the reader or the callback, stops the iteration and is
// returned.
func (b *Body) Callback(cb func([]byte) error) error {
	for {
		data, err := b.Fetch()
		if len(data) > 0 {
			if cberr := cb(data); cberr != nil {
				return cberr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}

// Bytes returns the whole body at once. The result is cached, so repeated
// calls are cheap.
func (b *Body) Bytes() ([]byte, error) {
	if b.buff == nil && b.err == nil {
		b.err = b.Callback(func(piece []byte) error {
			b.buff = append(b.buff, piece...)
			return nil
		})
		if b.buff == nil {
			b.buff = []byte{}
		}
	}

	return b.buff, b.err
}

// String returns the whole body as a string.
func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()
	return uf.B2S(bytes), err
}

// JSON decodes the whole body into v.
func (b *Body) JSON(v any) error {
	bytes, err := b.Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(bytes, v)
}

// Discard drains the body to completion, leaving the underlying stream
// positioned at the next message boundary.
func (b *Body) Discard() error {
	for {
		_, err := b.Fetch()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}
