package body

import (
	"io"

	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/internal/strutil"
	"github.com/seine-net/seine/transport"
)

// New selects the body reader variant for a parsed request and fills in the
// request's ContentLength and Chunked fields along the way:
//
//  1. methods that carry no body get a zero-length in-memory reader, and a
//     length or chunked marker on such a method is a protocol error;
//  2. a Content-Length header selects the known-length reader;
//  3. Transfer-Encoding: chunked selects the chunked reader;
//  4. otherwise the body is read until end of stream.
//
// A body longer than maxSize fails with 413: a declared length upfront,
// the other variants as soon as the limit is crossed. Zero means no limit.
func New(client transport.Client, req *http.Request, maxSize int) (http.BodyReader, error) {
	rawLength, hasLength := req.Headers.Get("Content-Length")
	chunked := isChunked(req.Headers.Value("Transfer-Encoding"))

	if !req.Method.HasBody() {
		if hasLength || chunked {
			return nil, status.ErrBodyNotAllowed
		}

		return NewMemory(nil), nil
	}

	if hasLength {
		length, err := parseLength(rawLength)
		if err != nil {
			return nil, err
		}

		if maxSize > 0 && length > maxSize {
			return nil, status.ErrBodyTooLarge
		}

		req.ContentLength = length
		if length == 0 {
			return NewMemory(nil), nil
		}

		return NewFixed(client, length), nil
	}

	if chunked {
		req.Chunked = true
		return newCapped(NewChunked(client), maxSize), nil
	}

	return newCapped(NewUntilEOF(client), maxSize), nil
}

func isChunked(transferEncoding string) bool {
	return strutil.CmpFold(transferEncoding, "chunked")
}

func parseLength(raw string) (int, error) {
	if len(raw) == 0 {
		return 0, status.ErrBadContentLength
	}

	var n int
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, status.ErrBadContentLength
		}

		n = n*10 + int(c-'0')
		if n < 0 {
			return 0, status.ErrBadContentLength
		}
	}

	return n, nil
}

// fixed serves exactly the declared number of body bytes, pushing whatever
// arrives past the boundary back to the client: those bytes belong to the
// next pipelined request.
type fixed struct {
	client    transport.Client
	total     int
	remaining int
}

func NewFixed(client transport.Client, length int) http.BodyReader {
	return &fixed{
		client:    client,
		total:     length,
		remaining: length,
	}
}

func (f *fixed) Length() (int, bool) {
	return f.total, true
}

func (f *fixed) Fetch() ([]byte, error) {
	if f.remaining == 0 {
		return nil, io.EOF
	}

	data, err := f.client.Read()
	switch err {
	case nil:
	case io.EOF:
		return nil, status.ErrUnexpectedEOF
	default:
		return nil, err
	}

	if len(data) >= f.remaining {
		body := data[:f.remaining]
		if extra := data[f.remaining:]; len(extra) > 0 {
			f.client.Pushback(extra)
		}

		f.remaining = 0

		return body, io.EOF
	}

	f.remaining -= len(data)

	return data, nil
}

// untilEOF proxies reads straight to the stream until it ends. Its length
// is unknown upfront.
type untilEOF struct {
	client transport.Client
	done   bool
}

func NewUntilEOF(client transport.Client) http.BodyReader {
	return &untilEOF{client: client}
}

func (*untilEOF) Length() (int, bool) {
	return 0, false
}

func (u *untilEOF) Fetch() ([]byte, error) {
	if u.done {
		return nil, io.EOF
	}

	data, err := u.client.Read()
	if err == io.EOF {
		u.done = true
		return data, io.EOF
	}

	return data, err
}

// capped enforces a total size limit on a reader whose length isn't known
// upfront.
type capped struct {
	inner http.BodyReader
	left  int
}

func newCapped(inner http.BodyReader, maxSize int) http.BodyReader {
	if maxSize <= 0 {
		return inner
	}

	return &capped{
		inner: inner,
		left:  maxSize,
	}
}

func (c *capped) Length() (int, bool) {
	return c.inner.Length()
}

func (c *capped) Fetch() ([]byte, error) {
	data, err := c.inner.Fetch()
	if c.left -= len(data); c.left < 0 {
		return nil, status.ErrBodyTooLarge
	}

	return data, err
}

// memory serves a single pre-materialized buffer.
type memory struct {
	buff []byte
	done bool
}

func NewMemory(buff []byte) http.BodyReader {
	return &memory{buff: buff}
}

func (m *memory) Length() (int, bool) {
	return len(m.buff), true
}

func (m *memory) Fetch() ([]byte, error) {
	if m.done {
		return nil, io.EOF
	}

	m.done = true

	return m.buff, io.EOF
}
