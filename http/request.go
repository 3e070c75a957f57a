package http

import (
	"github.com/seine-net/seine/http/method"
	"github.com/seine-net/seine/http/proto"
	"github.com/seine-net/seine/kv"
)

type Headers = *kv.Storage

// Request is a single parsed HTTP message. It is immutable once built;
// its string fields alias connection-owned memory and must not be retained
// past the handler's return.
type Request struct {
	Method  method.Method
	Target  string
	Proto   proto.Proto
	Headers Headers
	Body    *Body

	// ContentLength is the declared body length; zero when Chunked is set
	// or the length is unknown.
	ContentLength int
	Chunked       bool
}

func NewRequest(m method.Method, target string, p proto.Proto, headers Headers) *Request {
	return &Request{
		Method:  m,
		Target:  target,
		Proto:   p,
		Headers: headers,
	}
}

// Connection returns the value of the Connection header, empty if unset.
func (r *Request) Connection() string {
	return r.Headers.Value("Connection")
}
