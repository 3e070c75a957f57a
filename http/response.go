package http

import (
	"github.com/indigo-web/utils/uf"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/kv"
)

// Fields is the flat view of a built response, consumed by the serializer.
type Fields struct {
	Code    status.Code
	Headers *kv.Storage
	// Body is the in-memory body variant. It is ignored when Stream is set.
	Body []byte
	// Stream, when non-nil, is pulled to exhaustion on write. A known
	// length selects Content-Length framing, an unknown one selects
	// chunked transfer.
	Stream BodyReader
}

// Response is built by handlers through chained calls and serialized by the
// connection driver. Content-Length and Transfer-Encoding are owned by the
// serializer and must never be set as headers here.
type Response struct {
	fields Fields
}

func NewResponse() *Response {
	return &Response{
		fields: Fields{
			Code:    status.OK,
			Headers: kv.New(),
		},
	}
}

// Code sets the response status code.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Header appends a header field. Duplicates are kept in order.
func (r *Response) Header(key, value string) *Response {
	r.fields.Headers.Add(key, value)
	return r
}

// Bytes sets an in-memory response body.
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// String sets an in-memory response body.
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Stream attaches a pull-based body. Its declared length decides between
// Content-Length and chunked framing on the wire.
func (r *Response) Stream(reader BodyReader) *Response {
	r.fields.Stream = reader
	return r
}

func (r *Response) Expose() Fields {
	return r.fields
}

// Error builds a best-effort error response: the status code is taken from
// the error when it carries one, 500 otherwise; protocol errors expose
// their message as the body.
func Error(err error) *Response {
	resp := NewResponse().Code(status.From(err))
	if status.IsProtocol(err) {
		resp.String(err.Error())
	}

	return resp
}
