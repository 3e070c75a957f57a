package render

import (
	"io"
	"strconv"

	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/proto"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/internal/strutil"
	"github.com/seine-net/seine/kv"
	"github.com/seine-net/seine/transport"
)

const crlf = "\r\n"

// Serializer renders responses onto a client. It owns body framing
// exclusively: a known-length body gets a computed Content-Length, an
// unknown-length one gets chunked transfer encoding. A caller that supplies
// either header itself violates the contract and gets a panic, not a
// protocol error.
type Serializer struct {
	buff           []byte
	defaultHeaders map[string]string
}

func NewSerializer(initialBuffSize int, defaultHeaders map[string]string) *Serializer {
	return &Serializer{
		buff:           make([]byte, 0, initialBuffSize),
		defaultHeaders: defaultHeaders,
	}
}

// Write serializes the response and sends it to the client, pulling an
// attached body stream to exhaustion.
func (s *Serializer) Write(protocol proto.Proto, resp *http.Response, client transport.Client) error {
	fields := resp.Expose()
	if protocol == proto.Unknown {
		protocol = proto.HTTP11
	}

	s.buff = s.buff[:0]
	s.appendStatusLine(protocol, fields.Code)
	s.appendHeaders(fields.Headers)

	if fields.Stream == nil {
		return s.writeInMemory(fields.Body, client)
	}

	if length, known := fields.Stream.Length(); known {
		return s.writeSized(fields.Stream, length, client)
	}

	return s.writeChunked(fields.Stream, client)
}

func (s *Serializer) appendStatusLine(protocol proto.Proto, code status.Code) {
	s.buff = append(s.buff, protocol.String()...)
	s.buff = append(s.buff, ' ')
	s.buff = strconv.AppendUint(s.buff, uint64(code), 10)
	s.buff = append(s.buff, ' ')

	text := status.Text(code)
	if len(text) == 0 {
		text = "Unknown Status"
	}

	s.buff = append(s.buff, text...)
	s.buff = append(s.buff, crlf...)
}

func (s *Serializer) appendHeaders(headers *kv.Storage) {
	for key, value := range headers.Iter() {
		if strutil.CmpFold(key, "Content-Length") || strutil.CmpFold(key, "Transfer-Encoding") {
			panic("render: response headers must not declare body framing: " + key)
		}

		s.appendHeader(key, value)
	}

	for key, value := range s.defaultHeaders {
		if !headers.Has(key) {
			s.appendHeader(key, value)
		}
	}
}

func (s *Serializer) appendHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ": "...)
	s.buff = append(s.buff, value...)
	s.buff = append(s.buff, crlf...)
}

func (s *Serializer) appendContentLength(length int) {
	s.buff = append(s.buff, "Content-Length: "...)
	s.buff = strconv.AppendInt(s.buff, int64(length), 10)
	s.buff = append(s.buff, crlf...)
}

func (s *Serializer) writeInMemory(body []byte, client transport.Client) error {
	s.appendContentLength(len(body))
	s.buff = append(s.buff, crlf...)
	s.buff = append(s.buff, body...)

	return client.Write(s.buff)
}

func (s *Serializer) writeSized(stream http.BodyReader, length int, client transport.Client) error {
	s.appendContentLength(length)
	s.buff = append(s.buff, crlf...)
	if err := client.Write(s.buff); err != nil {
		return err
	}

	written := 0
	for {
		piece, err := stream.Fetch()
		if written += len(piece); written > length {
			return status.ErrInternalServer
		}

		if len(piece) > 0 {
			if werr := client.Write(piece); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			if written != length {
				return status.ErrInternalServer
			}

			return nil
		default:
			return err
		}
	}
}

func (s *Serializer) writeChunked(stream http.BodyReader, client transport.Client) error {
	s.appendHeader("Transfer-Encoding", "chunked")
	s.buff = append(s.buff, crlf...)
	if err := client.Write(s.buff); err != nil {
		return err
	}

	for {
		piece, err := stream.Fetch()
		if len(piece) > 0 {
			if werr := s.writeChunk(piece, client); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return client.Write([]byte("0\r\n\r\n"))
		default:
			return err
		}
	}
}

func (s *Serializer) writeChunk(piece []byte, client transport.Client) error {
	s.buff = strconv.AppendUint(s.buff[:0], uint64(len(piece)), 16)
	s.buff = append(s.buff, crlf...)
	s.buff = append(s.buff, piece...)
	s.buff = append(s.buff, crlf...)

	return client.Write(s.buff)
}
