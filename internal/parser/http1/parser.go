package http1

import (
	"bytes"

	"github.com/indigo-web/utils/uf"
	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/method"
	"github.com/seine-net/seine/http/proto"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/internal/strutil"
	"github.com/seine-net/seine/kv"
)

var crlf = []byte("\r\n")

// Parse builds a request out of exactly one header block, the blank-line
// terminator excluded. Field strings alias the input and share its
// lifetime. A block with zero header lines is valid.
func Parse(block []byte) (*http.Request, error) {
	line, rest, found := bytes.Cut(block, crlf)
	if !found {
		line, rest = block, nil
	}

	req, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	for len(rest) > 0 {
		line, rest, _ = bytes.Cut(rest, crlf)
		key, value, err := parseFieldLine(line)
		if err != nil {
			return nil, err
		}

		req.Headers.Add(key, value)
	}

	return req, nil
}

func parseRequestLine(line []byte) (*http.Request, error) {
	rawMethod, rest, found := bytes.Cut(line, []byte(" "))
	if !found {
		return nil, status.ErrMalformedRequest
	}

	m := method.Parse(uf.B2S(rawMethod))
	if m == method.Unknown {
		return nil, status.ErrMethodNotImplemented
	}

	target, rawProto, found := bytes.Cut(rest, []byte(" "))
	if !found || len(target) == 0 || bytes.IndexByte(rawProto, ' ') != -1 {
		return nil, status.ErrMalformedRequest
	}

	p := proto.FromBytes(rawProto)
	if p == proto.Unknown {
		if !bytes.HasPrefix(rawProto, []byte("HTTP/")) {
			return nil, status.ErrMalformedRequest
		}

		return nil, status.ErrUnsupportedProto
	}

	return http.NewRequest(m, uf.B2S(target), p, kv.New()), nil
}

func parseFieldLine(line []byte) (key, value string, err error) {
	colon := bytes.IndexByte(line, ':')
	if colon < 1 {
		return "", "", status.ErrBadHeader
	}

	name := line[:colon]
	for _, c := range name {
		if c < 0x21 || c == 0x7f {
			return "", "", status.ErrBadHeader
		}
	}

	return uf.B2S(name), strutil.TrimWS(uf.B2S(line[colon+1:])), nil
}
