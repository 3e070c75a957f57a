package http

import (
	"io"

	"go.uber.org/zap"

	"github.com/seine-net/seine/config"
	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/proto"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/internal/body"
	"github.com/seine-net/seine/internal/buffer"
	"github.com/seine-net/seine/internal/framing"
	"github.com/seine-net/seine/internal/parser/http1"
	"github.com/seine-net/seine/internal/render"
	"github.com/seine-net/seine/internal/strutil"
	"github.com/seine-net/seine/router"
	"github.com/seine-net/seine/transport"
)

const blockTerminatorLength = len("\r\n\r\n")

// Server drives one connection through the request/response cycle: frame a
// header block, parse it, hand the request and its body reader to the
// router, serialize the response, drain what the handler left unread, then
// either loop for the next request or close.
type Server struct {
	router      router.Router
	framer      framing.HeaderBlock
	serializer  *render.Serializer
	maxBodySize int
	buff        buffer.Buffer
	log         *zap.Logger
}

func NewServer(cfg *config.Config, r router.Router, log *zap.Logger) *Server {
	return &Server{
		router:      r,
		framer:      framing.HeaderBlock{MaxSize: cfg.Headers.MaxBlockSize},
		serializer:  render.NewSerializer(cfg.NET.ReadBufferSize, cfg.Headers.Default),
		maxBodySize: cfg.Body.MaxSize,
		buff:        buffer.Buffer{MinGrowth: cfg.NET.BufferMinGrowth},
		log:         log,
	}
}

func (s *Server) Serve(client transport.Client) {
	for s.exchange(client) {
	}

	_ = client.Close()
}

// exchange performs one request/response cycle, reporting whether the
// connection is reusable for the next one.
func (s *Server) exchange(client transport.Client) bool {
	block, err := s.nextMessage(client)
	switch {
	case err == io.EOF:
		// the peer went away between requests
		return false
	case err != nil:
		s.respondError(client, nil, err)
		return false
	}

	req, err := http1.Parse(block[:len(block)-blockTerminatorLength])
	if err != nil {
		s.respondError(client, nil, err)
		return false
	}

	// body bytes buffered past the header block belong to the stream again
	if rest := s.buff.View(); len(rest) > 0 {
		s.buff.Consume(len(rest))
		client.Pushback(rest)
	}

	reader, err := body.New(client, req, s.maxBodySize)
	if err != nil {
		s.respondError(client, req, err)
		return false
	}

	req.Body = http.NewBody(reader)

	resp := s.router.OnRequest(req)
	if resp == nil {
		resp = http.NewResponse()
	}

	if err := s.serializer.Write(req.Proto, resp, client); err != nil {
		s.log.Debug("response write failed", zap.Error(err))
		return false
	}

	if err := req.Body.Discard(); err != nil {
		s.log.Debug("body drain failed", zap.Error(err))
		return false
	}

	return keepAlive(req)
}

// nextMessage accumulates transport chunks until the framer cuts a header
// block. A clean end of stream between messages surfaces as io.EOF; one in
// the middle of a message is a protocol error.
func (s *Server) nextMessage(client transport.Client) ([]byte, error) {
	for {
		block, err := s.framer.TryCut(&s.buff)
		if err != nil {
			return nil, err
		}

		if block != nil {
			return block, nil
		}

		data, err := client.Read()
		switch {
		case err == io.EOF:
			if s.buff.Len() == 0 {
				return nil, io.EOF
			}

			return nil, status.ErrUnexpectedEOF
		case err != nil:
			return nil, err
		}

		s.buff.Append(data)
	}
}

// respondError writes a best-effort error response. Transport failures get
// none: the connection is already beyond saving.
func (s *Server) respondError(client transport.Client, req *http.Request, err error) {
	if !status.IsProtocol(err) {
		s.log.Debug("transport failure", zap.Error(err))
		return
	}

	resp := s.router.OnError(req, err)
	if resp == nil {
		resp = http.Error(err)
	}

	protocol := proto.HTTP11
	if req != nil {
		protocol = req.Proto
	}

	if werr := s.serializer.Write(protocol, resp, client); werr != nil {
		s.log.Debug("error response write failed", zap.Error(werr))
	}
}

func keepAlive(req *http.Request) bool {
	connection := req.Connection()

	switch req.Proto {
	case proto.HTTP11:
		return !strutil.CmpFold(connection, "close")
	case proto.HTTP10:
		return strutil.CmpFold(connection, "keep-alive")
	default:
		return false
	}
}
