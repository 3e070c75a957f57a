package line

import (
	"bytes"
	"io"

	"go.uber.org/zap"

	"github.com/seine-net/seine/internal/buffer"
	"github.com/seine-net/seine/internal/framing"
	"github.com/seine-net/seine/transport"
)

// Handler receives one '\n'-terminated message, delimiter included, and
// returns the reply to write back. A nil or empty reply writes nothing.
type Handler func(message []byte) []byte

var (
	quit = []byte("quit\n")
	bye  = []byte("Bye\n")
)

// Server drives the line-delimited text protocol: frame a line, dispatch
// it, write the reply. The literal message "quit\n" is a sentinel answered
// with "Bye\n" followed by connection close; it never reaches the handler.
type Server struct {
	handler Handler
	framer  framing.Line
	buff    buffer.Buffer
	log     *zap.Logger
}

func NewServer(handler Handler, log *zap.Logger) *Server {
	return &Server{
		handler: handler,
		log:     log,
	}
}

func (s *Server) Serve(client transport.Client) {
	for s.exchange(client) {
	}

	_ = client.Close()
}

func (s *Server) exchange(client transport.Client) bool {
	message, err := s.nextMessage(client)
	if err != nil {
		if err != io.EOF {
			s.log.Debug("line read failed", zap.Error(err))
		}

		return false
	}

	if bytes.Equal(message, quit) {
		_ = client.Write(bye)
		return false
	}

	if reply := s.handler(message); len(reply) > 0 {
		if err := client.Write(reply); err != nil {
			s.log.Debug("reply write failed", zap.Error(err))
			return false
		}
	}

	return true
}

func (s *Server) nextMessage(client transport.Client) ([]byte, error) {
	for {
		if message, _ := s.framer.TryCut(&s.buff); message != nil {
			return message, nil
		}

		data, err := client.Read()
		if err != nil {
			// a trailing unterminated fragment is dropped with the connection
			return nil, err
		}

		s.buff.Append(data)
	}
}
