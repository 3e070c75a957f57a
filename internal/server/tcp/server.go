package tcp

import (
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// ErrShutdown is returned by Start after the listener was brought down on
// purpose rather than by a transport failure.
var ErrShutdown = errors.New("tcp: server shutdown")

type onConnection func(net.Conn)

// Server owns the accept loop and the set of live connections. Each
// connection is served by its own goroutine; no state is shared between
// them.
type Server struct {
	sock     net.Listener
	onConn   onConnection
	log      *zap.Logger
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	shutdown bool
}

func NewServer(sock net.Listener, onConn onConnection, log *zap.Logger) *Server {
	return &Server{
		sock:   sock,
		onConn: onConn,
		log:    log,
		conns:  map[net.Conn]struct{}{},
	}
}

func (s *Server) Start() error {
	wg := new(sync.WaitGroup)

	for {
		conn, err := s.sock.Accept()
		if err != nil {
			wg.Wait()

			s.mu.Lock()
			down := s.shutdown
			s.mu.Unlock()
			if down {
				return ErrShutdown
			}

			s.log.Error("accept failed", zap.Error(err))

			return err
		}

		s.log.Debug("connection accepted", zap.Stringer("remote", conn.RemoteAddr()))
		s.track(conn)
		wg.Add(1)
		go s.connHandler(wg, conn)
	}
}

func (s *Server) stopListener() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	return s.sock.Close()
}

// Stop shuts the listener and ALL the connections down.
func (s *Server) Stop() error {
	if err := s.stopListener(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}

	return nil
}

// GracefulShutdown stops the listener, leaving live connections free to end
// their lives peacefully.
func (s *Server) GracefulShutdown() error {
	return s.stopListener()
}

func (s *Server) connHandler(wg *sync.WaitGroup, conn net.Conn) {
	s.onConn(conn)
	wg.Done()
	s.untrack(conn)
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
