// Package seine reconstructs discrete protocol messages out of a raw TCP
// byte stream and implements an HTTP/1.1 request/response cycle on top of
// it: framing, parsing, lazy body streaming and response serialization,
// with one goroutine per connection and no buffering beyond one transport
// chunk ahead of the consumer.
package seine

import (
	"context"
	"errors"
	"net"

	"github.com/ridge/parallel"
	"go.uber.org/zap"

	"github.com/seine-net/seine/config"
	httpsrv "github.com/seine-net/seine/internal/server/http"
	"github.com/seine-net/seine/internal/server/line"
	"github.com/seine-net/seine/internal/server/tcp"
	"github.com/seine-net/seine/router"
	"github.com/seine-net/seine/transport"
)

// App binds an address to one of the two connection drivers: the HTTP/1.1
// one or the line-delimited text one.
type App struct {
	addr string
	cfg  *config.Config
	log  *zap.Logger
	srv  *tcp.Server
}

func New(addr string) *App {
	return &App{
		addr: addr,
		cfg:  config.Default(),
		log:  zap.NewNop(),
	}
}

// Tune replaces the default configuration.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Log sets the logger. The core pipeline never logs; only the accept loop
// and connection teardown paths do.
func (a *App) Log(log *zap.Logger) *App {
	a.log = log
	return a
}

// Serve accepts connections and drives each through the HTTP request/
// response cycle, dispatching into r. It blocks until the context is
// canceled or the listener fails.
func (a *App) Serve(ctx context.Context, r router.Router) error {
	return a.run(ctx, func(client transport.Client) {
		httpsrv.NewServer(a.cfg, r, a.log).Serve(client)
	})
}

// ServeLine is Serve for the line-delimited text protocol.
func (a *App) ServeLine(ctx context.Context, handler line.Handler) error {
	return a.run(ctx, func(client transport.Client) {
		line.NewServer(handler, a.log).Serve(client)
	})
}

// GracefulShutdown stops accepting new connections, leaving live ones to
// finish.
func (a *App) GracefulShutdown() error {
	if a.srv == nil {
		return nil
	}

	return a.srv.GracefulShutdown()
}

func (a *App) run(ctx context.Context, onConn func(transport.Client)) error {
	sock, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}

	a.srv = tcp.NewServer(sock, func(conn net.Conn) {
		buff := make([]byte, a.cfg.NET.ReadBufferSize)
		onConn(transport.NewClient(conn, a.cfg.NET.ReadTimeout, buff))
	}, a.log)

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("listener", parallel.Exit, func(ctx context.Context) error {
			err := a.srv.Start()
			if errors.Is(err, tcp.ErrShutdown) {
				return nil
			}

			return err
		})
		spawn("shutdown", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			_ = a.srv.Stop()

			return ctx.Err()
		})

		return nil
	})
}
