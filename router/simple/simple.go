package simple

import (
	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/router"
)

type (
	Handler      func(*http.Request) *http.Response
	ErrorHandler func(*http.Request, error) *http.Response
)

type simple struct {
	handler    Handler
	errHandler ErrorHandler
}

// New builds a router out of plain functions. The error handler is
// optional; when nil, errors are answered with http.Error's defaults.
func New(handler Handler, errHandler ErrorHandler) router.Router {
	if errHandler == nil {
		errHandler = func(_ *http.Request, err error) *http.Response {
			return http.Error(err)
		}
	}

	return simple{
		handler:    handler,
		errHandler: errHandler,
	}
}

func (s simple) OnRequest(request *http.Request) *http.Response {
	return s.handler(request)
}

func (s simple) OnError(request *http.Request, err error) *http.Response {
	return s.errHandler(request, err)
}
