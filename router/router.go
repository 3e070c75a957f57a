package router

import "github.com/seine-net/seine/http"

// Router is the external collaborator the connection driver dispatches
// into. OnRequest is called once per framed message with the request body
// still unread; the returned response is serialized by the driver. OnError
// is consulted for protocol- and handler-level failures to produce the
// best-effort error response written before the connection closes; a nil
// result falls back to http.Error.
type Router interface {
	OnRequest(request *http.Request) *http.Response
	OnError(request *http.Request, err error) *http.Response
}
