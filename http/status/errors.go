package status

import "errors"

// HTTPError is an error carrying the protocol status code it must be
// answered with. Every protocol-level failure in the pipeline is one of
// these; transport failures are not and never carry a code.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// From extracts the status code from an error. Errors without a code
// (handler failures, transport errors wrongly reaching the response path)
// default to 500 Internal Server Error.
func From(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

// IsProtocol reports whether the error carries a protocol status code,
// i.e. deserves a best-effort error response before the connection closes.
func IsProtocol(err error) bool {
	var httpErr HTTPError
	return errors.As(err, &httpErr)
}

var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrMalformedRequest     = NewError(BadRequest, "malformed request line")
	ErrBadHeader            = NewError(BadRequest, "malformed header field")
	ErrBadContentLength     = NewError(BadRequest, "malformed Content-Length value")
	ErrBadChunk             = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBodyNotAllowed       = NewError(BadRequest, "request method does not allow a body")
	ErrUnexpectedEOF        = NewError(BadRequest, "connection closed mid-message")
	ErrNotFound             = NewError(NotFound, "not found")
	ErrMethodNotAllowed     = NewError(MethodNotAllowed, "method not allowed")
	ErrMethodNotImplemented = NewError(NotImplemented, "request method is not supported")
	ErrHeadersTooLarge      = NewError(RequestEntityTooLarge, "too large headers section")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrUnsupportedProto     = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrInternalServer       = NewError(InternalServerError, "internal server error")
)
