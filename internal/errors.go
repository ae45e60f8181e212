package internal

import (
	"errors"
	"net/http"
)

var (
	// ErrRouteNotFound is returned by Dispatch when no route matches.
	ErrRouteNotFound = errors.New("restina: route not found")

	// ErrDuplicateRoute is returned when two endpoints declare the same
	// method and path under RejectDuplicates.
	ErrDuplicateRoute = errors.New("restina: duplicate route")

	// ErrInvalidRoute is returned for patterns the router cannot compile.
	ErrInvalidRoute = errors.New("restina: invalid route pattern")

	// ErrCorruptTable is returned when a serialized table cannot be decoded.
	ErrCorruptTable = errors.New("restina: corrupt route table")

	// ErrNilController is returned when a nil controller is registered.
	ErrNilController = errors.New("restina: nil controller")

	// ErrHandlerPanic wraps a value recovered from a panicking handler.
	ErrHandlerPanic = errors.New("restina: handler panicked")
)

// Messages written for the two dispatch error kinds.
const (
	validationErrorTitle = "Validation Error"
	internalErrorTitle   = "Internal Error"
)

// ErrorBody is the JSON body of 400 and 500 dispatch responses.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPError is a transport-level failure written by the HTTP adapter
// outside of dispatch (unknown route, method mismatch, hook failure).
type HTTPError struct {
	// Err is logged, never written.
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

func (e *HTTPError) StatusText() string { return http.StatusText(e.Code) }

// NewHTTPError creates an HTTPError. An empty message uses the status text.
func NewHTTPError(code int, message string, err error) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{Code: code, Message: message, Err: err}
}

// AsHTTPError extracts an HTTPError from err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// Body returns the JSON error body for e.
func (e *HTTPError) Body() ErrorBody {
	if e.Code == http.StatusInternalServerError {
		return ErrorBody{Error: internalErrorTitle, Message: e.Message}
	}
	return ErrorBody{Error: e.StatusText(), Message: e.Message}
}
