package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common application errors
var (
	ErrNotFound   = NotFound("Not Found")
	ErrInternal   = Internal("Internal Server Error", nil)
	ErrBadRequest = BadRequest("Bad Request")
)

// Error is an error classified by an HTTP status code.
// Message is what clients see; Err is the optional cause and is never
// exposed to clients.
type Error struct {
	Status  int
	Message string
	Err     error
}

// New creates a new classified error
func New(status int, message string) *Error {
	return &Error{
		Status:  status,
		Message: message,
	}
}

// BadRequest creates a 400 error
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// NotFound creates a 404 error
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict creates a 409 error
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// PayloadTooLarge creates a 413 error
func PayloadTooLarge(message string) *Error {
	return New(http.StatusRequestEntityTooLarge, message)
}

// Internal creates a 500 error wrapping err
func Internal(message string, err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same status and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

// GRPCStatus returns the gRPC status for this error
func (e *Error) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Status), e.Message)
}

func grpcCode(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusRequestEntityTooLarge:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status of err, 500 when unclassified.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-facing message of err.
// Unclassified and 5xx errors collapse to the generic internal message.
func MessageOf(err error) string {
	e, ok := As(err)
	if !ok || StatusOf(err) >= http.StatusInternalServerError {
		return ErrInternal.Message
	}
	return e.Message
}
