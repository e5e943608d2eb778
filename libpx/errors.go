package libpx

import "fmt"

// SQLSTATEs synthesized by this core itself rather than received from the
// server.
const (
	sqlStateIOError              = "58030"
	sqlStateAuthenticationFailed = "28P01"
)

// ServerError is a structured PostgreSQL error, either one the server sent
// verbatim (ErrorResponse) or one synthesized locally for an I/O or
// authentication failure using the same shape.
type ServerError struct {
	Severity         string
	Code             string
	Message          string
	Detail           string
	Hint             string
	Position         string
	InternalPosition string
	InternalQuery    string
	Where            string
	File             string
	Line             string
	Routine          string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Severity, e.Message, e.Code)
}

// SQLState returns the error's SQLSTATE code.
func (e *ServerError) SQLState() string {
	return e.Code
}

func newIOServerError(detail string) *ServerError {
	return &ServerError{Severity: "ERROR", Code: sqlStateIOError, Message: "io error", Detail: detail}
}

func newAuthenticationFailedError() *ServerError {
	return &ServerError{Severity: "ERROR", Code: sqlStateAuthenticationFailed, Message: "authentication failure"}
}

// ErrorKind distinguishes the non-server error conditions this core
// surfaces, mirrored one-to-one onto the kinds named for this protocol
// client.
type ErrorKind int

const (
	_ ErrorKind = iota
	ErrNotClosed
	ErrInvalidHost
	ErrCannotSendStartup
	ErrAuthenticationNeeded
	ErrAuthenticationFailed
	ErrUnrecognizedServerMessage
	ErrServerError
	ErrIOError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotClosed:
		return "NotClosed"
	case ErrInvalidHost:
		return "InvalidHost"
	case ErrCannotSendStartup:
		return "CannotSendStartup"
	case ErrAuthenticationNeeded:
		return "AuthenticationNeeded"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrUnrecognizedServerMessage:
		return "UnrecognizedServerMessage"
	case ErrServerError:
		return "ServerError"
	case ErrIOError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// ConnectionError wraps any of the library's own error kinds (as opposed to
// a ServerError, which carries the server's own structured fields). It
// mirrors pgconn's connectError/pgconnError split: a short message, an
// optional wrapped cause, and whether retrying is safe.
type ConnectionError struct {
	Kind        ErrorKind
	msg         string
	err         error
	safeToRetry bool
}

func newConnectionError(kind ErrorKind, msg string, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, msg: msg, err: err}
}

func (e *ConnectionError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.msg, e.err.Error())
}

func (e *ConnectionError) Unwrap() error {
	return e.err
}

// SafeToRetry reports whether the failure is guaranteed to have happened
// before any bytes reached the server — a fresh connection attempt carries
// no risk of double-executing a command.
func (e *ConnectionError) SafeToRetry() bool {
	return e.safeToRetry
}

// IOError is a ConnectionError of kind ErrIOError. It is not itself a
// *ServerError; AsServerError builds the equivalent ServerError shape
// (SQLSTATE 58030) on request.
type IOError struct {
	ConnectionError
}

func newIOError(msg string, err error, safeToRetry bool) *IOError {
	ce := newConnectionError(ErrIOError, msg, err)
	ce.safeToRetry = safeToRetry
	return &IOError{ConnectionError: *ce}
}

// AsServerError reports the equivalent structured server-error shape for an
// IOError, for callers that branch uniformly on *ServerError.
func (e *IOError) AsServerError() *ServerError {
	return newIOServerError(e.msg)
}
