package backend

import "fmt"

// ErrorKind classifies what went wrong talking to the backend.
type ErrorKind string

const (
	// ErrTransport covers network-level failures (dial, timeout, reset).
	ErrTransport ErrorKind = "transport"
	// ErrStatus covers non-2xx HTTP responses.
	ErrStatus ErrorKind = "status"
	// ErrRejected covers well-formed responses whose application-level
	// status field is not "success".
	ErrRejected ErrorKind = "rejected"
	// ErrDecode covers malformed or unexpected response bodies.
	ErrDecode ErrorKind = "decode"
)

// APIError is the single error type surfaced by the client. Message is
// the server-provided message when one exists, otherwise derived from
// the HTTP status.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s error: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("backend %s error (HTTP %d)", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

func transportErr(err error) *APIError {
	return &APIError{Kind: ErrTransport, Err: err}
}

func statusErr(code int, body string) *APIError {
	return &APIError{Kind: ErrStatus, StatusCode: code, Message: body}
}

func rejectedErr(message string) *APIError {
	if message == "" {
		message = "request rejected by backend"
	}
	return &APIError{Kind: ErrRejected, Message: message}
}

func decodeErr(err error) *APIError {
	return &APIError{Kind: ErrDecode, Err: err}
}
