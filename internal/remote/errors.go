// ABOUTME: Typed error taxonomy returned by every remote API call.
// ABOUTME: Callers match categories with errors.Is against the Err* sentinels.
package remote

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed remote call.
type ErrorKind int

const (
	KindUnauthorized ErrorKind = iota + 1
	KindNotFound
	KindNetwork
	KindServer
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server error"
	case KindDecode:
		return "decode"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a failed remote call.
type Error struct {
	Kind ErrorKind
	// Op names the gateway operation, e.g. "fetch routines".
	Op string
	// StatusCode is set for errors derived from an HTTP response.
	StatusCode int
	// Message carries the server's message when it sent one.
	Message string
	Err     error
}

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrServer       = &Error{Kind: KindServer}
	ErrDecode       = &Error{Kind: KindDecode}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.StatusCode)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// statusError maps a non-2xx status onto the taxonomy.
func statusError(op string, status int, message string) *Error {
	kind := KindServer
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindUnauthorized
	case http.StatusNotFound:
		kind = KindNotFound
	}
	return &Error{Kind: kind, Op: op, StatusCode: status, Message: message}
}
