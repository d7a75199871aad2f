package failure

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the failure classes. Retry and propagation policies branch on it.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindClient     Kind = "client"
	KindServer     Kind = "server"
	KindTimeout    Kind = "timeout"
)

// ErrStale is returned when a response arrives for a session that is no longer current.
var ErrStale = errors.New("Response belongs to a superseded session")

// Error is the tagged error returned by the request client and the round state machine.
type Error struct {
	Kind Kind
	// HTTP status of the response. 0 if no response was received.
	Status    int
	Op        string
	SessionID string
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s error", e.Kind)
	if e.Op != "" {
		s = fmt.Sprintf("%s in %s", s, e.Op)
	}
	if e.Status != 0 {
		s = fmt.Sprintf("%s (status %d)", s, e.Status)
	}
	if e.Msg != "" {
		s = fmt.Sprintf("%s: %s", s, e.Msg)
	}
	if e.Err != nil {
		s = fmt.Sprintf("%s: %s", s, e.Err)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindServer, KindTimeout:
		return true
	}
	return false
}

// WithSession returns a copy of the error tagged with the session ID.
func (e *Error) WithSession(sessionID string) *Error {
	c := *e
	c.SessionID = sessionID
	return &c
}

// KindOf returns the kind of the first *Error in the chain, or "" if there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// StatusOf returns the HTTP status carried by the error, or 0.
func StatusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}

func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

func Validation(op string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func Client(op string, status int, msg string) *Error {
	return &Error{Kind: KindClient, Op: op, Status: status, Msg: msg}
}

func Server(op string, status int, msg string) *Error {
	return &Error{Kind: KindServer, Op: op, Status: status, Msg: msg}
}

func Timeout(op string, msg string) *Error {
	return &Error{Kind: KindTimeout, Op: op, Msg: msg}
}
