// Package failure classifies errors crossing component boundaries so callers can
// tell fatal configuration problems apart from remote calls worth retrying.
package failure

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindProvider
	KindTransient
	KindRemote
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindProvider:
		return "provider"
	case KindTransient:
		return "transient"
	case KindRemote:
		return "remote"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Error carries the kind of a failure and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with kind. An err that is already classified keeps its kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return &Error{Kind: fe.Kind, Op: op, Err: err}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) error { return Wrap(KindConfiguration, op, err) }
func Provider(op string, err error) error      { return Wrap(KindProvider, op, err) }
func Transient(op string, err error) error     { return Wrap(KindTransient, op, err) }
func Remote(op string, err error) error        { return Wrap(KindRemote, op, err) }
func Application(op string, err error) error   { return Wrap(KindApplication, op, err) }

// KindOf returns the outermost classification found in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsRemote reports whether err came from an external service, retryable or not.
func IsRemote(err error) bool {
	k := KindOf(err)
	return k == KindTransient || k == KindRemote
}

// FromHTTPStatus classifies a remote response status: throttling and server-side
// failures are transient, everything else is not worth retrying.
func FromHTTPStatus(op string, status int, err error) error {
	if status == 429 || status >= 500 {
		return Transient(op, err)
	}
	return Remote(op, err)
}
