package reorder

import (
	"errors"
	"fmt"
)

// Kind classifies why a persist was rejected.
type Kind int

const (
	// KindTransport covers network failures, timeouts and 5xx answers.
	KindTransport Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "transport"
	}
}

// Error is a rejected load or persist. errors.Is matches the sentinel of
// the same Kind.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s error (%d %s): %s", e.Kind, e.Status, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrTransport  = &Error{Kind: KindTransport}
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
)

// ErrPersistInFlight is returned for commands issued while the previous
// batch of the list is still being persisted.
var ErrPersistInFlight = errors.New("reorder: a persist is already in flight")

// ErrStaleLoad is returned by Load when a move was applied while the scope
// was being fetched. The fetched order is discarded.
var ErrStaleLoad = errors.New("reorder: scope changed locally during load")

// KindOf returns the Kind of err. Errors that are not *Error are transport
// failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}
