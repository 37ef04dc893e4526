package guess

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a submission or query was rejected.
type Kind int

const (
	KindUnknown Kind = iota
	Unauthenticated
	InvalidRequest
	LocationNotFound
	Forbidden
	InsufficientPoints
	PersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "Unauthenticated"
	case InvalidRequest:
		return "InvalidRequest"
	case LocationNotFound:
		return "LocationNotFound"
	case Forbidden:
		return "Forbidden"
	case InsufficientPoints:
		return "InsufficientPoints"
	case PersistenceFailure:
		return "PersistenceFailure"
	default:
		return "Unknown"
	}
}

// HTTPStatus is the stable status code reported for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidRequest:
		return http.StatusBadRequest
	case LocationNotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case InsufficientPoints:
		return http.StatusPaymentRequired
	case PersistenceFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable error code used in response bodies and metrics.
func (k Kind) Code() string {
	switch k {
	case Unauthenticated:
		return "UNAUTHENTICATED"
	case InvalidRequest:
		return "INVALID_REQUEST"
	case LocationNotFound:
		return "LOCATION_NOT_FOUND"
	case Forbidden:
		return "FORBIDDEN"
	case InsufficientPoints:
		return "INSUFFICIENT_POINTS"
	case PersistenceFailure:
		return "PERSISTENCE_FAILURE"
	default:
		return "INTERNAL"
	}
}

// Retryable reports whether the same request may succeed later.
func (k Kind) Retryable() bool { return k == PersistenceFailure }

// Error is the typed failure returned by Service.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }
