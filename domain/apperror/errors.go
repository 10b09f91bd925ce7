// Package apperror defines the error kinds shared by every module.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindInternal        Kind = "internal"
)

var kinds = []Kind{KindInvalidArgument, KindNotFound, KindInvalidState, KindInternal}

var (
	// ErrInvalidArgument is matched by every invalid_argument error.
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	// ErrNotFound is matched by every not_found error.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrInvalidState is matched by every invalid_state error.
	ErrInvalidState = &Error{Kind: KindInvalidState}
	// ErrInternal is matched by every internal error.
	ErrInternal = &Error{Kind: KindInternal}
)

// Error is a classified failure. Its text is "<kind>: <message>" so the
// kind survives a trip through a request-reply service.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns an invalid_argument error.
func InvalidArgument(format string, args ...any) error {
	return newf(KindInvalidArgument, format, args...)
}

// NotFound returns a not_found error.
func NotFound(format string, args ...any) error {
	return newf(KindNotFound, format, args...)
}

// InvalidState returns an invalid_state error.
func InvalidState(format string, args ...any) error {
	return newf(KindInvalidState, format, args...)
}

// Internal wraps an unexpected storage or transport failure.
func Internal(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &Error{Kind: KindInternal, Message: msg}
}

// KindOf returns the kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FromRemote restores the kind of an error received from another module.
// Request-reply transport flattens errors to text, so the "<kind>: " marker
// is looked up inside the message.
func FromRemote(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	msg := err.Error()
	for _, k := range kinds {
		marker := string(k) + ": "
		if idx := strings.Index(msg, marker); idx >= 0 {
			return &Error{Kind: k, Message: msg[idx+len(marker):]}
		}
	}
	return &Error{Kind: KindInternal, Message: msg}
}
