package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by who can do something about it.
type Kind string

const (
	// KindTransport covers URLs that are malformed, unreachable or empty.
	KindTransport Kind = "TRANSPORT"
	// KindService covers embedding, LLM and vector store outages.
	KindService Kind = "SERVICE"
	// KindLogic covers requests that are invalid for the current bot state.
	KindLogic Kind = "LOGIC"
	// KindUnknown is returned by KindOf for errors that were never classified.
	KindUnknown Kind = "UNKNOWN"
)

// Error wraps an underlying error with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Transport(op string, err error) error {
	return New(KindTransport, op, err)
}

func Service(op string, err error) error {
	return New(KindService, op, err)
}

func Logic(op string, err error) error {
	return New(KindLogic, op, err)
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
