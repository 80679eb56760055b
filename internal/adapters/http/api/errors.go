package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)

// opError tags a sentinel kind with the operation that raised it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	}
	return fmt.Sprintf("%s: %v", e.op, e.kind)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *opError) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind returns an error of the given kind raised by op, caused by err.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}
