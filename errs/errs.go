// Package errs defines the error taxonomy shared by every codec in colcodec.
//
// Codec functions never panic on bad input. They return an *Error whose Kind tells
// the caller what went wrong:
//
//   - KindCapacity: the destination buffer is too small
//   - KindMalformed: the encoded input is invalid or truncated
//   - KindInvalidArgument: a parameter is outside its valid range
//
// Each kind has a matching sentinel, so errors.Is works without unwrapping by hand:
//
//	n, err := compress.LZ4DecompressBlock(dst, src)
//	if errors.Is(err, errs.ErrCapacity) {
//	    // grow dst and retry
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind is the category of a codec error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCapacity
	KindMalformed
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindMalformed:
		return "malformed input"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

var (
	// ErrCapacity reports a destination buffer too small for the result.
	ErrCapacity = errors.New("insufficient destination capacity")
	// ErrMalformed reports invalid, inconsistent or truncated encoded input.
	ErrMalformed = errors.New("malformed input")
	// ErrInvalidArgument reports a parameter outside its valid range.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is a codec error annotated with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}

	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so callers can test the category
// even when the cause is a more specific error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrCapacity:
		return e.Kind == KindCapacity
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	}

	return false
}

// Capacity builds a KindCapacity error for op.
func Capacity(op string, format string, args ...any) error {
	return &Error{Kind: KindCapacity, Op: op, Err: fmt.Errorf(format, args...)}
}

// Malformed builds a KindMalformed error for op.
func Malformed(op string, format string, args ...any) error {
	return &Error{Kind: KindMalformed, Op: op, Err: fmt.Errorf(format, args...)}
}

// InvalidArgument builds a KindInvalidArgument error for op.
func InvalidArgument(op string, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches op and kind to an existing error. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err, or KindUnknown when err is not a codec error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}
