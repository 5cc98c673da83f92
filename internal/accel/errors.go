package accel

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is matched by every *SizeMismatchError.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrTooLarge is matched by every *LimitError.
	ErrTooLarge = errors.New("matrix too large")

	// ErrUnavailable is returned by every operation on builds without CUDA.
	ErrUnavailable error = &FatalError{msg: "CUDA is not enabled / not supported on this platform"}
)

// SizeMismatchError reports an operand whose buffer length does not match
// the declared dimensions.
type SizeMismatchError struct {
	Operand    string
	Got        int
	Rows, Cols int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("matrix %s size mismatch: got %d elements, want %dx%d", e.Operand, e.Got, e.Rows, e.Cols)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

// LimitError reports a shape whose lengths may be consistent but which
// exceeds what the launcher will hand to a kernel.
type LimitError struct {
	What  string
	Value int64
	Limit int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s %d exceeds limit %d", e.What, e.Value, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrTooLarge
}

// FatalError marks a condition the caller cannot recover from by retrying.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string {
	return e.msg
}

// IsFatal reports whether err, or anything it wraps, is a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
