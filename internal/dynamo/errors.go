package dynamo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is the integer status reported by solver calls. Negative values are
// failures, zero is success.
type Code int

const (
	CodeNoError                Code = 0
	CodeSizeMismatch           Code = -1
	CodeConstraintSizeMismatch Code = -2
	CodeNotUpToDate            Code = -3
	CodeSVDFailed              Code = -4
	CodeSingular               Code = -5
	CodeUnknown                Code = -100
)

func (c Code) String() string {
	switch c {
	case CodeNoError:
		return "no error"
	case CodeSizeMismatch:
		return "size mismatch"
	case CodeConstraintSizeMismatch:
		return "constraint size mismatch"
	case CodeNotUpToDate:
		return "solver not up to date"
	case CodeSVDFailed:
		return "svd failed"
	case CodeSingular:
		return "singular matrix"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// Error is a solver failure with a status code.
type Error struct {
	Code Code
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Domain errors for solver calls.
var (
	// ErrSizeMismatch indicates joint or segment arrays of the wrong length.
	ErrSizeMismatch = &Error{Code: CodeSizeMismatch, msg: "dynamo: joint or segment array size mismatch"}

	// ErrConstraintSizeMismatch indicates alfa or beta do not match the constraint count.
	ErrConstraintSizeMismatch = &Error{Code: CodeConstraintSizeMismatch, msg: "dynamo: constraint array size mismatch"}

	// ErrNotUpToDate indicates the chain changed since the solver was sized.
	ErrNotUpToDate = &Error{Code: CodeNotUpToDate, msg: "dynamo: chain changed, call UpdateInternalDataStructures"}

	// ErrSVDFailed indicates the singular value decomposition did not converge.
	ErrSVDFailed = &Error{Code: CodeSVDFailed, msg: "dynamo: singular value decomposition failed"}

	// ErrSingular indicates a joint-space mass matrix that is not positive definite.
	ErrSingular = &Error{Code: CodeSingular, msg: "dynamo: mass matrix is not positive definite"}
)

// StatusCode maps err to its status code. Wrapped errors are unwrapped;
// errors without a code map to CodeUnknown.
func StatusCode(err error) Code {
	if err == nil {
		return CodeNoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// SegmentError wraps an error with the segment it was raised for.
type SegmentError struct {
	Segment int
	Name    string
	Wrapped error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d (%s): %v", e.Segment, e.Name, e.Wrapped)
}

func (e *SegmentError) Unwrap() error {
	return e.Wrapped
}
