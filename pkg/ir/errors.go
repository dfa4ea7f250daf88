package ir

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownConstruct = errors.New("unknown construct")
	ErrBadAssignTarget  = errors.New("assignment target is not an identifier")
	ErrLiteralRange     = errors.New("integer literal out of 32-bit range")
	ErrBadCall          = errors.New("malformed call")
	ErrNotAValue        = errors.New("statement used as a value")

	ErrUnknownFunction = errors.New("unknown host function")
	ErrArity           = errors.New("wrong number of arguments")
	ErrUndeclaredLocal = errors.New("local has no storage")
)

// CompileError reports the tree node that could not be compiled.
type CompileError struct {
	Line  int
	Token string
	Err   error // one of the Err* sentinels
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Token)
}

func (e *CompileError) Unwrap() error { return e.Err }
