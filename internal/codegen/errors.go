package codegen

import (
	"fmt"

	"github.com/geraltigas/glslc/internal/syntax"
)

// Error is a lowering error.
type Error struct {
	Pos syntax.Pos
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorHandler is a function called for each lowering error.
type ErrorHandler func(pos syntax.Pos, msg string)

// errorf returns an *Error at pos.
func errorf(pos syntax.Pos, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// invalidOp returns an invalid operation error.
func invalidOp(pos syntax.Pos, format string, args ...interface{}) error {
	return errorf(pos, "invalid operation: "+format, args...)
}
