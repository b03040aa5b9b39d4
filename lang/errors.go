package lang

import (
	"errors"
	"fmt"

	"github.com/tog-lang/tog/parser"
)

// ErrorKind classifies load-time and run-time failures.
type ErrorKind string

const (
	TraitConformanceError ErrorKind = "TraitConformanceError"
	DefinitionError       ErrorKind = "DefinitionError"
	NameError             ErrorKind = "NameError"
	TypeError             ErrorKind = "TypeError"
	ArityError            ErrorKind = "ArityError"
	MatchError            ErrorKind = "MatchError"
	DispatchError         ErrorKind = "DispatchError"
	MethodNotFoundError   ErrorKind = "MethodNotFoundError"
	PanicError            ErrorKind = "PanicError"
	ArithmeticError       ErrorKind = "ArithmeticError"
	IndexError            ErrorKind = "IndexError"
	ControlError          ErrorKind = "ControlError"
)

// Error is the error type returned by Load and by evaluation.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  parser.Position
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Errorf builds an Error of the given kind without a position.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func errorAt(pos parser.Position, kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// IsKind reports whether err wraps an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind == kind
	}
	return false
}

// withPos fills in the position of an Error raised without one.
func withPos(err error, pos parser.Position) error {
	var lerr *Error
	if errors.As(err, &lerr) && !lerr.Pos.IsValid() && pos.IsValid() {
		lerr.Pos = pos
	}
	return err
}
