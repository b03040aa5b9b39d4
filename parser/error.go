package parser

import (
	"errors"
	"fmt"
)

// LexError reports malformed source text.
type LexError struct {
	Msg        string
	Pos        Position
	Incomplete bool // input ended inside a construct; more text may fix it
}

func (e *LexError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: LexError: %s", e.Pos, e.Msg)
}

// ParseError reports the first token that does not fit the grammar.
type ParseError struct {
	Expected string
	Found    string
	Pos      Position
	AtEOF    bool
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: ParseError: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

func newLexError(pos Position, format string, args ...interface{}) error {
	return &LexError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func newIncompleteError(pos Position, format string, args ...interface{}) error {
	return &LexError{
		Msg:        fmt.Sprintf(format, args...),
		Pos:        pos,
		Incomplete: true,
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var lerr *LexError
	if errors.As(err, &lerr) {
		return lerr.Incomplete
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.AtEOF
	}
	return false
}
