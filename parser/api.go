package parser

import (
	"io"
)

// ParseReader consumes TOG source from an io.Reader and returns its AST.
func ParseReader(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}
