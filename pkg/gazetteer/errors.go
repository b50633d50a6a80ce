package gazetteer

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("gazetteer: parse error")
	// ErrUnknownLocation is returned by Resolve when a name has no entry.
	ErrUnknownLocation = errors.New("unknown location")

	errOutOfRange   = errors.New("coordinate out of range")
	errUnterminated = errors.New("unterminated quoted field")
)

// ParseError describes the record that aborted a load.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gazetteer: line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
