package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedSpan is returned when a $name$ dereference names a span
	// the span provider doesn't know.
	ErrUndefinedSpan = errors.New("undefined span")
	// ErrCancelled is returned when the user abandons a prompt or the
	// search context is done.
	ErrCancelled = errors.New("cancelled")
	// ErrStepLimit is returned when a search exceeds Options.MaxSteps.
	ErrStepLimit = errors.New("pattern too complex: step limit exceeded")
)

// ParseError is a syntax error in pattern text. Offset is the 0 based rune
// offset of the offending character.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("At character %d: %s", e.Offset+1, e.Msg)
}
