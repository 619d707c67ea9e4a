package price

import (
	"errors"
	"fmt"
)

// ErrMissingAnswer reports a fallback quote without an answer.
var ErrMissingAnswer = errors.New("missing feed answer")

// InvalidWindowError reports a TWAP window that cannot produce a price.
type InvalidWindowError struct {
	ElapsedSeconds uint32
	Reason         string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid twap window (elapsed %ds): %s", e.ElapsedSeconds, e.Reason)
}

// DivisionByZeroError reports a zero denominator.
type DivisionByZeroError struct {
	Operation string
}

func (e *DivisionByZeroError) Error() string {
	return "division by zero: " + e.Operation
}
