package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is the single error kind raised by the statistical core:
// non-numeric scores, malformed matrices, degenerate statistics.
var ErrInvalidInput = errors.New("invalid input")

// InputError carries the location of an invalid input.
// Row and Position are 1-based; zero means "not applicable".
type InputError struct {
	Op       string
	Row      int
	Position int
	Reason   string
}

func (e *InputError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(ErrInvalidInput.Error())
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Position > 0 {
		fmt.Fprintf(&b, ": position %d", e.Position)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold for every InputError.
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Invalid builds an InputError without location.
func Invalid(op, format string, args ...any) error {
	return &InputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// AtRow returns a copy of err located at the given 1-based row when err is an
// InputError without a row yet. Other errors are returned unchanged.
func AtRow(err error, row int) error {
	var ie *InputError
	if !errors.As(err, &ie) || ie.Row != 0 {
		return err
	}
	located := *ie
	located.Row = row
	return &located
}
