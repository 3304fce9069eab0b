package world

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a coordinate falls outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrAlreadyGenerated is returned when a layout is written onto a populated grid.
	ErrAlreadyGenerated = errors.New("grid already generated")
	// ErrInvariantViolation marks a broken world invariant. It is never expected
	// at runtime and callers must abort the current operation when they see it.
	ErrInvariantViolation = errors.New("world invariant violated")
)

// OutOfBoundsError reports the offending coordinate and grid size.
type OutOfBoundsError struct {
	Coord Coord
	Size  int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%v outside [0,%d)", e.Coord, e.Size)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// InvariantError is the panic value raised when the world detects a state it
// can only reach through a programming error.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

func violate(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
