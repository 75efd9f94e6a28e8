package array

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape is returned when a view cannot describe its storage:
	// non-positive extent, bad rank, or too little backing memory.
	ErrInvalidShape = errors.New("array: invalid shape")
	// ErrOutOfRange is returned for a dimension index outside 1..rank.
	ErrOutOfRange = errors.New("array: dimension out of range")
	// ErrIndexOutOfBounds is reported by checked element access.
	ErrIndexOutOfBounds = errors.New("array: index out of bounds")
)

// BoundsError describes a failed checked access.
type BoundsError struct {
	Dim   int // 1-based dimension that failed
	Index int
	Lower int
	Upper int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("array: index %d out of bounds [%d:%d] in dimension %d", e.Index, e.Lower, e.Upper, e.Dim)
}

func (e *BoundsError) Unwrap() error { return ErrIndexOutOfBounds }
