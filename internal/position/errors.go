package position

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when the lower bound is negative or not
	// strictly below the upper bound. It is a caller error and never retried.
	ErrInvalidRange = errors.New("invalid range")

	// ErrSearchExhausted reports that the depth budget ran out before a value
	// strictly inside the interval was found. It accompanies a best-effort
	// value and is not a hard failure.
	ErrSearchExhausted = errors.New("search exhausted")
)

// RangeError describes a rejected interval.
type RangeError struct {
	Lower float64
	Upper float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: lower=%v upper=%v", ErrInvalidRange, e.Lower, e.Upper)
}

// Is makes errors.Is(err, ErrInvalidRange) match.
func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// ExhaustedError carries the best-effort value of an exhausted search.
type ExhaustedError struct {
	Lower float64
	Upper float64
	Value float64
	Depth int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d steps: %v not inside (%v, %v)",
		ErrSearchExhausted, e.Depth, e.Value, e.Lower, e.Upper)
}

// Is makes errors.Is(err, ErrSearchExhausted) match.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrSearchExhausted
}

// IsInvalidRange returns true if err is, or wraps, an invalid range error.
func IsInvalidRange(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}

// IsExhausted returns true if err is, or wraps, a search exhaustion.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrSearchExhausted)
}
