package pricemath

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports an input outside the mathematical domain,
	// such as a non-positive price.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrLowerNotBelowUpper  = errors.New("lower tick must be less than upper tick")
	ErrTickOutOfBounds     = errors.New("tick out of valid range")
	ErrNotAlignedToSpacing = errors.New("ticks must be multiples of tick spacing")

	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")
)

// TickRangeError describes why a tick range was rejected.
type TickRangeError struct {
	Err       error
	TickLower int32
	TickUpper int32
	Spacing   int32
}

func (e *TickRangeError) Error() string {
	if e.Err == ErrNotAlignedToSpacing {
		return fmt.Sprintf("ticks must be multiples of %d: [%d, %d]", e.Spacing, e.TickLower, e.TickUpper)
	}
	return fmt.Sprintf("%s: [%d, %d]", e.Err, e.TickLower, e.TickUpper)
}

func (e *TickRangeError) Unwrap() error {
	return e.Err
}
