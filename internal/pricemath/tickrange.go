package pricemath

import "fmt"

// TickRange is a position range together with the prices at its bounds.
type TickRange struct {
	TickLower int32   `json:"tick_lower"`
	TickUpper int32   `json:"tick_upper"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
}

// CalculateTickRange derives a spacing-aligned range covering currentPrice +/- rangePercent.
// The returned prices are recomputed from the rounded ticks, so they are exactly the
// bounds a position minted with these ticks would have.
func CalculateTickRange(currentPrice, rangePercent float64, spacing int32) (TickRange, error) {
	if !(currentPrice > 0) {
		return TickRange{}, fmt.Errorf("%w: current price must be positive, got %v", ErrInvalidArgument, currentPrice)
	}
	if !(rangePercent > 0) {
		return TickRange{}, fmt.Errorf("%w: range percent must be positive, got %v", ErrInvalidArgument, rangePercent)
	}
	if spacing <= 0 {
		return TickRange{}, fmt.Errorf("%w: tick spacing must be positive, got %d", ErrInvalidArgument, spacing)
	}
	usableLower, usableUpper := UsableTickBounds(spacing)
	if int64(usableUpper)-int64(usableLower) < int64(spacing) {
		return TickRange{}, fmt.Errorf("%w: tick spacing %d leaves no usable range", ErrInvalidArgument, spacing)
	}

	minPrice := currentPrice * (1 - rangePercent/100)
	maxPrice := currentPrice * (1 + rangePercent/100)
	// A band of 100% or more reaches zero; floor it at the lowest tick price.
	if !(minPrice >= minTickPrice) {
		minPrice = minTickPrice
	}

	rawLower, err := PriceToTick(minPrice)
	if err != nil {
		return TickRange{}, err
	}
	rawUpper, err := PriceToTick(maxPrice)
	if err != nil {
		return TickRange{}, err
	}

	lower := clampTo(RoundTickToSpacing(rawLower, spacing), usableLower, usableUpper)
	upper := clampTo(RoundTickToSpacing(rawUpper, spacing), usableLower, usableUpper)

	// A narrow band can round both bounds onto the same tick.
	if lower >= upper {
		if int64(lower)+int64(spacing) <= int64(usableUpper) {
			upper = lower + spacing
		} else {
			upper = usableUpper
			lower = usableUpper - spacing
		}
	}

	minP, maxP := PriceRangeFromTicks(lower, upper)
	return TickRange{
		TickLower: lower,
		TickUpper: upper,
		MinPrice:  minP,
		MaxPrice:  maxP,
	}, nil
}

// ValidateTickRange checks ordering, bounds and spacing alignment, in that order.
// Failures are *TickRangeError values matching ErrLowerNotBelowUpper,
// ErrTickOutOfBounds or ErrNotAlignedToSpacing via errors.Is.
func ValidateTickRange(tickLower, tickUpper, spacing int32) error {
	if tickLower >= tickUpper {
		return &TickRangeError{Err: ErrLowerNotBelowUpper, TickLower: tickLower, TickUpper: tickUpper, Spacing: spacing}
	}
	if tickLower < MinTick || tickUpper > MaxTick {
		return &TickRangeError{Err: ErrTickOutOfBounds, TickLower: tickLower, TickUpper: tickUpper, Spacing: spacing}
	}
	if spacing <= 0 {
		return fmt.Errorf("%w: tick spacing must be positive, got %d", ErrInvalidArgument, spacing)
	}
	if tickLower%spacing != 0 || tickUpper%spacing != 0 {
		return &TickRangeError{Err: ErrNotAlignedToSpacing, TickLower: tickLower, TickUpper: tickUpper, Spacing: spacing}
	}
	return nil
}

// PriceRangeFromTicks returns the prices at both ends of a tick range.
func PriceRangeFromTicks(tickLower, tickUpper int32) (float64, float64) {
	return TickToPrice(tickLower), TickToPrice(tickUpper)
}

func clampTo(tick, lo, hi int32) int32 {
	if tick < lo {
		return lo
	}
	if tick > hi {
		return hi
	}
	return tick
}
