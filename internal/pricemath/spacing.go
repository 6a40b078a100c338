package pricemath

import "math"

// DefaultTickSpacing is used for fee tiers outside the known set.
const DefaultTickSpacing int32 = 60

// FeeTiers returns the supported fee tiers in hundredths of a basis point.
func FeeTiers() []uint32 {
	return []uint32{500, 3000, 10000}
}

// LookupTickSpacing returns the spacing for a known fee tier.
func LookupTickSpacing(fee uint32) (int32, bool) {
	switch fee {
	case 500:
		return 10, true
	case 3000:
		return 60, true
	case 10000:
		return 200, true
	default:
		return 0, false
	}
}

// GetTickSpacing returns the spacing for fee, falling back to DefaultTickSpacing
// for unknown tiers. Use LookupTickSpacing to detect the fallback.
func GetTickSpacing(fee uint32) int32 {
	if spacing, ok := LookupTickSpacing(fee); ok {
		return spacing
	}
	return DefaultTickSpacing
}

// RoundTickToSpacing rounds tick to the nearest multiple of spacing (half away
// from zero) and saturates into [MinTick, MaxTick]. Saturation can leave the
// result off the spacing grid; UsableTickBounds gives the aligned extremes.
func RoundTickToSpacing(tick, spacing int32) int32 {
	if spacing <= 0 {
		return clampTick(float64(tick))
	}
	s := float64(spacing)
	return clampTick(math.Round(float64(tick)/s) * s)
}

// UsableTickBounds returns the widest spacing-aligned ticks inside the pool domain.
func UsableTickBounds(spacing int32) (int32, int32) {
	if spacing <= 0 {
		return MinTick, MaxTick
	}
	return MinTick / spacing * spacing, MaxTick / spacing * spacing
}
