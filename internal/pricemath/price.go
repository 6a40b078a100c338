package pricemath

import (
	"fmt"
	"math"
	"math/big"
)

// PriceToTick returns the tick closest to price, rounding half away from zero.
// Prices beyond the tick domain saturate to MinTick or MaxTick.
func PriceToTick(price float64) (int32, error) {
	if !(price > 0) {
		return 0, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidArgument, price)
	}
	return clampTick(math.Round(math.Log(price) / logTickBase)), nil
}

// TickToPrice returns 1.0001^tick. The tick is not clamped.
func TickToPrice(tick int32) float64 {
	return math.Pow(tickBase, float64(tick))
}

// PriceToSqrtPriceX96 returns floor(sqrt(price) * 2^96), saturated into
// [MinSqrtRatio, MaxSqrtRatio]. The result is exact for the given float64.
func PriceToSqrtPriceX96(price float64) (*big.Int, error) {
	if !(price > 0) {
		return nil, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidArgument, price)
	}
	if math.IsInf(price, 1) {
		return new(big.Int).Set(MaxSqrtRatio), nil
	}

	// floor(sqrt(x)) == isqrt(floor(x)), and price*2^192 is exact in big.Float.
	scaled := new(big.Float).SetMantExp(big.NewFloat(price), 192)
	radicand, _ := scaled.Int(nil)
	return clampSqrtRatio(radicand.Sqrt(radicand)), nil
}

// SqrtPriceX96ToPrice returns (sqrtPriceX96 / 2^96)^2. A zero sqrt price marks an
// uninitialized pool and maps to 0, as do nil and negative values.
func SqrtPriceX96ToPrice(sqrtPriceX96 *big.Int) float64 {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0
	}
	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	ratio := new(big.Float).SetPrec(256).SetInt(squared)
	price, _ := new(big.Float).SetMantExp(ratio, -192).Float64()
	return price
}

// AdjustForDecimals converts a raw token1/token0 price into human units.
func AdjustForDecimals(price float64, decimals0, decimals1 uint8) float64 {
	return price * math.Pow10(int(decimals0)-int(decimals1))
}

func clampSqrtRatio(v *big.Int) *big.Int {
	if v.Cmp(MinSqrtRatio) < 0 {
		return new(big.Int).Set(MinSqrtRatio)
	}
	if v.Cmp(MaxSqrtRatio) > 0 {
		return new(big.Int).Set(MaxSqrtRatio)
	}
	return v
}
