package pricemath

import (
	"math"
	"math/big"
)

const (
	// MinTick is the lowest tick a pool can address.
	MinTick int32 = -887272
	// MaxTick is the highest tick a pool can address.
	MaxTick int32 = 887272

	// tickBase is the price ratio between adjacent ticks.
	tickBase = 1.0001
)

var (
	// Q96 is 2^96, the scale of the sqrt-price fixed-point format.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// MinSqrtRatio is the sqrt price at MinTick.
	MinSqrtRatio = mustBig("4295128739")
	// MaxSqrtRatio is the sqrt price at MaxTick.
	MaxSqrtRatio = mustBig("1461446703485210103287273052203988822378723970342")

	// minTickPrice is the smallest price with a tick inside the pool domain.
	minTickPrice = math.Pow(tickBase, float64(MinTick))
	logTickBase  = math.Log(tickBase)
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("pricemath: bad constant " + s)
	}
	return n
}

func clampTick(tick float64) int32 {
	if tick < float64(MinTick) {
		return MinTick
	}
	if tick > float64(MaxTick) {
		return MaxTick
	}
	return int32(tick)
}
