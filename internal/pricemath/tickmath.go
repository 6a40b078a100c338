package pricemath

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// sqrtRatioFactors[i] is 2^128 / sqrt(1.0001^(2^i)) in Q128.128, applied for each set
// bit i of |tick|. These are the constants of the on-chain TickMath library.
var sqrtRatioFactors = [20]*uint256.Int{
	mustU256("fffcb933bd6fad37aa2d162d1a594001"),
	mustU256("fff97272373d413259a46990580e213a"),
	mustU256("fff2e50f5f656932ef12357cf3c7fdcc"),
	mustU256("ffe5caca7e10e4e61c3624eaa0941cd0"),
	mustU256("ffcb9843d60f6159c9db58835c926644"),
	mustU256("ff973b41fa98c081472e6896dfb254c0"),
	mustU256("ff2ea16466c96a3843ec78b326b52861"),
	mustU256("fe5dee046a99a2a811c461f1969c3053"),
	mustU256("fcbe86c7900a88aedcffc83b479aa3a4"),
	mustU256("f987a7253ac413176f2b074cf7815e54"),
	mustU256("f3392b0822b70005940c7a398e4b70f3"),
	mustU256("e7159475a2c29b7443b29c7fa6e889d9"),
	mustU256("d097f3bdfd2022b8845ad8f792aa5825"),
	mustU256("a9f746462d870fdf8a65dc1f90e061e5"),
	mustU256("70d869a156d2a1b890bb3df62baf32f7"),
	mustU256("31be135f97d08fd981231505542fcfa6"),
	mustU256("9aa508b5b7a84e1c677de54f3e99bc9"),
	mustU256("5d6af8dedb81196699c329225ee604"),
	mustU256("2216e584f5fa1ea926041bedfe98"),
	mustU256("48a170391f7dc42444e8fa2"),
}

var (
	q128       = mustU256("100000000000000000000000000000000")
	maxUint256 = mustU256("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	lowMask32  = uint256.NewInt(0xffffffff)
)

func mustU256(hex string) *uint256.Int {
	b, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		panic("pricemath: bad hex constant " + hex)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		panic("pricemath: constant overflows uint256 " + hex)
	}
	return v
}

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 computed with the exact integer
// algorithm the pool contracts use (rounded up to the next Q96 unit).
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: %d", ErrTickOutOfBounds, tick)
	}

	abs := uint32(tick)
	if tick < 0 {
		abs = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if abs&1 != 0 {
		ratio.Set(sqrtRatioFactors[0])
	} else {
		ratio.Set(q128)
	}
	for bit := 1; bit < len(sqrtRatioFactors); bit++ {
		if abs&(1<<uint(bit)) != 0 {
			ratio.Mul(ratio, sqrtRatioFactors[bit])
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	rem := new(uint256.Int).And(ratio, lowMask32)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}
	return ratio.ToBig(), nil
}

// TickAtSqrtRatio returns the greatest tick whose SqrtRatioAtTick is <= sqrtPriceX96.
// The input must lie in [MinSqrtRatio, MaxSqrtRatio).
func TickAtSqrtRatio(sqrtPriceX96 *big.Int) (int32, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, fmt.Errorf("%w: %v", ErrSqrtPriceOutOfBounds, sqrtPriceX96)
	}

	low, high := MinTick, MaxTick
	tick := MinTick
	for low <= high {
		mid := low + (high-low)/2
		ratio, err := SqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratio.Cmp(sqrtPriceX96) <= 0 {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return tick, nil
}

// SqrtPriceLimit returns the loosest sqrt-price limit a swap may pass. The router
// requires the limit to be strictly inside the ratio bounds.
func SqrtPriceLimit(zeroForOne bool) *big.Int {
	if zeroForOne {
		return new(big.Int).Add(MinSqrtRatio, big.NewInt(1))
	}
	return new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1))
}
