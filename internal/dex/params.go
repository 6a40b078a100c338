package dex

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultDeadlineMinutes is used when no deadline is configured.
const DefaultDeadlineMinutes = 20

var (
	ErrSameToken       = errors.New("tokens must differ")
	ErrInvalidSlippage = errors.New("slippage must be in [0, 100)")
)

// ApplySlippage lowers (minimum=true) or raises amount by percent. The percent is
// truncated to whole basis points and the result is rounded down.
func ApplySlippage(amount *big.Int, percent float64, minimum bool) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must be non-negative")
	}
	if math.IsNaN(percent) || percent < 0 || percent >= 100 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlippage, percent)
	}
	bps := int64(math.Floor(percent * 100))
	factor := big.NewInt(10000 - bps)
	if !minimum {
		factor = big.NewInt(10000 + bps)
	}
	out := new(big.Int).Mul(amount, factor)
	return out.Quo(out, big.NewInt(10000)), nil
}

// Deadline returns the unix timestamp minutes after now.
func Deadline(now time.Time, minutes int) uint64 {
	if minutes <= 0 {
		minutes = DefaultDeadlineMinutes
	}
	return uint64(now.Add(time.Duration(minutes) * time.Minute).Unix())
}

// SortTokens orders a pair the way pools store them. swapped reports whether the
// inputs were reversed.
func SortTokens(a, b common.Address) (token0, token1 common.Address, swapped bool, err error) {
	switch bytes.Compare(a.Bytes(), b.Bytes()) {
	case 0:
		return a, b, false, fmt.Errorf("%w: %s", ErrSameToken, a.Hex())
	case 1:
		return b, a, true, nil
	default:
		return a, b, false, nil
	}
}
