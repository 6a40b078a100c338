// Package display renders prices and token amounts for humans.
package display

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with magnitude-dependent precision, abbreviating
// thousands and millions.
func FormatPrice(price float64, decimals int32) string {
	switch {
	case price == 0:
		return "0"
	case price < 0.000001:
		return "<0.000001"
	case price < 1:
		return decimal.NewFromFloat(price).StringFixed(decimals)
	case price < 1000:
		return decimal.NewFromFloat(price).StringFixed(4)
	case price < 1000000:
		return decimal.NewFromFloat(price/1000).StringFixed(2) + "K"
	default:
		return decimal.NewFromFloat(price/1000000).StringFixed(2) + "M"
	}
}

// FormatTokenAmount renders a raw integer amount scaled by decimals, without rounding.
func FormatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	text := new(big.Rat).SetFrac(abs, denom).FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// ParseTokenAmount converts a human amount such as "1.5" into raw units.
func ParseTokenAmount(input string, decimals uint8) (*big.Int, error) {
	if input == "" {
		return new(big.Int), nil
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", input, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %s", input)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimals", input, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatPercent renders value/total as a percentage with two decimals.
func FormatPercent(value, total float64) string {
	if total == 0 {
		return "0"
	}
	return decimal.NewFromFloat(value / total * 100).StringFixed(2)
}

// ShortenAddress keeps the 0x prefix plus chars leading and trailing hex digits.
func ShortenAddress(address string, chars int) string {
	if address == "" {
		return ""
	}
	if len(address) <= 2+2*chars {
		return address
	}
	return address[:chars+2] + "..." + address[len(address)-chars:]
}
