// Package api exposes the price math over HTTP and shares result shapes with the CLI.
package api

import (
	"fmt"
	"math/big"

	"poolScope/internal/display"
	"poolScope/internal/pricemath"
)

const priceDecimals int32 = 6

// TickResult is a price converted to its tick and the nearest usable tick.
type TickResult struct {
	Price       float64 `json:"price"`
	Tick        int32   `json:"tick"`
	TickSpacing int32   `json:"tick_spacing"`
	RoundedTick int32   `json:"rounded_tick"`
}

// PriceResult is the price and exact sqrt price at a tick.
type PriceResult struct {
	Tick         int32   `json:"tick"`
	Price        float64 `json:"price"`
	PriceText    string  `json:"price_text"`
	SqrtPriceX96 string  `json:"sqrt_price_x96"`
}

// SqrtResult pairs a price with its Q64.96 sqrt price and tick.
type SqrtResult struct {
	Price        float64 `json:"price"`
	SqrtPriceX96 string  `json:"sqrt_price_x96"`
	Tick         int32   `json:"tick"`
}

// RangeResult is a spacing-aligned range around a price, with display text.
type RangeResult struct {
	pricemath.TickRange
	CurrentPrice float64 `json:"current_price"`
	RangePercent float64 `json:"range_percent"`
	TickSpacing  int32   `json:"tick_spacing"`
	MinPriceText string  `json:"min_price_text"`
	MaxPriceText string  `json:"max_price_text"`
}

// ValidateResult reports whether a tick range can be used for a position.
type ValidateResult struct {
	TickLower   int32  `json:"tick_lower"`
	TickUpper   int32  `json:"tick_upper"`
	TickSpacing int32  `json:"tick_spacing"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason,omitempty"`
}

// Tick converts price to a tick and rounds it to spacing.
func Tick(price float64, spacing int32) (TickResult, error) {
	tick, err := pricemath.PriceToTick(price)
	if err != nil {
		return TickResult{}, err
	}
	return TickResult{
		Price:       price,
		Tick:        tick,
		TickSpacing: spacing,
		RoundedTick: pricemath.RoundTickToSpacing(tick, spacing),
	}, nil
}

// Price returns the price at tick. Ticks outside the pool domain fail.
func Price(tick int32) (PriceResult, error) {
	sqrtPrice, err := pricemath.SqrtRatioAtTick(tick)
	if err != nil {
		return PriceResult{}, err
	}
	price := pricemath.TickToPrice(tick)
	return PriceResult{
		Tick:         tick,
		Price:        price,
		PriceText:    display.FormatPrice(price, priceDecimals),
		SqrtPriceX96: sqrtPrice.String(),
	}, nil
}

// Sqrt encodes price as a Q64.96 sqrt price.
func Sqrt(price float64) (SqrtResult, error) {
	sqrtPrice, err := pricemath.PriceToSqrtPriceX96(price)
	if err != nil {
		return SqrtResult{}, err
	}
	tick, err := pricemath.PriceToTick(price)
	if err != nil {
		return SqrtResult{}, err
	}
	return SqrtResult{Price: price, SqrtPriceX96: sqrtPrice.String(), Tick: tick}, nil
}

// DecodeSqrt converts a decimal Q96 sqrt price back to a price and its floor tick.
func DecodeSqrt(input string) (SqrtResult, error) {
	sqrtPrice, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return SqrtResult{}, fmt.Errorf("%w: sqrt price %q", pricemath.ErrInvalidArgument, input)
	}
	tick, err := pricemath.TickAtSqrtRatio(sqrtPrice)
	if err != nil {
		return SqrtResult{}, err
	}
	return SqrtResult{
		Price:        pricemath.SqrtPriceX96ToPrice(sqrtPrice),
		SqrtPriceX96: sqrtPrice.String(),
		Tick:         tick,
	}, nil
}

// Range computes a position range of rangePercent around price.
func Range(price, rangePercent float64, spacing int32) (RangeResult, error) {
	tr, err := pricemath.CalculateTickRange(price, rangePercent, spacing)
	if err != nil {
		return RangeResult{}, err
	}
	return RangeResult{
		TickRange:    tr,
		CurrentPrice: price,
		RangePercent: rangePercent,
		TickSpacing:  spacing,
		MinPriceText: display.FormatPrice(tr.MinPrice, priceDecimals),
		MaxPriceText: display.FormatPrice(tr.MaxPrice, priceDecimals),
	}, nil
}

// Validate always returns a result; the error is the validation failure, if any.
func Validate(lower, upper, spacing int32) (ValidateResult, error) {
	out := ValidateResult{TickLower: lower, TickUpper: upper, TickSpacing: spacing, Valid: true}
	err := pricemath.ValidateTickRange(lower, upper, spacing)
	if err != nil {
		out.Valid = false
		out.Reason = err.Error()
	}
	return out, err
}
