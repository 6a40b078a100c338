// Package pricemath converts between the three encodings of a concentrated-liquidity
// price: the human price (token1 per token0), the tick index where price = 1.0001^tick,
// and the Q96 fixed-point square root used on-chain.
//
// Every function is pure and safe for concurrent use. Out-of-range results saturate
// at the tick and sqrt-ratio boundaries instead of failing, so outputs always fit the
// int24 and uint160 contract parameters.
package pricemath
