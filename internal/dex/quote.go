package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/chain"
	"poolScope/internal/pricemath"
)

// ErrPoolNotFound is returned when no pool exists for a pair and index.
var ErrPoolNotFound = errors.New("pool not found")

// QuoteRequest is an exact-input quote along an index path.
type QuoteRequest struct {
	TokenIn   common.Address
	TokenOut  common.Address
	IndexPath []uint32
	AmountIn  *big.Int
}

type quoteExactInputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	AmountIn          *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactInput asks the router how much TokenOut AmountIn would buy.
func QuoteExactInput(ctx context.Context, caller chain.Caller, router common.Address, req QuoteRequest) (*big.Int, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if len(req.IndexPath) == 0 {
		return nil, ErrEmptyPath
	}
	token0, _, _, err := SortTokens(req.TokenIn, req.TokenOut)
	if err != nil {
		return nil, err
	}
	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount in must be positive", pricemath.ErrInvalidArgument)
	}

	parsed, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap router abi: %w", err)
	}
	values, err := callMethod(ctx, caller, router, parsed, "quoteExactInput", quoteExactInputParams{
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		IndexPath:         req.IndexPath,
		AmountIn:          req.AmountIn,
		SqrtPriceLimitX96: pricemath.SqrtPriceLimit(token0 == req.TokenIn),
	})
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// ExactOutputQuoteRequest is an exact-output quote along an index path.
type ExactOutputQuoteRequest struct {
	TokenIn   common.Address
	TokenOut  common.Address
	IndexPath []uint32
	AmountOut *big.Int
}

type quoteExactOutputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	AmountOut         *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactOutput asks the router how much TokenIn is needed to receive AmountOut.
func QuoteExactOutput(ctx context.Context, caller chain.Caller, router common.Address, req ExactOutputQuoteRequest) (*big.Int, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if len(req.IndexPath) == 0 {
		return nil, ErrEmptyPath
	}
	token0, _, _, err := SortTokens(req.TokenIn, req.TokenOut)
	if err != nil {
		return nil, err
	}
	if req.AmountOut == nil || req.AmountOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount out must be positive", pricemath.ErrInvalidArgument)
	}

	parsed, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap router abi: %w", err)
	}
	values, err := callMethod(ctx, caller, router, parsed, "quoteExactOutput", quoteExactOutputParams{
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		IndexPath:         req.IndexPath,
		AmountOut:         req.AmountOut,
		SqrtPriceLimitX96: pricemath.SqrtPriceLimit(token0 == req.TokenIn),
	})
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// LookupPool returns the address of the pool at index for a token pair, failing
// with ErrPoolNotFound when the PoolManager reports none.
func LookupPool(ctx context.Context, caller chain.Caller, poolManager, tokenA, tokenB common.Address, index uint32) (common.Address, error) {
	if caller == nil {
		return common.Address{}, fmt.Errorf("chain client is nil")
	}
	token0, token1, _, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	parsed, err := PoolManagerABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pool manager abi: %w", err)
	}
	values, err := callMethod(ctx, caller, poolManager, parsed, "getPool", token0, token1, index)
	if err != nil {
		return common.Address{}, err
	}
	pool, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unpack getPool: unexpected type %T", values[0])
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s/%s index %d", ErrPoolNotFound, token0.Hex(), token1.Hex(), index)
	}
	return pool, nil
}
