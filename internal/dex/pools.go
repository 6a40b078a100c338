package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/display"
	"poolScope/internal/model"
	"poolScope/internal/pricemath"
)

const priceTextDecimals int32 = 6

// PoolInfo mirrors IPoolManager.PoolInfo. Field names must match the camel-cased
// ABI component names for abi.ConvertType.
type PoolInfo struct {
	Pool         common.Address
	Token0       common.Address
	Token1       common.Address
	Index        uint32
	Fee          *big.Int
	FeeProtocol  uint8
	TickLower    *big.Int
	TickUpper    *big.Int
	Tick         *big.Int
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
}

// ListOptions controls how ListPools resolves and enriches pools.
type ListOptions struct {
	ChainID uint64
	// Tokens is consulted before any ERC20 call. May be nil.
	Tokens   *TokenMetaCache
	Balances bool
	Logger   *zap.Logger
	Now      func() time.Time
}

// ListPools reads every pool from the PoolManager and derives display prices.
func ListPools(ctx context.Context, caller chain.Caller, poolManager common.Address, opts ListOptions) ([]model.PoolSnapshot, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	parsed, err := PoolManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool manager abi: %w", err)
	}
	infos, err := getAllPools(ctx, caller, poolManager, parsed)
	if err != nil {
		return nil, err
	}

	observedAt := now().UTC().Format(time.RFC3339)
	snapshots := make([]model.PoolSnapshot, 0, len(infos))
	for _, info := range infos {
		token0 := ResolveTokenMeta(ctx, caller, opts.Tokens, info.Token0, logger)
		token1 := ResolveTokenMeta(ctx, caller, opts.Tokens, info.Token1, logger)

		snapshot, err := BuildSnapshot(info, token0, token1)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", info.Pool.Hex(), err)
		}
		snapshot.ChainID = opts.ChainID
		snapshot.ObservedAt = observedAt

		if _, known := pricemath.LookupTickSpacing(snapshot.Fee); !known {
			logger.Warn("unknown fee tier, using default tick spacing",
				zap.String("pool", snapshot.Address),
				zap.Uint32("fee", snapshot.Fee),
				zap.Int32("tick_spacing", snapshot.TickSpacing),
			)
		}
		if snapshot.Initialized && !snapshot.TickConsistent {
			logger.Warn("pool tick disagrees with sqrt price",
				zap.String("pool", snapshot.Address),
				zap.Int32("tick", snapshot.Tick),
				zap.String("sqrt_price_x96", snapshot.SqrtPriceX96),
			)
		}

		if opts.Balances {
			if err := fillBalances(ctx, caller, info, &snapshot); err != nil {
				logger.Warn("pool balance fetch failed", zap.String("pool", snapshot.Address), zap.Error(err))
			}
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func getAllPools(ctx context.Context, caller chain.Caller, poolManager common.Address, parsed abi.ABI) ([]PoolInfo, error) {
	data, err := parsed.Pack("getAllPools")
	if err != nil {
		return nil, fmt.Errorf("pack getAllPools: %w", err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &poolManager, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getAllPools: %w", err)
	}
	values, err := parsed.Unpack("getAllPools", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack getAllPools: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack getAllPools: empty result")
	}
	infos, ok := abi.ConvertType(values[0], new([]PoolInfo)).(*[]PoolInfo)
	if !ok {
		return nil, fmt.Errorf("unpack getAllPools: unexpected type %T", values[0])
	}
	return *infos, nil
}

// BuildSnapshot converts decoded pool state into a snapshot. Prices are token1 per
// token0 scaled by token decimals.
func BuildSnapshot(info PoolInfo, token0, token1 model.TokenMeta) (model.PoolSnapshot, error) {
	fee, err := uint24FromBig(info.Fee)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("fee: %w", err)
	}
	tickLower, err := int24FromBig(info.TickLower)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("tickLower: %w", err)
	}
	tickUpper, err := int24FromBig(info.TickUpper)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("tickUpper: %w", err)
	}
	tick, err := int24FromBig(info.Tick)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("tick: %w", err)
	}

	sqrtPrice := info.SqrtPriceX96
	if sqrtPrice == nil {
		sqrtPrice = new(big.Int)
	}
	liquidity := info.Liquidity
	if liquidity == nil {
		liquidity = new(big.Int)
	}

	snapshot := model.PoolSnapshot{
		Address:      info.Pool.Hex(),
		Index:        info.Index,
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		TickSpacing:  pricemath.GetTickSpacing(fee),
		TickLower:    tickLower,
		TickUpper:    tickUpper,
		Tick:         tick,
		SqrtPriceX96: sqrtPrice.String(),
		Liquidity:    liquidity.String(),
		Initialized:  sqrtPrice.Sign() > 0,
	}

	minPrice, maxPrice := pricemath.PriceRangeFromTicks(tickLower, tickUpper)
	snapshot.MinPrice = pricemath.AdjustForDecimals(minPrice, token0.Decimals, token1.Decimals)
	snapshot.MaxPrice = pricemath.AdjustForDecimals(maxPrice, token0.Decimals, token1.Decimals)

	if !snapshot.Initialized {
		snapshot.PriceText = display.FormatPrice(0, priceTextDecimals)
		return snapshot, nil
	}

	raw := pricemath.SqrtPriceX96ToPrice(sqrtPrice)
	snapshot.Price = pricemath.AdjustForDecimals(raw, token0.Decimals, token1.Decimals)
	snapshot.PriceText = display.FormatPrice(snapshot.Price, priceTextDecimals)
	snapshot.TickConsistent = tickMatchesSqrtPrice(tick, sqrtPrice)
	return snapshot, nil
}

// tickMatchesSqrtPrice accepts the floor tick and the tick just below it, since a
// pool sitting exactly on a boundary may report either after a swap.
func tickMatchesSqrtPrice(tick int32, sqrtPriceX96 *big.Int) bool {
	derived, err := pricemath.TickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return false
	}
	return derived == tick || derived-1 == tick
}

func fillBalances(ctx context.Context, caller chain.Caller, info PoolInfo, snapshot *model.PoolSnapshot) error {
	balance0, err := FetchBalance(ctx, caller, info.Token0, info.Pool)
	if err != nil {
		return fmt.Errorf("token0 balance: %w", err)
	}
	balance1, err := FetchBalance(ctx, caller, info.Token1, info.Pool)
	if err != nil {
		return fmt.Errorf("token1 balance: %w", err)
	}
	snapshot.Balance0 = balance0.String()
	snapshot.Balance1 = balance1.String()
	return nil
}

// DiffSnapshot compares cur with the previously stored snapshot of the same pool.
// A nil prev yields a diff with Known false.
func DiffSnapshot(prev *model.PoolSnapshot, cur model.PoolSnapshot) model.PoolDiff {
	diff := model.PoolDiff{
		Address:   cur.Address,
		Tick:      cur.Tick,
		Price:     cur.Price,
		Liquidity: cur.Liquidity,
	}
	if prev == nil {
		return diff
	}
	diff.Known = true
	diff.PrevTick = prev.Tick
	diff.TickDelta = cur.Tick - prev.Tick
	diff.PrevPrice = prev.Price
	diff.PriceChangeText = display.FormatPercent(cur.Price-prev.Price, prev.Price)
	diff.PrevLiquidity = prev.Liquidity
	diff.PrevObservedAt = prev.ObservedAt
	return diff
}
