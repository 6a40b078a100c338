package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/display"
	"poolScope/internal/model"
	"poolScope/internal/pricemath"
)

const (
	feeDenominator  = 1_000_000
	ownerShortChars = 4
)

// PositionInfo mirrors IPositionManager.PositionInfo.
type PositionInfo struct {
	Id                       *big.Int
	Owner                    common.Address
	Token0                   common.Address
	Token1                   common.Address
	Index                    uint32
	Fee                      *big.Int
	Liquidity                *big.Int
	TickLower                *big.Int
	TickUpper                *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

// PositionOptions controls ListPositions.
type PositionOptions struct {
	// Owner keeps only positions owned by this address when non-zero.
	Owner  common.Address
	Tokens *TokenMetaCache
	Logger *zap.Logger
}

// ListPositions reads every position from the PositionManager and derives the
// price range of each from its ticks.
func ListPositions(ctx context.Context, caller chain.Caller, positionManager common.Address, opts PositionOptions) ([]model.PositionSnapshot, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	infos, err := getAllPositions(ctx, caller, positionManager, parsed)
	if err != nil {
		return nil, err
	}

	out := make([]model.PositionSnapshot, 0, len(infos))
	for _, info := range infos {
		if opts.Owner != (common.Address{}) && info.Owner != opts.Owner {
			continue
		}
		token0 := ResolveTokenMeta(ctx, caller, opts.Tokens, info.Token0, logger)
		token1 := ResolveTokenMeta(ctx, caller, opts.Tokens, info.Token1, logger)
		position, err := BuildPosition(info, token0, token1)
		if err != nil {
			return nil, fmt.Errorf("position %v: %w", info.Id, err)
		}
		out = append(out, position)
	}
	return out, nil
}

func getAllPositions(ctx context.Context, caller chain.Caller, positionManager common.Address, parsed abi.ABI) ([]PositionInfo, error) {
	data, err := parsed.Pack("getAllPositions")
	if err != nil {
		return nil, fmt.Errorf("pack getAllPositions: %w", err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &positionManager, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getAllPositions: %w", err)
	}
	values, err := parsed.Unpack("getAllPositions", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack getAllPositions: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack getAllPositions: empty result")
	}
	infos, ok := abi.ConvertType(values[0], new([]PositionInfo)).(*[]PositionInfo)
	if !ok {
		return nil, fmt.Errorf("unpack getAllPositions: unexpected type %T", values[0])
	}
	return *infos, nil
}

// BuildPosition converts decoded position state into a snapshot. Prices are token1
// per token0 scaled by token decimals.
func BuildPosition(info PositionInfo, token0, token1 model.TokenMeta) (model.PositionSnapshot, error) {
	fee, err := uint24FromBig(info.Fee)
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("fee: %w", err)
	}
	tickLower, err := int24FromBig(info.TickLower)
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("tickLower: %w", err)
	}
	tickUpper, err := int24FromBig(info.TickUpper)
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("tickUpper: %w", err)
	}

	minPrice, maxPrice := pricemath.PriceRangeFromTicks(tickLower, tickUpper)
	minPrice = pricemath.AdjustForDecimals(minPrice, token0.Decimals, token1.Decimals)
	maxPrice = pricemath.AdjustForDecimals(maxPrice, token0.Decimals, token1.Decimals)
	owed0, owed1 := orZero(info.TokensOwed0), orZero(info.TokensOwed1)

	return model.PositionSnapshot{
		ID:                       orZero(info.Id).String(),
		Owner:                    info.Owner.Hex(),
		OwnerShort:               display.ShortenAddress(info.Owner.Hex(), ownerShortChars),
		Token0:                   token0,
		Token1:                   token1,
		Index:                    info.Index,
		Fee:                      fee,
		FeeText:                  display.FormatPercent(float64(fee), feeDenominator),
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		MinPrice:                 minPrice,
		MaxPrice:                 maxPrice,
		MinPriceText:             display.FormatPrice(minPrice, priceTextDecimals),
		MaxPriceText:             display.FormatPrice(maxPrice, priceTextDecimals),
		Liquidity:                orZero(info.Liquidity).String(),
		TokensOwed0:              owed0.String(),
		TokensOwed1:              owed1.String(),
		TokensOwed0Text:          display.FormatTokenAmount(owed0, token0.Decimals),
		TokensOwed1Text:          display.FormatTokenAmount(owed1, token1.Decimals),
		FeeGrowthInside0LastX128: orZero(info.FeeGrowthInside0LastX128).String(),
		FeeGrowthInside1LastX128: orZero(info.FeeGrowthInside1LastX128).String(),
	}, nil
}
