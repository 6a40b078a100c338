package dex

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolScope/internal/model"
	"poolScope/internal/pricemath"
)

var (
	ErrUnknownFeeTier = errors.New("unknown fee tier")
	ErrZeroRecipient  = errors.New("recipient is required")
	ErrEmptyPath      = errors.New("index path is empty")
	ErrZeroSpender    = errors.New("spender is required")
)

// MaxApproval is the allowance PlanApprove uses when no amount is given.
var MaxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// RangeMode selects how PlanCreatePool derives the initial tick range.
type RangeMode int

const (
	RangePercent RangeMode = iota
	RangeTicks
	RangeFull
)

// CreatePoolRequest describes a new pool. Price is tokenB per tokenA in human
// units, whatever the on-chain order of the pair turns out to be.
type CreatePoolRequest struct {
	PoolManager  common.Address
	TokenA       common.Address
	TokenB       common.Address
	DecimalsA    uint8
	DecimalsB    uint8
	Fee          uint32
	Price        float64
	Mode         RangeMode
	RangePercent float64
	TickLower    int32
	TickUpper    int32
}

type createPoolParams struct {
	Token0       common.Address
	Token1       common.Address
	Fee          *big.Int
	TickLower    *big.Int
	TickUpper    *big.Int
	SqrtPriceX96 *big.Int
}

// PlanCreatePool builds createAndInitializePoolIfNecessary calldata.
func PlanCreatePool(req CreatePoolRequest) (model.CreatePoolPlan, error) {
	var plan model.CreatePoolPlan

	spacing, ok := pricemath.LookupTickSpacing(req.Fee)
	if !ok {
		return plan, fmt.Errorf("%w: %d", ErrUnknownFeeTier, req.Fee)
	}
	token0, token1, swapped, err := SortTokens(req.TokenA, req.TokenB)
	if err != nil {
		return plan, err
	}
	if math.IsNaN(req.Price) || req.Price <= 0 || math.IsInf(req.Price, 0) {
		return plan, fmt.Errorf("%w: price %v", pricemath.ErrInvalidArgument, req.Price)
	}
	price, decimals0, decimals1 := req.Price, req.DecimalsA, req.DecimalsB
	if swapped {
		price, decimals0, decimals1 = 1/price, req.DecimalsB, req.DecimalsA
	}
	// On-chain prices are in raw units: token1 base units per token0 base unit.
	rawPrice := pricemath.AdjustForDecimals(price, decimals1, decimals0)

	sqrtPrice, err := pricemath.PriceToSqrtPriceX96(rawPrice)
	if err != nil {
		return plan, fmt.Errorf("sqrt price: %w", err)
	}

	var tickLower, tickUpper int32
	switch req.Mode {
	case RangePercent:
		tr, err := pricemath.CalculateTickRange(rawPrice, req.RangePercent, spacing)
		if err != nil {
			return plan, fmt.Errorf("tick range: %w", err)
		}
		tickLower, tickUpper = tr.TickLower, tr.TickUpper
	case RangeTicks:
		tickLower, tickUpper = req.TickLower, req.TickUpper
		if swapped {
			// Inverting the price mirrors the range around tick zero.
			tickLower, tickUpper = -req.TickUpper, -req.TickLower
		}
	case RangeFull:
		tickLower, tickUpper = pricemath.UsableTickBounds(spacing)
	default:
		return plan, fmt.Errorf("%w: range mode %d", pricemath.ErrInvalidArgument, req.Mode)
	}
	if err := pricemath.ValidateTickRange(tickLower, tickUpper, spacing); err != nil {
		return plan, err
	}

	parsed, err := PoolManagerABI()
	if err != nil {
		return plan, fmt.Errorf("parse pool manager abi: %w", err)
	}
	data, err := parsed.Pack("createAndInitializePoolIfNecessary", createPoolParams{
		Token0:       token0,
		Token1:       token1,
		Fee:          new(big.Int).SetUint64(uint64(req.Fee)),
		TickLower:    big.NewInt(int64(tickLower)),
		TickUpper:    big.NewInt(int64(tickUpper)),
		SqrtPriceX96: sqrtPrice,
	})
	if err != nil {
		return plan, fmt.Errorf("pack createAndInitializePoolIfNecessary: %w", err)
	}

	minPrice, maxPrice := pricemath.PriceRangeFromTicks(tickLower, tickUpper)
	plan = model.CreatePoolPlan{
		Token0:       token0.Hex(),
		Token1:       token1.Hex(),
		Fee:          req.Fee,
		TickSpacing:  spacing,
		TickLower:    tickLower,
		TickUpper:    tickUpper,
		MinPrice:     pricemath.AdjustForDecimals(minPrice, decimals0, decimals1),
		MaxPrice:     pricemath.AdjustForDecimals(maxPrice, decimals0, decimals1),
		Price:        price,
		SqrtPriceX96: sqrtPrice.String(),
		Tx:           model.TxRequest{To: req.PoolManager.Hex(), Data: hexutil.Encode(data)},
	}
	return plan, nil
}

// MintRequest describes liquidity to add to an existing pool. Amounts are raw
// token units and follow TokenA/TokenB.
type MintRequest struct {
	PositionManager common.Address
	TokenA          common.Address
	TokenB          common.Address
	Index           uint32
	AmountA         *big.Int
	AmountB         *big.Int
	Recipient       common.Address
	Now             time.Time
	DeadlineMinutes int
}

type mintParams struct {
	Token0         common.Address
	Token1         common.Address
	Index          uint32
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

// PlanMint builds PositionManager.mint calldata.
func PlanMint(req MintRequest) (model.MintPlan, error) {
	var plan model.MintPlan

	if req.Recipient == (common.Address{}) {
		return plan, ErrZeroRecipient
	}
	token0, token1, swapped, err := SortTokens(req.TokenA, req.TokenB)
	if err != nil {
		return plan, err
	}
	amount0, amount1 := orZero(req.AmountA), orZero(req.AmountB)
	if swapped {
		amount0, amount1 = amount1, amount0
	}
	if amount0.Sign() < 0 || amount1.Sign() < 0 {
		return plan, fmt.Errorf("%w: negative amount", pricemath.ErrInvalidArgument)
	}
	if amount0.Sign() == 0 && amount1.Sign() == 0 {
		return plan, fmt.Errorf("%w: both amounts are zero", pricemath.ErrInvalidArgument)
	}
	deadline := Deadline(req.Now, req.DeadlineMinutes)

	parsed, err := PositionManagerABI()
	if err != nil {
		return plan, fmt.Errorf("parse position manager abi: %w", err)
	}
	data, err := parsed.Pack("mint", mintParams{
		Token0:         token0,
		Token1:         token1,
		Index:          req.Index,
		Amount0Desired: amount0,
		Amount1Desired: amount1,
		Recipient:      req.Recipient,
		Deadline:       new(big.Int).SetUint64(deadline),
	})
	if err != nil {
		return plan, fmt.Errorf("pack mint: %w", err)
	}

	plan = model.MintPlan{
		Token0:         token0.Hex(),
		Token1:         token1.Hex(),
		Index:          req.Index,
		Amount0Desired: amount0.String(),
		Amount1Desired: amount1.String(),
		Recipient:      req.Recipient.Hex(),
		Deadline:       deadline,
		Tx:             model.TxRequest{To: req.PositionManager.Hex(), Data: hexutil.Encode(data)},
	}
	return plan, nil
}

// SwapRequest describes an exact-input swap. QuotedOut is the expected output,
// usually from QuoteExactInput, and is reduced by SlippagePercent.
type SwapRequest struct {
	SwapRouter      common.Address
	TokenIn         common.Address
	TokenOut        common.Address
	IndexPath       []uint32
	AmountIn        *big.Int
	QuotedOut       *big.Int
	SlippagePercent float64
	Recipient       common.Address
	Now             time.Time
	DeadlineMinutes int
}

type exactInputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// PlanSwap builds SwapRouter.exactInput calldata.
func PlanSwap(req SwapRequest) (model.SwapPlan, error) {
	var plan model.SwapPlan

	if req.Recipient == (common.Address{}) {
		return plan, ErrZeroRecipient
	}
	if len(req.IndexPath) == 0 {
		return plan, ErrEmptyPath
	}
	token0, _, _, err := SortTokens(req.TokenIn, req.TokenOut)
	if err != nil {
		return plan, err
	}
	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return plan, fmt.Errorf("%w: amount in must be positive", pricemath.ErrInvalidArgument)
	}
	minOut, err := ApplySlippage(orZero(req.QuotedOut), req.SlippagePercent, true)
	if err != nil {
		return plan, err
	}
	zeroForOne := token0 == req.TokenIn
	limit := pricemath.SqrtPriceLimit(zeroForOne)
	deadline := Deadline(req.Now, req.DeadlineMinutes)

	parsed, err := SwapRouterABI()
	if err != nil {
		return plan, fmt.Errorf("parse swap router abi: %w", err)
	}
	data, err := parsed.Pack("exactInput", exactInputParams{
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		IndexPath:         req.IndexPath,
		Recipient:         req.Recipient,
		Deadline:          new(big.Int).SetUint64(deadline),
		AmountIn:          req.AmountIn,
		AmountOutMinimum:  minOut,
		SqrtPriceLimitX96: limit,
	})
	if err != nil {
		return plan, fmt.Errorf("pack exactInput: %w", err)
	}

	plan = model.SwapPlan{
		TokenIn:           req.TokenIn.Hex(),
		TokenOut:          req.TokenOut.Hex(),
		IndexPath:         append([]uint32(nil), req.IndexPath...),
		ZeroForOne:        zeroForOne,
		AmountIn:          req.AmountIn.String(),
		AmountOutMinimum:  minOut.String(),
		SqrtPriceLimitX96: limit.String(),
		Recipient:         req.Recipient.Hex(),
		Deadline:          deadline,
		Tx:                model.TxRequest{To: req.SwapRouter.Hex(), Data: hexutil.Encode(data)},
	}
	return plan, nil
}

// ExactOutputSwapRequest describes an exact-output swap. QuotedIn is the expected
// input, usually from QuoteExactOutput, and is raised by SlippagePercent.
type ExactOutputSwapRequest struct {
	SwapRouter      common.Address
	TokenIn         common.Address
	TokenOut        common.Address
	IndexPath       []uint32
	AmountOut       *big.Int
	QuotedIn        *big.Int
	SlippagePercent float64
	Recipient       common.Address
	Now             time.Time
	DeadlineMinutes int
}

type exactOutputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	IndexPath         []uint32
	Recipient         common.Address
	Deadline          *big.Int
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

// PlanSwapExactOutput builds SwapRouter.exactOutput calldata.
func PlanSwapExactOutput(req ExactOutputSwapRequest) (model.ExactOutputSwapPlan, error) {
	var plan model.ExactOutputSwapPlan

	if req.Recipient == (common.Address{}) {
		return plan, ErrZeroRecipient
	}
	if len(req.IndexPath) == 0 {
		return plan, ErrEmptyPath
	}
	token0, _, _, err := SortTokens(req.TokenIn, req.TokenOut)
	if err != nil {
		return plan, err
	}
	if req.AmountOut == nil || req.AmountOut.Sign() <= 0 {
		return plan, fmt.Errorf("%w: amount out must be positive", pricemath.ErrInvalidArgument)
	}
	if req.QuotedIn == nil || req.QuotedIn.Sign() <= 0 {
		return plan, fmt.Errorf("%w: quoted input must be positive", pricemath.ErrInvalidArgument)
	}
	maxIn, err := ApplySlippage(req.QuotedIn, req.SlippagePercent, false)
	if err != nil {
		return plan, err
	}
	zeroForOne := token0 == req.TokenIn
	limit := pricemath.SqrtPriceLimit(zeroForOne)
	deadline := Deadline(req.Now, req.DeadlineMinutes)

	parsed, err := SwapRouterABI()
	if err != nil {
		return plan, fmt.Errorf("parse swap router abi: %w", err)
	}
	data, err := parsed.Pack("exactOutput", exactOutputParams{
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		IndexPath:         req.IndexPath,
		Recipient:         req.Recipient,
		Deadline:          new(big.Int).SetUint64(deadline),
		AmountOut:         req.AmountOut,
		AmountInMaximum:   maxIn,
		SqrtPriceLimitX96: limit,
	})
	if err != nil {
		return plan, fmt.Errorf("pack exactOutput: %w", err)
	}

	plan = model.ExactOutputSwapPlan{
		TokenIn:           req.TokenIn.Hex(),
		TokenOut:          req.TokenOut.Hex(),
		IndexPath:         append([]uint32(nil), req.IndexPath...),
		ZeroForOne:        zeroForOne,
		AmountOut:         req.AmountOut.String(),
		AmountInMaximum:   maxIn.String(),
		SqrtPriceLimitX96: limit.String(),
		Recipient:         req.Recipient.Hex(),
		Deadline:          deadline,
		Tx:                model.TxRequest{To: req.SwapRouter.Hex(), Data: hexutil.Encode(data)},
	}
	return plan, nil
}

// PlanBurn builds PositionManager.burn calldata, which removes all liquidity of
// a position and credits it to tokens owed.
func PlanBurn(positionManager common.Address, positionID *big.Int) (model.BurnPlan, error) {
	if positionID == nil || positionID.Sign() < 0 {
		return model.BurnPlan{}, fmt.Errorf("%w: position id %v", pricemath.ErrInvalidArgument, positionID)
	}
	parsed, err := PositionManagerABI()
	if err != nil {
		return model.BurnPlan{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	data, err := parsed.Pack("burn", positionID)
	if err != nil {
		return model.BurnPlan{}, fmt.Errorf("pack burn: %w", err)
	}
	return model.BurnPlan{
		PositionID: positionID.String(),
		Tx:         model.TxRequest{To: positionManager.Hex(), Data: hexutil.Encode(data)},
	}, nil
}

// PlanCollect builds PositionManager.collect calldata sending owed tokens to recipient.
func PlanCollect(positionManager common.Address, positionID *big.Int, recipient common.Address) (model.CollectPlan, error) {
	if positionID == nil || positionID.Sign() < 0 {
		return model.CollectPlan{}, fmt.Errorf("%w: position id %v", pricemath.ErrInvalidArgument, positionID)
	}
	if recipient == (common.Address{}) {
		return model.CollectPlan{}, ErrZeroRecipient
	}
	parsed, err := PositionManagerABI()
	if err != nil {
		return model.CollectPlan{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	data, err := parsed.Pack("collect", positionID, recipient)
	if err != nil {
		return model.CollectPlan{}, fmt.Errorf("pack collect: %w", err)
	}
	return model.CollectPlan{
		PositionID: positionID.String(),
		Recipient:  recipient.Hex(),
		Tx:         model.TxRequest{To: positionManager.Hex(), Data: hexutil.Encode(data)},
	}, nil
}

// PlanApprove builds ERC20 approve calldata. A nil amount approves MaxApproval.
func PlanApprove(token, spender common.Address, amount *big.Int) (model.ApprovePlan, error) {
	if spender == (common.Address{}) {
		return model.ApprovePlan{}, ErrZeroSpender
	}
	if amount == nil {
		amount = MaxApproval
	}
	if amount.Sign() < 0 || amount.Cmp(MaxApproval) > 0 {
		return model.ApprovePlan{}, fmt.Errorf("%w: approval amount %s", pricemath.ErrInvalidArgument, amount)
	}
	erc20, err := ERC20ABI()
	if err != nil {
		return model.ApprovePlan{}, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := erc20.Pack("approve", spender, amount)
	if err != nil {
		return model.ApprovePlan{}, fmt.Errorf("pack approve: %w", err)
	}
	return model.ApprovePlan{
		Token:   token.Hex(),
		Spender: spender.Hex(),
		Amount:  amount.String(),
		Tx:      model.TxRequest{To: token.Hex(), Data: hexutil.Encode(data)},
	}, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
