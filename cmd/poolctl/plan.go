package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/dex"
	"poolScope/internal/pricemath"
)

func newCreatePoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Build createAndInitializePoolIfNecessary calldata",
		RunE:  runCreatePool,
	}
	addRPCFlags(cmd, "RPC URL, used to read decimals of unconfigured tokens")
	cmd.Flags().String("pool-manager", "", "PoolManager address")
	cmd.Flags().String("token-a", "", "first token address or configured symbol")
	cmd.Flags().String("token-b", "", "second token address or configured symbol")
	cmd.Flags().Float64("price", 0, "initial price as token-b per token-a")
	cmd.Flags().Uint32("fee", 3000, "fee tier (500, 3000, 10000)")
	cmd.Flags().Float64("range-percent", 10, "band width around the price, in percent")
	cmd.Flags().Int32("tick-lower", 0, "explicit lower tick (with --tick-upper)")
	cmd.Flags().Int32("tick-upper", 0, "explicit upper tick (with --tick-lower)")
	cmd.Flags().Bool("full-range", false, "use the widest usable tick range")
	return cmd
}

func runCreatePool(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolManager, err := requireAddress("pool manager", cfg.PoolManager)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	resolver, err := newTokenResolver(cfg, nil, logger)
	if err != nil {
		return err
	}
	closeChain, err := resolver.dialIfConfigured(ctx)
	if err != nil {
		return err
	}
	defer closeChain()

	tokenA, _ := cmd.Flags().GetString("token-a")
	addrA, metaA, err := resolver.resolve(ctx, tokenA)
	if err != nil {
		return fmt.Errorf("token-a: %w", err)
	}
	tokenB, _ := cmd.Flags().GetString("token-b")
	addrB, metaB, err := resolver.resolve(ctx, tokenB)
	if err != nil {
		return fmt.Errorf("token-b: %w", err)
	}

	price, _ := cmd.Flags().GetFloat64("price")
	req := dex.CreatePoolRequest{
		PoolManager:  poolManager,
		TokenA:       addrA,
		TokenB:       addrB,
		DecimalsA:    metaA.Decimals,
		DecimalsB:    metaB.Decimals,
		Fee:          cfg.Fee,
		Price:        price,
		Mode:         dex.RangePercent,
		RangePercent: cfg.RangePercent,
	}

	fullRange, _ := cmd.Flags().GetBool("full-range")
	explicit := cmd.Flags().Changed("tick-lower") || cmd.Flags().Changed("tick-upper")
	switch {
	case fullRange && explicit:
		return fmt.Errorf("%w: --full-range conflicts with explicit ticks", pricemath.ErrInvalidArgument)
	case fullRange:
		req.Mode = dex.RangeFull
	case explicit:
		req.Mode = dex.RangeTicks
		req.TickLower, _ = cmd.Flags().GetInt32("tick-lower")
		req.TickUpper, _ = cmd.Flags().GetInt32("tick-upper")
	}

	plan, err := dex.PlanCreatePool(req)
	if err != nil {
		return err
	}
	logger.Info("create pool planned",
		zap.String("token0", plan.Token0),
		zap.String("token1", plan.Token1),
		zap.Uint32("fee", plan.Fee),
		zap.Int32("tick_lower", plan.TickLower),
		zap.Int32("tick_upper", plan.TickUpper),
	)
	return writeJSON(cmd.OutOrStdout(), plan)
}

func newMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Build PositionManager.mint calldata",
		RunE:  runMint,
	}
	addRPCFlags(cmd, "RPC URL, used to read token decimals and look up the pool")
	cmd.Flags().String("pool-manager", "", "PoolManager address, checked for the pool when --rpc is set")
	cmd.Flags().String("position-manager", "", "PositionManager address")
	cmd.Flags().String("token-a", "", "first token address or configured symbol")
	cmd.Flags().String("token-b", "", "second token address or configured symbol")
	cmd.Flags().Uint32("index", 0, "pool index for the pair")
	cmd.Flags().String("amount-a", "", "desired amount of token-a in token units")
	cmd.Flags().String("amount-b", "", "desired amount of token-b in token units")
	cmd.Flags().String("recipient", "", "position recipient address")
	cmd.Flags().Int("deadline-minutes", 20, "transaction deadline in minutes")
	return cmd
}

func runMint(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	positionManager, err := requireAddress("position manager", cfg.PositionManager)
	if err != nil {
		return err
	}
	recipient, err := requireAddress("recipient", cfg.Recipient)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	resolver, err := newTokenResolver(cfg, nil, logger)
	if err != nil {
		return err
	}
	closeChain, err := resolver.dialIfConfigured(ctx)
	if err != nil {
		return err
	}
	defer closeChain()

	tokenA, _ := cmd.Flags().GetString("token-a")
	addrA, metaA, err := resolver.resolve(ctx, tokenA)
	if err != nil {
		return fmt.Errorf("token-a: %w", err)
	}
	tokenB, _ := cmd.Flags().GetString("token-b")
	addrB, metaB, err := resolver.resolve(ctx, tokenB)
	if err != nil {
		return fmt.Errorf("token-b: %w", err)
	}

	amountAText, _ := cmd.Flags().GetString("amount-a")
	amountA, err := resolver.amount(amountAText, metaA)
	if err != nil {
		return err
	}
	amountBText, _ := cmd.Flags().GetString("amount-b")
	amountB, err := resolver.amount(amountBText, metaB)
	if err != nil {
		return err
	}
	index, _ := cmd.Flags().GetUint32("index")

	var pool common.Address
	if resolver.caller != nil && cfg.PoolManager != "" {
		poolManager, err := requireAddress("pool manager", cfg.PoolManager)
		if err != nil {
			return err
		}
		if pool, err = dex.LookupPool(ctx, resolver.caller, poolManager, addrA, addrB, index); err != nil {
			return fmt.Errorf("look up pool: %w", err)
		}
	}

	plan, err := dex.PlanMint(dex.MintRequest{
		PositionManager: positionManager,
		TokenA:          addrA,
		TokenB:          addrB,
		Index:           index,
		AmountA:         amountA,
		AmountB:         amountB,
		Recipient:       recipient,
		Now:             time.Now(),
		DeadlineMinutes: cfg.DeadlineMinutes,
	})
	if err != nil {
		return err
	}
	if pool != (common.Address{}) {
		plan.Pool = pool.Hex()
	}
	return writeJSON(cmd.OutOrStdout(), plan)
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Build SwapRouter.exactInput calldata",
		RunE:  runSwap,
	}
	addRPCFlags(cmd, "RPC URL, used to quote when --quoted-out is empty")
	cmd.Flags().String("swap-router", "", "SwapRouter address")
	cmd.Flags().String("token-in", "", "input token address or configured symbol")
	cmd.Flags().String("token-out", "", "output token address or configured symbol")
	cmd.Flags().String("amount-in", "", "input amount in token units")
	cmd.Flags().String("quoted-out", "", "expected output in token units")
	cmd.Flags().String("index-path", "0", "pool indexes to route through (comma-separated)")
	cmd.Flags().Float64("slippage", 0.5, "slippage tolerance in percent")
	cmd.Flags().String("recipient", "", "output recipient address")
	cmd.Flags().Int("deadline-minutes", 20, "transaction deadline in minutes")
	return cmd
}

func runSwap(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	router, err := requireAddress("swap router", cfg.SwapRouter)
	if err != nil {
		return err
	}
	recipient, err := requireAddress("recipient", cfg.Recipient)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	quotedText, _ := cmd.Flags().GetString("quoted-out")
	online := quotedText == "" && cfg.RPCURL != ""

	resolver, err := newTokenResolver(cfg, nil, logger)
	if err != nil {
		return err
	}
	closeChain, err := resolver.dialIfConfigured(ctx)
	if err != nil {
		return err
	}
	defer closeChain()

	tokenIn, _ := cmd.Flags().GetString("token-in")
	addrIn, metaIn, err := resolver.resolve(ctx, tokenIn)
	if err != nil {
		return fmt.Errorf("token-in: %w", err)
	}
	tokenOut, _ := cmd.Flags().GetString("token-out")
	addrOut, metaOut, err := resolver.resolve(ctx, tokenOut)
	if err != nil {
		return fmt.Errorf("token-out: %w", err)
	}
	amountText, _ := cmd.Flags().GetString("amount-in")
	amountIn, err := resolver.amount(amountText, metaIn)
	if err != nil {
		return err
	}

	quotedOut, err := resolver.amount(quotedText, metaOut)
	if err != nil {
		return err
	}
	if online {
		quotedOut, err = dex.QuoteExactInput(ctx, resolver.caller, router, dex.QuoteRequest{
			TokenIn:   addrIn,
			TokenOut:  addrOut,
			IndexPath: cfg.IndexPath,
			AmountIn:  amountIn,
		})
		if err != nil {
			return fmt.Errorf("quote: %w", err)
		}
	} else if quotedOut.Sign() == 0 {
		logger.Warn("no quote available, amountOutMinimum will be zero")
	}

	plan, err := dex.PlanSwap(dex.SwapRequest{
		SwapRouter:      router,
		TokenIn:         addrIn,
		TokenOut:        addrOut,
		IndexPath:       cfg.IndexPath,
		AmountIn:        amountIn,
		QuotedOut:       quotedOut,
		SlippagePercent: cfg.Slippage,
		Recipient:       recipient,
		Now:             time.Now(),
		DeadlineMinutes: cfg.DeadlineMinutes,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), plan)
}

func newSwapExactOutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap-exact-out",
		Short: "Build SwapRouter.exactOutput calldata",
		RunE:  runSwapExactOut,
	}
	addRPCFlags(cmd, "RPC URL, used to quote when --quoted-in is empty")
	cmd.Flags().String("swap-router", "", "SwapRouter address")
	cmd.Flags().String("token-in", "", "input token address or configured symbol")
	cmd.Flags().String("token-out", "", "output token address or configured symbol")
	cmd.Flags().String("amount-out", "", "exact output amount in token units")
	cmd.Flags().String("quoted-in", "", "expected input in token units")
	cmd.Flags().String("index-path", "0", "pool indexes to route through (comma-separated)")
	cmd.Flags().Float64("slippage", 0.5, "slippage tolerance in percent")
	cmd.Flags().String("recipient", "", "output recipient address")
	cmd.Flags().Int("deadline-minutes", 20, "transaction deadline in minutes")
	return cmd
}

func runSwapExactOut(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	router, err := requireAddress("swap router", cfg.SwapRouter)
	if err != nil {
		return err
	}
	recipient, err := requireAddress("recipient", cfg.Recipient)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	resolver, err := newTokenResolver(cfg, nil, logger)
	if err != nil {
		return err
	}
	closeChain, err := resolver.dialIfConfigured(ctx)
	if err != nil {
		return err
	}
	defer closeChain()

	tokenIn, _ := cmd.Flags().GetString("token-in")
	addrIn, metaIn, err := resolver.resolve(ctx, tokenIn)
	if err != nil {
		return fmt.Errorf("token-in: %w", err)
	}
	tokenOut, _ := cmd.Flags().GetString("token-out")
	addrOut, metaOut, err := resolver.resolve(ctx, tokenOut)
	if err != nil {
		return fmt.Errorf("token-out: %w", err)
	}
	amountText, _ := cmd.Flags().GetString("amount-out")
	amountOut, err := resolver.amount(amountText, metaOut)
	if err != nil {
		return err
	}

	quotedText, _ := cmd.Flags().GetString("quoted-in")
	quotedIn, err := resolver.amount(quotedText, metaIn)
	if err != nil {
		return err
	}
	if quotedText == "" {
		if resolver.caller == nil {
			return fmt.Errorf("--quoted-in or --rpc is required for an exact-output swap")
		}
		quotedIn, err = dex.QuoteExactOutput(ctx, resolver.caller, router, dex.ExactOutputQuoteRequest{
			TokenIn:   addrIn,
			TokenOut:  addrOut,
			IndexPath: cfg.IndexPath,
			AmountOut: amountOut,
		})
		if err != nil {
			return fmt.Errorf("quote: %w", err)
		}
	}

	plan, err := dex.PlanSwapExactOutput(dex.ExactOutputSwapRequest{
		SwapRouter:      router,
		TokenIn:         addrIn,
		TokenOut:        addrOut,
		IndexPath:       cfg.IndexPath,
		AmountOut:       amountOut,
		QuotedIn:        quotedIn,
		SlippagePercent: cfg.Slippage,
		Recipient:       recipient,
		Now:             time.Now(),
		DeadlineMinutes: cfg.DeadlineMinutes,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), plan)
}
