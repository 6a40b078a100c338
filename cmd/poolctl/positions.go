package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/dex"
)

func newPositionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List PositionManager positions with their price ranges",
		RunE:  runPositions,
	}
	addRPCFlags(cmd, "RPC URL")
	cmd.Flags().String("position-manager", "", "PositionManager address")
	cmd.Flags().String("owner", "", "only list positions owned by this address")
	return cmd
}

func runPositions(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	positionManager, err := requireAddress("position manager", cfg.PositionManager)
	if err != nil {
		return err
	}
	var owner common.Address
	if text, _ := cmd.Flags().GetString("owner"); text != "" {
		if owner, err = dex.ParseAddress(text); err != nil {
			return fmt.Errorf("owner: %w", err)
		}
	}

	ctx, stop := signalContext()
	defer stop()

	client, caller, err := dialChain(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	tokens, err := dex.NewTokenMetaCacheFromList(cfg.Tokens)
	if err != nil {
		return err
	}
	positions, err := dex.ListPositions(ctx, caller, positionManager, dex.PositionOptions{
		Owner:  owner,
		Tokens: tokens,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	logger.Info("positions listed",
		zap.String("position_manager", positionManager.Hex()),
		zap.Int("positions", len(positions)),
	)
	return writeJSON(cmd.OutOrStdout(), positions)
}

func newBurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burn <position-id>",
		Short: "Build PositionManager.burn calldata",
		Args:  cobra.ExactArgs(1),
		RunE:  runBurn,
	}
	cmd.Flags().String("position-manager", "", "PositionManager address")
	return cmd
}

func runBurn(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	positionManager, err := requireAddress("position manager", cfg.PositionManager)
	if err != nil {
		return err
	}
	id, err := parsePositionID(args[0])
	if err != nil {
		return err
	}
	plan, err := dex.PlanBurn(positionManager, id)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), plan)
}

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <position-id>",
		Short: "Build PositionManager.collect calldata",
		Args:  cobra.ExactArgs(1),
		RunE:  runCollect,
	}
	cmd.Flags().String("position-manager", "", "PositionManager address")
	cmd.Flags().String("recipient", "", "address receiving the owed tokens")
	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
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
	id, err := parsePositionID(args[0])
	if err != nil {
		return err
	}
	plan, err := dex.PlanCollect(positionManager, id, recipient)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), plan)
}

func newApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Build ERC20 approve calldata for the router or position manager",
		RunE:  runApprove,
	}
	addRPCFlags(cmd, "RPC URL, used to read decimals of unconfigured tokens")
	cmd.Flags().String("token", "", "token address or configured symbol")
	cmd.Flags().String("spender", "", "spender address, or \"router\" / \"position-manager\"")
	cmd.Flags().String("amount", "", "allowance in token units (default unlimited)")
	cmd.Flags().String("swap-router", "", "SwapRouter address")
	cmd.Flags().String("position-manager", "", "PositionManager address")
	return cmd
}

func runApprove(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	spenderText, _ := cmd.Flags().GetString("spender")
	switch spenderText {
	case "router":
		spenderText = cfg.SwapRouter
	case "position-manager":
		spenderText = cfg.PositionManager
	}
	spender, err := requireAddress("spender", spenderText)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	resolver, err := newTokenResolver(cfg, nil, logger)
	if err != nil {
		return err
	}
	amountText, _ := cmd.Flags().GetString("amount")
	tokenText, _ := cmd.Flags().GetString("token")

	var amount *big.Int
	token, err := requireAddress("token", tokenText)
	if amountText != "" || err != nil {
		// Symbols and human amounts both need token metadata.
		closeChain, err := resolver.dialIfConfigured(ctx)
		if err != nil {
			return err
		}
		defer closeChain()

		addr, meta, err := resolver.resolve(ctx, tokenText)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		token = addr
		if amountText != "" {
			if amount, err = resolver.amount(amountText, meta); err != nil {
				return err
			}
		}
	}

	plan, err := dex.PlanApprove(token, spender, amount)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), plan)
}

func parsePositionID(input string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(input, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid position id %q", input)
	}
	return id, nil
}
