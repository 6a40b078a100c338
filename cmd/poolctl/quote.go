package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"poolScope/internal/dex"
	"poolScope/internal/display"
)

type quoteOutput struct {
	TokenIn       string   `json:"token_in"`
	TokenOut      string   `json:"token_out"`
	IndexPath     []uint32 `json:"index_path"`
	AmountIn      string   `json:"amount_in"`
	AmountInText  string   `json:"amount_in_text"`
	AmountOut     string   `json:"amount_out"`
	AmountOutText string   `json:"amount_out_text"`
	MinimumOut    string   `json:"minimum_out,omitempty"`
	MaximumIn     string   `json:"maximum_in,omitempty"`
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap through the SwapRouter",
		Long:  "Quote a swap through the SwapRouter. --amount-in quotes an exact-input swap, --amount-out an exact-output one.",
		RunE:  runQuote,
	}
	addRPCFlags(cmd, "RPC URL")
	cmd.Flags().String("swap-router", "", "SwapRouter address")
	cmd.Flags().String("token-in", "", "input token address or configured symbol")
	cmd.Flags().String("token-out", "", "output token address or configured symbol")
	cmd.Flags().String("amount-in", "", "input amount in token units")
	cmd.Flags().String("amount-out", "", "output amount in token units")
	cmd.Flags().String("index-path", "0", "pool indexes to route through (comma-separated)")
	cmd.Flags().Float64("slippage", 0.5, "slippage tolerance in percent")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	router, err := requireAddress("swap router", cfg.SwapRouter)
	if err != nil {
		return err
	}
	amountInText, _ := cmd.Flags().GetString("amount-in")
	amountOutText, _ := cmd.Flags().GetString("amount-out")
	if (amountInText == "") == (amountOutText == "") {
		return fmt.Errorf("exactly one of --amount-in and --amount-out is required")
	}

	ctx, stop := signalContext()
	defer stop()

	client, caller, err := dialChain(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	resolver, err := newTokenResolver(cfg, caller, logger)
	if err != nil {
		return err
	}
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

	out := quoteOutput{TokenIn: addrIn.Hex(), TokenOut: addrOut.Hex(), IndexPath: cfg.IndexPath}
	if amountInText != "" {
		amountIn, err := resolver.amount(amountInText, metaIn)
		if err != nil {
			return err
		}
		amountOut, err := dex.QuoteExactInput(ctx, caller, router, dex.QuoteRequest{
			TokenIn:   addrIn,
			TokenOut:  addrOut,
			IndexPath: cfg.IndexPath,
			AmountIn:  amountIn,
		})
		if err != nil {
			return fmt.Errorf("quote: %w", err)
		}
		minimumOut, err := dex.ApplySlippage(amountOut, cfg.Slippage, true)
		if err != nil {
			return err
		}
		out.AmountIn, out.AmountOut, out.MinimumOut = amountIn.String(), amountOut.String(), minimumOut.String()
		out.AmountInText = display.FormatTokenAmount(amountIn, metaIn.Decimals)
		out.AmountOutText = display.FormatTokenAmount(amountOut, metaOut.Decimals)
		return writeJSON(cmd.OutOrStdout(), out)
	}

	amountOut, err := resolver.amount(amountOutText, metaOut)
	if err != nil {
		return err
	}
	amountIn, err := dex.QuoteExactOutput(ctx, caller, router, dex.ExactOutputQuoteRequest{
		TokenIn:   addrIn,
		TokenOut:  addrOut,
		IndexPath: cfg.IndexPath,
		AmountOut: amountOut,
	})
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	maximumIn, err := dex.ApplySlippage(amountIn, cfg.Slippage, false)
	if err != nil {
		return err
	}
	out.AmountIn, out.AmountOut, out.MaximumIn = amountIn.String(), amountOut.String(), maximumIn.String()
	out.AmountInText = display.FormatTokenAmount(amountIn, metaIn.Decimals)
	out.AmountOutText = display.FormatTokenAmount(amountOut, metaOut.Decimals)
	return writeJSON(cmd.OutOrStdout(), out)
}
