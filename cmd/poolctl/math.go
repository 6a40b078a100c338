package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/api"
	"poolScope/internal/config"
	"poolScope/internal/pricemath"
)

func addSpacingFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32("fee", 3000, "fee tier in hundredths of a bip (500, 3000, 10000)")
	cmd.Flags().Int32("spacing", 0, "tick spacing, overrides --fee when positive")
}

func newTickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick <price>",
		Short: "Convert a price to its tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			price, err := parsePrice(args[0])
			if err != nil {
				return err
			}
			out, err := api.Tick(price, resolveSpacing(cmd, cfg, logger))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addSpacingFlags(cmd)
	return cmd
}

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price [--] <tick>",
		Short: "Convert a tick to its price and exact sqrt price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := parseTick(args[0])
			if err != nil {
				return err
			}
			out, err := api.Price(tick)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSqrtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqrt <price>",
		Short: "Convert a price to Q96 sqrt price, or back with --decode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out api.SqrtResult
				err error
			)
			if decode, _ := cmd.Flags().GetBool("decode"); decode {
				out, err = api.DecodeSqrt(args[0])
			} else {
				var price float64
				if price, err = parsePrice(args[0]); err == nil {
					out, err = api.Sqrt(price)
				}
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Bool("decode", false, "treat the argument as a Q96 sqrt price")
	return cmd
}

func newRangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range <price>",
		Short: "Derive a spacing-aligned tick range around a price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			price, err := parsePrice(args[0])
			if err != nil {
				return err
			}
			out, err := api.Range(price, cfg.RangePercent, resolveSpacing(cmd, cfg, logger))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addSpacingFlags(cmd)
	cmd.Flags().Float64("range-percent", 10, "band width around the price, in percent")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [--] <tick-lower> <tick-upper>",
		Short: "Check a tick range against bounds and spacing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			lower, err := parseTick(args[0])
			if err != nil {
				return err
			}
			upper, err := parseTick(args[1])
			if err != nil {
				return err
			}
			out, verr := api.Validate(lower, upper, resolveSpacing(cmd, cfg, logger))
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return verr
		},
	}
	addSpacingFlags(cmd)
	return cmd
}

// resolveSpacing prefers an explicit --spacing and otherwise maps the configured fee tier.
func resolveSpacing(cmd *cobra.Command, cfg config.Config, logger *zap.Logger) int32 {
	if spacing, _ := cmd.Flags().GetInt32("spacing"); spacing > 0 {
		return spacing
	}
	spacing, ok := pricemath.LookupTickSpacing(cfg.Fee)
	if !ok {
		logger.Warn("unknown fee tier, using default tick spacing",
			zap.Uint32("fee", cfg.Fee),
			zap.Int32("tick_spacing", pricemath.DefaultTickSpacing),
		)
		return pricemath.DefaultTickSpacing
	}
	return spacing
}

func parsePrice(input string) (float64, error) {
	price, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, fmt.Errorf("%w: price %q", pricemath.ErrInvalidArgument, input)
	}
	return price, nil
}

func parseTick(input string) (int32, error) {
	tick, err := strconv.ParseInt(input, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: tick %q", pricemath.ErrTickOutOfBounds, input)
		}
		return 0, fmt.Errorf("%w: tick %q", pricemath.ErrInvalidArgument, input)
	}
	return int32(tick), nil
}
