package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/dex"
	"poolScope/internal/display"
	"poolScope/internal/model"
)

var errUnknownToken = errors.New("unknown token decimals")

// tokenResolver maps CLI token arguments (addresses or configured symbols) to metadata.
type tokenResolver struct {
	cfg    config.Config
	cache  *dex.TokenMetaCache
	caller chain.Caller
	logger *zap.Logger
}

func newTokenResolver(cfg config.Config, caller chain.Caller, logger *zap.Logger) (*tokenResolver, error) {
	cache, err := dex.NewTokenMetaCacheFromList(cfg.Tokens)
	if err != nil {
		return nil, err
	}
	return &tokenResolver{cfg: cfg, cache: cache, caller: caller, logger: logger}, nil
}

func (r *tokenResolver) resolve(ctx context.Context, input string) (common.Address, model.TokenMeta, error) {
	if input == "" {
		return common.Address{}, model.TokenMeta{}, fmt.Errorf("token is required")
	}
	if token, ok := r.cfg.TokenBySymbol(input); ok {
		input = token.Address
	}
	addr, err := dex.ParseAddress(input)
	if err != nil {
		return common.Address{}, model.TokenMeta{}, err
	}
	if meta, ok := r.cache.Get(addr); ok {
		return addr, meta, nil
	}
	// Amounts and prices depend on decimals, so guessing them is not an option here.
	if r.caller == nil {
		return common.Address{}, model.TokenMeta{}, fmt.Errorf("%w: %s is not configured, pass --rpc to read its decimals", errUnknownToken, addr.Hex())
	}
	meta, err := dex.FetchTokenMeta(ctx, r.caller, addr, r.logger)
	if err != nil {
		return common.Address{}, model.TokenMeta{}, fmt.Errorf("%w: %s: %v", errUnknownToken, addr.Hex(), err)
	}
	r.cache.Set(addr, meta)
	return addr, meta, nil
}

// amount parses a human amount using the token's decimals.
func (r *tokenResolver) amount(input string, meta model.TokenMeta) (*big.Int, error) {
	if input == "" {
		return new(big.Int), nil
	}
	value, err := display.ParseTokenAmount(input, meta.Decimals)
	if err != nil {
		return nil, fmt.Errorf("amount for %s: %w", meta.Symbol, err)
	}
	return value, nil
}

func requireAddress(name, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("%s is required", name)
	}
	addr, err := dex.ParseAddress(value)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

// dialChain connects to the configured RPC and wraps it with retries.
func dialChain(ctx context.Context, cfg config.Config) (*chain.Client, chain.Caller, error) {
	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	caller := &chain.RetryCaller{Caller: client, MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBackoff}
	return client, caller, nil
}

func addRPCFlags(cmd *cobra.Command, usage string) {
	cmd.Flags().String("rpc", "", usage)
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
}

// dialIfConfigured connects the resolver to chain when an RPC URL is set. The
// returned func closes the connection and is safe to call either way.
func (r *tokenResolver) dialIfConfigured(ctx context.Context) (func(), error) {
	if r.cfg.RPCURL == "" {
		return func() {}, nil
	}
	client, caller, err := dialChain(ctx, r.cfg)
	if err != nil {
		return nil, err
	}
	r.caller = caller
	return client.Close, nil
}
