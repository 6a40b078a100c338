package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/dex"
	"poolScope/internal/model"
	"poolScope/internal/storage"
	"poolScope/internal/storage/postgres"
)

func newPoolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "List PoolManager pools with derived prices",
		RunE:  runPools,
	}
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("pool-manager", "", "PoolManager address")
	cmd.Flags().Bool("balances", false, "also read each pool's token balances")
	cmd.Flags().String("out", "", "append snapshots to this JSONL file")
	cmd.Flags().String("pg-dsn", "", "upsert snapshots into Postgres")
	cmd.Flags().Bool("diff", false, "print changes against the last snapshots stored in Postgres")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	return cmd
}

func runPools(cmd *cobra.Command, _ []string) error {
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

	client, caller, err := dialChain(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("fetch chain id: %w", err)
	}
	block, err := client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest block: %w", err)
	}
	tokens, err := dex.NewTokenMetaCacheFromList(cfg.Tokens)
	if err != nil {
		return err
	}

	balances, _ := cmd.Flags().GetBool("balances")
	snapshots, err := dex.ListPools(ctx, caller, poolManager, dex.ListOptions{
		ChainID:  chainID.Uint64(),
		Tokens:   tokens,
		Balances: balances,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	logger.Info("pools listed",
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.Uint64("block", block),
		zap.String("pool_manager", poolManager.Hex()),
		zap.Int("pools", len(snapshots)),
	)

	showDiff, _ := cmd.Flags().GetBool("diff")
	if showDiff && cfg.PGDSN == "" {
		return fmt.Errorf("--diff needs --pg-dsn")
	}

	var (
		sinks []storage.SnapshotSink
		diffs []model.PoolDiff
	)
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if showDiff {
			// Must run before the upsert replaces the stored rows.
			if diffs, err = diffPools(ctx, store, chainID.Uint64(), snapshots); err != nil {
				return err
			}
		}
		sinks = append(sinks, store)
	}
	for _, sink := range sinks {
		if err := sink.PutPoolSnapshots(ctx, snapshots); err != nil {
			return err
		}
	}

	if showDiff {
		return writeJSON(cmd.OutOrStdout(), diffs)
	}
	return writeJSON(cmd.OutOrStdout(), snapshots)
}

type snapshotLoader interface {
	LoadPoolSnapshot(ctx context.Context, chainID uint64, address string) (model.PoolSnapshot, bool, error)
}

func diffPools(ctx context.Context, loader snapshotLoader, chainID uint64, snapshots []model.PoolSnapshot) ([]model.PoolDiff, error) {
	diffs := make([]model.PoolDiff, 0, len(snapshots))
	for _, snapshot := range snapshots {
		prev, ok, err := loader.LoadPoolSnapshot(ctx, chainID, snapshot.Address)
		if err != nil {
			return nil, fmt.Errorf("load pool snapshot %s: %w", snapshot.Address, err)
		}
		if ok {
			diffs = append(diffs, dex.DiffSnapshot(&prev, snapshot))
		} else {
			diffs = append(diffs, dex.DiffSnapshot(nil, snapshot))
		}
	}
	return diffs, nil
}
