package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolScope/internal/model"
)

// Schema creates the pool_snapshots table.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	chain_id        BIGINT      NOT NULL,
	pool_address    TEXT        NOT NULL,
	pool_index      BIGINT      NOT NULL,
	token0          TEXT        NOT NULL,
	token1          TEXT        NOT NULL,
	fee             INTEGER     NOT NULL,
	tick_spacing    INTEGER     NOT NULL,
	tick_lower      INTEGER     NOT NULL,
	tick_upper      INTEGER     NOT NULL,
	tick            INTEGER     NOT NULL,
	sqrt_price_x96  NUMERIC     NOT NULL,
	liquidity       NUMERIC     NOT NULL,
	price           DOUBLE PRECISION NOT NULL,
	tick_consistent BOOLEAN     NOT NULL,
	snapshot        JSONB       NOT NULL,
	observed_at     TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
)`

// Store provides Postgres persistence for pool snapshots.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool for dsn.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// PutPoolSnapshots upserts the latest snapshot per pool.
func (s *Store) PutPoolSnapshots(ctx context.Context, snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snapshot := range snapshots {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal pool snapshot: %w", err)
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (
				chain_id, pool_address, pool_index, token0, token1, fee, tick_spacing,
				tick_lower, tick_upper, tick, sqrt_price_x96, liquidity, price,
				tick_consistent, snapshot, observed_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::numeric,$12::numeric,$13,$14,$15,$16::timestamptz,now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				pool_index = EXCLUDED.pool_index,
				tick_lower = EXCLUDED.tick_lower,
				tick_upper = EXCLUDED.tick_upper,
				tick = EXCLUDED.tick,
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				liquidity = EXCLUDED.liquidity,
				price = EXCLUDED.price,
				tick_consistent = EXCLUDED.tick_consistent,
				snapshot = EXCLUDED.snapshot,
				observed_at = EXCLUDED.observed_at,
				updated_at = now()
		`,
			int64(snapshot.ChainID),
			snapshot.Address,
			int64(snapshot.Index),
			snapshot.Token0.Address,
			snapshot.Token1.Address,
			int64(snapshot.Fee),
			snapshot.TickSpacing,
			snapshot.TickLower,
			snapshot.TickUpper,
			snapshot.Tick,
			snapshot.SqrtPriceX96,
			snapshot.Liquidity,
			snapshot.Price,
			snapshot.TickConsistent,
			raw,
			snapshot.ObservedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool snapshot: %w", err)
		}
	}
	return nil
}

// LoadPoolSnapshot returns the stored snapshot for a pool.
func (s *Store) LoadPoolSnapshot(ctx context.Context, chainID uint64, address string) (model.PoolSnapshot, bool, error) {
	var snapshot model.PoolSnapshot
	if address == "" {
		return snapshot, false, fmt.Errorf("pool address required")
	}
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT snapshot FROM pool_snapshots WHERE chain_id=$1 AND pool_address=$2`, int64(chainID), address)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot, false, nil
		}
		return snapshot, false, err
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return snapshot, false, fmt.Errorf("decode pool snapshot: %w", err)
	}
	return snapshot, true, nil
}
