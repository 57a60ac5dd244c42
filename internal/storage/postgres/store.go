package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityDesk/internal/model"
)

// Store provides Postgres persistence for transaction history and observed
// position states.
type Store struct {
	pool *pgxpool.Pool
}

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

// AppendTransactions inserts or updates transaction records keyed by hash.
// Resubmitted hashes update status and confirmation fields in place.
func (s *Store) AppendTransactions(ctx context.Context, records []model.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO transactions (
				chain_id, market, intent, position_id, tx_hash, status,
				collateral_delta, block_number, submitted_at, confirmed_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (chain_id, tx_hash)
			DO UPDATE SET
				status = EXCLUDED.status,
				position_id = EXCLUDED.position_id,
				block_number = EXCLUDED.block_number,
				confirmed_at = EXCLUDED.confirmed_at,
				updated_at = now()
		`,
			int64(record.ChainID),
			record.Market,
			record.Intent,
			record.PositionID,
			record.TxHash,
			record.Status,
			record.CollateralDelta,
			int64(record.BlockNumber),
			record.SubmittedAt,
			record.ConfirmedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPositions inserts or updates observed position states.
func (s *Store) UpsertPositions(ctx context.Context, records []model.PositionRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO positions (
				chain_id, market, position_id, kind, deposited_collateral,
				liquidity, tick_lower, tick_upper, observed_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (chain_id, market, position_id)
			DO UPDATE SET
				kind = EXCLUDED.kind,
				deposited_collateral = EXCLUDED.deposited_collateral,
				liquidity = EXCLUDED.liquidity,
				tick_lower = EXCLUDED.tick_lower,
				tick_upper = EXCLUDED.tick_upper,
				observed_at = EXCLUDED.observed_at,
				updated_at = now()
		`,
			int64(record.ChainID),
			record.Market,
			record.PositionID,
			int16(record.Kind),
			record.DepositedCollateral,
			record.Liquidity,
			record.TickLower,
			record.TickUpper,
			record.ObservedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
