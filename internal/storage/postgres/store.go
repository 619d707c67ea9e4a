package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commitGuard/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_reports (
	id                  BIGSERIAL PRIMARY KEY,
	chain_id            BIGINT      NOT NULL,
	pool_address        TEXT        NOT NULL,
	evaluated_at        BIGINT      NOT NULL,
	observation_ts      BIGINT      NOT NULL,
	sqrt_price_x96      NUMERIC     NOT NULL,
	tick                INTEGER     NOT NULL,
	spot_price          NUMERIC     NOT NULL,
	average_tick        BIGINT      NOT NULL,
	twap_price          NUMERIC     NOT NULL,
	twap_window_seconds INTEGER     NOT NULL,
	stale               BOOLEAN     NOT NULL,
	price               NUMERIC     NOT NULL,
	price_source        TEXT        NOT NULL,
	fallback_price      NUMERIC,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (chain_id, pool_address, evaluated_at)
);

CREATE TABLE IF NOT EXISTS trade_commits (
	commit_hash    TEXT PRIMARY KEY,
	sender         TEXT        NOT NULL,
	amount_in      NUMERIC     NOT NULL,
	min_amount_out NUMERIC     NOT NULL,
	token_in       TEXT        NOT NULL,
	token_out      TEXT        NOT NULL,
	nonce          NUMERIC     NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
`

// Store writes price reports and commits to Postgres.
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

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// PutPriceReports inserts reports, ignoring duplicates of an evaluation.
func (s *Store) PutPriceReports(ctx context.Context, reports []model.PriceReport) error {
	if len(reports) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range reports {
		var fallback *string
		if r.Fallback != nil {
			fallback = &r.Fallback.CrossPrice
		}
		batch.Queue(`
			INSERT INTO price_reports (
				chain_id, pool_address, evaluated_at, observation_ts, sqrt_price_x96, tick,
				spot_price, average_tick, twap_price, twap_window_seconds, stale, price,
				price_source, fallback_price
			) VALUES ($1,$2,$3,$4,$5::numeric,$6,$7::numeric,$8,$9::numeric,$10,$11,$12::numeric,$13,$14::numeric)
			ON CONFLICT (chain_id, pool_address, evaluated_at) DO NOTHING
		`,
			int64(r.ChainID),
			r.Pool,
			int64(r.EvaluatedAt),
			int64(r.ObservationTS),
			r.SqrtPriceX96,
			r.Tick,
			r.SpotPrice,
			r.AverageTick,
			r.TwapPrice,
			int64(r.TwapWindowSecs),
			r.Stale,
			r.Price,
			r.PriceSource,
			fallback,
		)
	}
	return s.sendBatch(ctx, batch)
}

// PutCommits upserts commit records keyed by hash.
func (s *Store) PutCommits(ctx context.Context, commits []model.CommitRecord) error {
	if len(commits) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range commits {
		createdAt, err := time.Parse(time.RFC3339, c.CreatedAt)
		if err != nil {
			createdAt = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO trade_commits (
				commit_hash, sender, amount_in, min_amount_out, token_in, token_out, nonce, created_at
			) VALUES ($1,$2,$3::numeric,$4::numeric,$5,$6,$7::numeric,$8)
			ON CONFLICT (commit_hash) DO NOTHING
		`,
			c.CommitHash,
			c.Sender,
			c.AmountIn,
			c.MinAmountOut,
			c.TokenIn,
			c.TokenOut,
			c.Nonce,
			createdAt,
		)
	}
	return s.sendBatch(ctx, batch)
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
