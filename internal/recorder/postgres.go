package recorder

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder persists run history to PostgreSQL.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to databaseURL and creates the tables if needed.
func NewPostgresRecorder(ctx context.Context, databaseURL string) (*PostgresRecorder, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r := &PostgresRecorder{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] postgres recorder connected: %s/%s", cfg.ConnConfig.Host, cfg.ConnConfig.Database)
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batch_runs (
			id          UUID PRIMARY KEY,
			provider    TEXT NOT NULL,
			watchlist   TEXT,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			range_start DATE NOT NULL,
			range_end   DATE NOT NULL,
			investment  NUMERIC NOT NULL,
			succeeded   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			warnings    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batch_results (
			id           BIGSERIAL PRIMARY KEY,
			run_id       UUID NOT NULL REFERENCES batch_runs(id),
			position     INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			comment      TEXT,
			status       TEXT NOT NULL,
			reason       TEXT,
			total_return DOUBLE PRECISION,
			volatility   DOUBLE PRECISION,
			max_drawdown DOUBLE PRECISION,
			ending_value NUMERIC
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON batch_results(run_id)`,
	}
	for _, s := range stmts {
		if _, err := r.pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBatch stores the run and its results in one transaction.
func (r *PostgresRecorder) RecordBatch(ctx context.Context, run *BatchRun) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		succeeded := run.Succeeded()
		if _, err := tx.Exec(ctx, `INSERT INTO batch_runs
			(id, provider, watchlist, started_at, finished_at, range_start, range_end,
			 investment, succeeded, failed, warnings)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			run.ID.String(), run.Provider, run.Watchlist, run.StartedAt, run.FinishedAt,
			run.RangeStart, run.RangeEnd, run.Investment.String(),
			succeeded, len(run.Results)-succeeded, run.Warnings,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for i, res := range run.Results {
			batch.Queue(`INSERT INTO batch_results
				(run_id, position, symbol, comment, status, reason, total_return, volatility, max_drawdown, ending_value)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				run.ID.String(), i, res.Symbol, res.Comment, res.Status, res.Reason,
				res.TotalReturn, res.Volatility, res.MaxDrawdown, res.EndingValue.String())
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
		return nil
	})
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	r.pool.Close()
	return nil
}
