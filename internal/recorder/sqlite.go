package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batch_runs (
			id          TEXT PRIMARY KEY,
			provider    TEXT NOT NULL,
			watchlist   TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			range_start TEXT NOT NULL,
			range_end   TEXT NOT NULL,
			investment  TEXT NOT NULL,
			succeeded   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			warnings    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON batch_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS batch_results (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES batch_runs(id),
			position     INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			comment      TEXT,
			status       TEXT NOT NULL,
			reason       TEXT,
			total_return REAL,
			volatility   REAL,
			max_drawdown REAL,
			ending_value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON batch_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_symbol ON batch_results(symbol)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBatch stores the run and its results in one transaction.
func (r *SQLiteRecorder) RecordBatch(ctx context.Context, run *BatchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	succeeded := run.Succeeded()
	_, err = tx.ExecContext(ctx, `INSERT INTO batch_runs
		(id, provider, watchlist, started_at, finished_at, range_start, range_end,
		 investment, succeeded, failed, warnings)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID.String(), run.Provider, run.Watchlist,
		run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.RangeStart.Format("2006-01-02"), run.RangeEnd.Format("2006-01-02"),
		run.Investment.String(), succeeded, len(run.Results)-succeeded, run.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO batch_results
		(run_id, position, symbol, comment, status, reason, total_return, volatility, max_drawdown, ending_value)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()
	for i, res := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID.String(), i, res.Symbol, res.Comment, res.Status, res.Reason,
			res.TotalReturn, res.Volatility, res.MaxDrawdown, res.EndingValue.String()); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
