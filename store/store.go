// Package store persists staged executions and rebuilt positions in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tradelytics/fillbook"
	"github.com/tradelytics/fillbook/config"
)

// Store wraps the SQLite connection. Decimal values are stored as text so
// they round-trip exactly; timestamps are stored as RFC 3339 in UTC.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open initializes the SQLite store, creating the schema when needed.
func Open(cfg config.Database, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ":memory:"
	} else if err := ensureDir(filepath.Dir(cfg.Path)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("cannot open sqlite database: %w", err)
	}
	if !cfg.InMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cannot enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS executions (
	seq                 INTEGER PRIMARY KEY AUTOINCREMENT,
	execution_id        TEXT,
	account             TEXT NOT NULL,
	instrument          TEXT NOT NULL,
	side                TEXT NOT NULL,
	quantity            INTEGER NOT NULL,
	price               TEXT NOT NULL,
	ts                  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS positions (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id              TEXT NOT NULL,
	account             TEXT NOT NULL,
	instrument          TEXT NOT NULL,
	direction           TEXT NOT NULL,
	status              TEXT NOT NULL,
	entry_time          TEXT NOT NULL,
	exit_time           TEXT,
	total_quantity      INTEGER NOT NULL,
	max_quantity        INTEGER NOT NULL,
	execution_refs      TEXT NOT NULL,
	average_entry_price TEXT NOT NULL,
	average_exit_price  TEXT,
	points_pnl          TEXT NOT NULL,
	dollars_pnl         TEXT,
	matched_quantity    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_positions_key ON positions(account, instrument);
CREATE TABLE IF NOT EXISTS rebuild_runs (
	run_id              TEXT NOT NULL,
	account             TEXT NOT NULL,
	instrument          TEXT NOT NULL,
	finished_at         TEXT NOT NULL,
	input_count         INTEGER NOT NULL,
	output_count        INTEGER NOT NULL,
	removed_count       INTEGER NOT NULL,
	anomaly_count       INTEGER NOT NULL,
	PRIMARY KEY (run_id, account, instrument)
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("cannot create schema: %w", err)
	}
	return nil
}

// StageExecutions appends raw imported executions verbatim. Deduplication
// and validation belong to the rebuild pipeline, not the staging table.
func (s *Store) StageExecutions(ctx context.Context, execs []fillbook.Execution) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin staging transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO executions (execution_id, account, instrument, side, quantity, price, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cannot prepare staging insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range execs {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Account, e.Instrument, string(e.Side), e.Quantity,
			e.Price.String(), e.Time.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("cannot stage execution %s: %w", e.Ref(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit staged executions: %w", err)
	}
	s.logger.Info("staged executions", zap.Int("count", len(execs)))
	return nil
}

// Executions returns all staged executions in import order.
func (s *Store) Executions(ctx context.Context) ([]fillbook.Execution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT execution_id, account, instrument, side, quantity, price, ts
		 FROM executions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("cannot query executions: %w", err)
	}
	defer rows.Close()

	var execs []fillbook.Execution
	for rows.Next() {
		var (
			e         fillbook.Execution
			side      string
			price, at string
		)
		if err := rows.Scan(&e.ID, &e.Account, &e.Instrument, &side, &e.Quantity, &price, &at); err != nil {
			return nil, fmt.Errorf("cannot scan execution: %w", err)
		}
		e.Side = fillbook.Side(side)
		if e.Price, err = fillbook.ParsePrice(price); err != nil {
			return nil, fmt.Errorf("corrupt price %q in store: %w", price, err)
		}
		if e.Time, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("corrupt timestamp %q in store: %w", at, err)
		}
		execs = append(execs, e)
	}
	return execs, rows.Err()
}

// ReplacePositions atomically replaces one partition's positions with a
// rebuild result and records the run's deduplication counters under runID.
func (s *Store) ReplacePositions(ctx context.Context, runID string, result fillbook.PartitionResult) error {
	if result.Err != nil {
		return fmt.Errorf("refusing to persist failed partition %s: %w", result.Key, result.Err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM positions WHERE account = ? AND instrument = ?`,
		result.Key.Account, result.Key.Instrument); err != nil {
		return fmt.Errorf("cannot clear positions for %s: %w", result.Key, err)
	}

	for _, p := range result.Positions {
		refs, err := json.Marshal(p.ExecutionRefs)
		if err != nil {
			return fmt.Errorf("cannot encode execution refs: %w", err)
		}
		var exitTime, avgExit, dollars any
		if p.ExitTime != nil {
			exitTime = p.ExitTime.UTC().Format(time.RFC3339Nano)
		}
		if p.AverageExitPrice != nil {
			avgExit = p.AverageExitPrice.String()
		}
		if p.DollarsPnL != nil {
			dollars = p.DollarsPnL.String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO positions (run_id, account, instrument, direction, status,
				entry_time, exit_time, total_quantity, max_quantity, execution_refs,
				average_entry_price, average_exit_price, points_pnl, dollars_pnl, matched_quantity)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.Account, p.Instrument, string(p.Direction), string(p.Status),
			p.EntryTime.UTC().Format(time.RFC3339Nano), exitTime,
			p.TotalQuantity, p.MaxQuantity, string(refs),
			p.AverageEntryPrice.String(), avgExit,
			p.PointsPnL.String(), dollars, p.MatchedQuantity); err != nil {
			return fmt.Errorf("cannot insert position for %s: %w", result.Key, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rebuild_runs (run_id, account, instrument, finished_at,
			input_count, output_count, removed_count, anomaly_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Key.Account, result.Key.Instrument,
		time.Now().UTC().Format(time.RFC3339Nano),
		result.Dedup.Input, result.Dedup.Output, result.Dedup.Removed,
		len(result.Dedup.Anomalies)); err != nil {
		return fmt.Errorf("cannot record rebuild run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit rebuild for %s: %w", result.Key, err)
	}
	s.logger.Info("replaced positions",
		zap.String("run_id", runID),
		zap.String("account", result.Key.Account),
		zap.String("instrument", result.Key.Instrument),
		zap.Int("positions", len(result.Positions)),
		zap.Int("duplicates_removed", result.Dedup.Removed),
		zap.Int("anomalies", len(result.Dedup.Anomalies)))
	return nil
}

// Positions lists stored positions, optionally filtered by account and
// instrument (empty string matches all), ordered by entry time.
func (s *Store) Positions(ctx context.Context, account, instrument string) ([]fillbook.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account, instrument, direction, status, entry_time, exit_time,
			total_quantity, max_quantity, execution_refs, average_entry_price,
			average_exit_price, points_pnl, dollars_pnl, matched_quantity
		 FROM positions
		 WHERE (? = '' OR account = ?) AND (? = '' OR instrument = ?)
		 ORDER BY account, instrument, entry_time`,
		account, account, instrument, instrument)
	if err != nil {
		return nil, fmt.Errorf("cannot query positions: %w", err)
	}
	defer rows.Close()

	var positions []fillbook.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func scanPosition(rows *sql.Rows) (fillbook.Position, error) {
	var (
		p                        fillbook.Position
		direction, status        string
		entryTime, refs          string
		exitTime, avgExit, money sql.NullString
		avgEntry, points         string
	)
	if err := rows.Scan(&p.Account, &p.Instrument, &direction, &status, &entryTime, &exitTime,
		&p.TotalQuantity, &p.MaxQuantity, &refs, &avgEntry, &avgExit, &points, &money,
		&p.MatchedQuantity); err != nil {
		return p, fmt.Errorf("cannot scan position: %w", err)
	}

	p.Direction = fillbook.Direction(direction)
	p.Status = fillbook.Status(status)

	var err error
	if p.EntryTime, err = time.Parse(time.RFC3339Nano, entryTime); err != nil {
		return p, fmt.Errorf("corrupt entry time %q in store: %w", entryTime, err)
	}
	if exitTime.Valid {
		t, err := time.Parse(time.RFC3339Nano, exitTime.String)
		if err != nil {
			return p, fmt.Errorf("corrupt exit time %q in store: %w", exitTime.String, err)
		}
		p.ExitTime = &t
	}
	if err := json.Unmarshal([]byte(refs), &p.ExecutionRefs); err != nil {
		return p, fmt.Errorf("corrupt execution refs in store: %w", err)
	}
	if p.AverageEntryPrice, err = fillbook.ParsePrice(avgEntry); err != nil {
		return p, fmt.Errorf("corrupt average entry price %q in store: %w", avgEntry, err)
	}
	if avgExit.Valid {
		price, err := fillbook.ParsePrice(avgExit.String)
		if err != nil {
			return p, fmt.Errorf("corrupt average exit price %q in store: %w", avgExit.String, err)
		}
		p.AverageExitPrice = &price
	}
	if p.PointsPnL, err = fillbook.ParsePrice(points); err != nil {
		return p, fmt.Errorf("corrupt points pnl %q in store: %w", points, err)
	}
	if money.Valid {
		price, err := fillbook.ParsePrice(money.String)
		if err != nil {
			return p, fmt.Errorf("corrupt dollars pnl %q in store: %w", money.String, err)
		}
		p.DollarsPnL = &price
	}
	return p, nil
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %q: %w", path, err)
	}
	return nil
}
