package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"elecprice/internal/coordinator"
)

// SQLiteRecorder persists cycles to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
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

	slog.Info("journal opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL UNIQUE,
			recorded_at INTEGER NOT NULL,
			region      TEXT NOT NULL,
			state       TEXT NOT NULL,
			provenance  TEXT NOT NULL,
			synthetic   INTEGER NOT NULL,
			records     INTEGER NOT NULL,
			message     TEXT,
			attempts    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_recorded_at ON cycles(recorded_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a completed cycle. Recording the same cycle twice is a no-op.
func (r *SQLiteRecorder) Record(ctx context.Context, result coordinator.Result) error {
	e := NewEntry(result)
	attempts, err := json.Marshal(e.Attempts)
	if err != nil {
		return fmt.Errorf("encode attempts: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cycles
			(cycle_id, recorded_at, region, state, provenance, synthetic, records, message, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CycleID, e.RecordedAt.UnixMilli(), e.Region, string(e.State), e.Provenance,
		e.Synthetic, e.Records, e.Message, string(attempts),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// Recent returns up to limit cycles, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cycle_id, recorded_at, region, state, provenance, synthetic, records, message, attempts
		FROM cycles ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			recordedAt int64
			state      string
			message    sql.NullString
			attempts   sql.NullString
		)
		if err := rows.Scan(&e.CycleID, &recordedAt, &e.Region, &state, &e.Provenance,
			&e.Synthetic, &e.Records, &message, &attempts); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		e.RecordedAt = time.UnixMilli(recordedAt).UTC()
		e.State = coordinator.State(state)
		e.Message = message.String
		if attempts.Valid && attempts.String != "" {
			if err := json.Unmarshal([]byte(attempts.String), &e.Attempts); err != nil {
				return nil, fmt.Errorf("decode attempts of %s: %w", e.CycleID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
