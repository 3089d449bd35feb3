package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dijiclick/pepebot/internal/domain"
)

// SQLiteStore persists daily usage counters and the emitted signal log.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS daily_usage (
			day TEXT PRIMARY KEY,
			calls INTEGER NOT NULL DEFAULT 0,
			escalations INTEGER NOT NULL DEFAULT 0,
			spend_usd REAL NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS signals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			entry REAL NOT NULL,
			tp REAL NOT NULL,
			sl REAL NOT NULL,
			confidence INTEGER NOT NULL,
			escalated BOOLEAN NOT NULL DEFAULT 0,
			reason TEXT,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// GetDailyUsage returns the counters for a day, or nil when the day has no
// row yet.
func (s *SQLiteStore) GetDailyUsage(ctx context.Context, day string) (*domain.DailyUsage, error) {
	query := `SELECT day, calls, escalations, spend_usd FROM daily_usage WHERE day = ?`
	row := s.db.QueryRowContext(ctx, query, day)

	var u domain.DailyUsage
	err := row.Scan(&u.Day, &u.Calls, &u.Escalations, &u.SpendUSD)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) SaveDailyUsage(ctx context.Context, usage *domain.DailyUsage) error {
	query := `INSERT INTO daily_usage (day, calls, escalations, spend_usd)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(day) DO UPDATE SET
			  calls=excluded.calls,
			  escalations=excluded.escalations,
			  spend_usd=excluded.spend_usd`
	_, err := s.db.ExecContext(ctx, query, usage.Day, usage.Calls, usage.Escalations, usage.SpendUSD)
	return err
}

func (s *SQLiteStore) SaveSignal(ctx context.Context, signal *domain.SignalRecord) error {
	query := `INSERT INTO signals (symbol, direction, entry, tp, sl, confidence, escalated, reason, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		signal.Symbol, signal.Direction, signal.Entry, signal.TP, signal.SL,
		signal.Confidence, signal.Escalated, signal.Reason, signal.CreatedAt)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		signal.ID = id
	}
	return nil
}

// ListSignals returns the most recent signals, newest first.
func (s *SQLiteStore) ListSignals(ctx context.Context, limit int) ([]*domain.SignalRecord, error) {
	query := `SELECT id, symbol, direction, entry, tp, sl, confidence, escalated, reason, created_at
			  FROM signals ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*domain.SignalRecord
	for rows.Next() {
		var r domain.SignalRecord
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Direction, &r.Entry, &r.TP, &r.SL,
			&r.Confidence, &r.Escalated, &r.Reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		signals = append(signals, &r)
	}
	return signals, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
