package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/coin_tracker/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer at a time; audit writes come from many fetch goroutines.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			coin_id TEXT NOT NULL DEFAULT '',
			ok BOOLEAN NOT NULL,
			status_code INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_kind_coin ON fetches(kind, coin_id);`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_created_at ON fetches(created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FetchRepository Implementation

func (s *SQLiteStore) SaveFetch(ctx context.Context, rec *domain.FetchRecord) error {
	query := `INSERT INTO fetches (kind, coin_id, ok, status_code, duration_ms, error, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		rec.Kind, rec.CoinID, rec.OK, rec.StatusCode, rec.Duration.Milliseconds(), rec.Error, rec.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (s *SQLiteStore) ListFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	query := `SELECT id, kind, coin_id, ok, status_code, duration_ms, error, created_at FROM fetches ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.FetchRecord
	for rows.Next() {
		var r domain.FetchRecord
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Kind, &r.CoinID, &r.OK, &r.StatusCode, &durationMs, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) CountFetches(ctx context.Context, kind, coinID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fetches WHERE kind = ? AND coin_id = ?`, kind, coinID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM fetches GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) PruneFetches(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fetches WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
