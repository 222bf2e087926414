package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/sheikh-saqib/point-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

// SQLitePointStore is a single-file implementation of
// interfaces.PointStore for disk-backed single-node deployments. Same
// table shape as the Postgres store, driver placeholders aside.
type SQLitePointStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*SQLitePointStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time; a second connection would just
	// hit SQLITE_BUSY under the ledger's concurrent critical sections.
	db.SetMaxOpenConns(1)

	store := &SQLitePointStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLitePointStore) Close() error {
	return s.db.Close()
}

func (s *SQLitePointStore) ensureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS point_balances (
		user_id    INTEGER PRIMARY KEY,
		amount     INTEGER NOT NULL CHECK (amount >= 0),
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS point_histories (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		user_id     INTEGER NOT NULL,
		delta       INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_point_histories_user ON point_histories (user_id, seq);`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLitePointStore) AccountGet(ctx context.Context, userID int64) (models.Balance, bool, error) {
	const query = `SELECT user_id, amount, updated_at FROM point_balances WHERE user_id = ?`

	var balance models.Balance
	err := s.db.QueryRowContext(ctx, query, userID).
		Scan(&balance.UserID, &balance.Amount, &balance.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Balance{}, false, nil
	}
	if err != nil {
		return models.Balance{}, false, err
	}
	return balance, true, nil
}

func (s *SQLitePointStore) AccountSet(ctx context.Context, userID int64, amount int64) (models.Balance, error) {
	const query = `INSERT INTO point_balances (user_id, amount, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, query, userID, amount, now); err != nil {
		return models.Balance{}, err
	}
	return models.Balance{UserID: userID, Amount: amount, UpdatedAt: now}, nil
}

func (s *SQLitePointStore) HistoryAppend(ctx context.Context, record models.HistoryRecord) (models.HistoryRecord, error) {
	const query = `INSERT INTO point_histories (id, user_id, delta, kind, occurred_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Delta, string(record.Kind), record.OccurredAt)
	if err != nil {
		return models.HistoryRecord{}, err
	}
	return record, nil
}

func (s *SQLitePointStore) HistoryListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error) {
	const query = `SELECT id, user_id, delta, kind, occurred_at FROM point_histories
	WHERE user_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var record models.HistoryRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.Delta, &record.Kind, &record.OccurredAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var _ interfaces.PointStore = (*SQLitePointStore)(nil)
