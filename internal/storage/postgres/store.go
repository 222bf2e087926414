package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/sheikh-saqib/point-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

// PostgresPointStore is a Postgres-backed implementation of
// interfaces.PointStore. Row presence in point_balances is the existence
// signal, so an account spent to zero stays found.
type PostgresPointStore struct {
	db *sql.DB
}

// NewPostgresPointStore wraps an open *sql.DB.
func NewPostgresPointStore(db *sql.DB) *PostgresPointStore {
	return &PostgresPointStore{db: db}
}

// EnsureSchema creates the two tables if they do not exist. The seq column
// on point_histories preserves commit order across equal timestamps.
func (p *PostgresPointStore) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS point_balances (
		user_id    BIGINT PRIMARY KEY,
		amount     BIGINT NOT NULL CHECK (amount >= 0),
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS point_histories (
		seq         BIGSERIAL PRIMARY KEY,
		id          TEXT NOT NULL UNIQUE,
		user_id     BIGINT NOT NULL,
		delta       BIGINT NOT NULL,
		kind        TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_point_histories_user ON point_histories (user_id, seq);`

	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresPointStore) AccountGet(ctx context.Context, userID int64) (models.Balance, bool, error) {
	const query = `SELECT user_id, amount, updated_at FROM point_balances WHERE user_id = $1`

	var balance models.Balance
	err := p.db.QueryRowContext(ctx, query, userID).
		Scan(&balance.UserID, &balance.Amount, &balance.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Balance{}, false, nil
	}
	if err != nil {
		return models.Balance{}, false, err
	}
	return balance, true, nil
}

// AccountSet upserts the absolute amount. The ON CONFLICT arm assigns, it
// never adds: the ledger core computed the new total already.
func (p *PostgresPointStore) AccountSet(ctx context.Context, userID int64, amount int64) (models.Balance, error) {
	const query = `INSERT INTO point_balances (user_id, amount, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at
	RETURNING user_id, amount, updated_at`

	var balance models.Balance
	err := p.db.QueryRowContext(ctx, query, userID, amount, time.Now().UTC()).
		Scan(&balance.UserID, &balance.Amount, &balance.UpdatedAt)
	if err != nil {
		return models.Balance{}, err
	}
	return balance, nil
}

func (p *PostgresPointStore) HistoryAppend(ctx context.Context, record models.HistoryRecord) (models.HistoryRecord, error) {
	const query = `INSERT INTO point_histories (id, user_id, delta, kind, occurred_at)
	VALUES ($1, $2, $3, $4, $5)`

	_, err := p.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Delta, string(record.Kind), record.OccurredAt)
	if err != nil {
		return models.HistoryRecord{}, err
	}
	return record, nil
}

func (p *PostgresPointStore) HistoryListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error) {
	const query = `SELECT id, user_id, delta, kind, occurred_at FROM point_histories
	WHERE user_id = $1 ORDER BY seq`

	rows, err := p.db.QueryContext(ctx, query, userID)
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

var _ interfaces.PointStore = (*PostgresPointStore)(nil)
