package models

import "time"

// TransactionKind tags a history record as a credit or a debit.
type TransactionKind string

const (
	KindCharge TransactionKind = "CHARGE"
	KindUse    TransactionKind = "USE"
)

// HistoryRecord is one immutable log entry of a completed charge or use.
// The delta carries the sign: positive for CHARGE, negative for USE.
type HistoryRecord struct {
	ID         string          `json:"id"` // unique identifier
	UserID     int64           `json:"user_id"`
	Delta      int64           `json:"delta"`
	Kind       TransactionKind `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
}
