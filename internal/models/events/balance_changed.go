package events

import (
	"time"

	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

// BalanceChanged is published after a charge or use has been committed to
// both stores.
type BalanceChanged struct {
	RecordID   string                 `json:"record_id"`
	UserID     int64                  `json:"user_id"`
	Kind       models.TransactionKind `json:"kind"`
	Delta      int64                  `json:"delta"`
	NewAmount  int64                  `json:"new_amount"`
	OccurredAt time.Time              `json:"occurred_at"`
}
