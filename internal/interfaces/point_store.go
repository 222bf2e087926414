package interfaces

import (
	"context"

	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

// PointStore is the persistence contract the ledger core depends on.
// Implementations must keep balances and history records keyed by user id;
// they do not enforce any business rule beyond that.
//
// AccountGet reports existence separately from the amount so that an
// account spent down to zero stays distinguishable from one that was never
// created. AccountSet assigns the absolute amount — it never adds.
type PointStore interface {
	AccountGet(ctx context.Context, userID int64) (models.Balance, bool, error)
	AccountSet(ctx context.Context, userID int64, amount int64) (models.Balance, error)
	HistoryAppend(ctx context.Context, record models.HistoryRecord) (models.HistoryRecord, error)
	HistoryListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error)
}
