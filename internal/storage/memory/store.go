package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sheikh-saqib/point-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

// MemoryPointStore is an in-memory implementation of interfaces.PointStore.
// Balances live in a map keyed by user id, history in an append-only slice;
// both are guarded by one mutex so the store is safe for concurrent use on
// its own, independent of the ledger's per-account locking.
type MemoryPointStore struct {
	mu       sync.Mutex
	balances map[int64]models.Balance
	history  []models.HistoryRecord
}

// NewMemoryPointStore creates an empty in-memory store.
func NewMemoryPointStore() *MemoryPointStore {
	return &MemoryPointStore{
		balances: make(map[int64]models.Balance),
		history:  make([]models.HistoryRecord, 0),
	}
}

// AccountGet returns the balance for userID and whether it exists.
// Existence is map membership, not amount: a zero balance stays found.
func (m *MemoryPointStore) AccountGet(ctx context.Context, userID int64) (models.Balance, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, exists := m.balances[userID]
	return balance, exists, nil
}

// AccountSet assigns the absolute amount for userID, creating the record if
// needed, and returns the stored balance.
func (m *MemoryPointStore) AccountSet(ctx context.Context, userID int64, amount int64) (models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := models.Balance{
		UserID:    userID,
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
	}
	m.balances[userID] = balance
	return balance, nil
}

// HistoryAppend appends the record and returns it.
func (m *MemoryPointStore) HistoryAppend(ctx context.Context, record models.HistoryRecord) (models.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, record)
	return record, nil
}

// HistoryListByUser returns the user's records in insertion order.
// The result is a copy so callers cannot mutate internal state.
func (m *MemoryPointStore) HistoryListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.HistoryRecord
	for _, record := range m.history {
		if record.UserID == userID {
			result = append(result, record)
		}
	}
	return result, nil
}

// Compile-time check: MemoryPointStore implements PointStore.
var _ interfaces.PointStore = (*MemoryPointStore)(nil)
