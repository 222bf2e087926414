package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

func openTestStore(t *testing.T) *SQLitePointStore {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "points.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAccountGet_AbsentVsZero(t *testing.T) {
	store := openTestStore(t)

	_, exists, err := store.AccountGet(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.AccountSet(context.Background(), 1, 0)
	require.NoError(t, err)

	balance, exists, err := store.AccountGet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(0), balance.Amount)
}

func TestAccountSet_UpsertAssigns(t *testing.T) {
	store := openTestStore(t)

	_, err := store.AccountSet(context.Background(), 1, 500)
	require.NoError(t, err)
	_, err = store.AccountSet(context.Background(), 1, 200)
	require.NoError(t, err)

	balance, exists, err := store.AccountGet(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, int64(200), balance.Amount)
}

func TestHistory_AppendAndListInOrder(t *testing.T) {
	store := openTestStore(t)

	now := time.Now().UTC()
	deltas := []int64{100, -50, 200}
	kinds := []models.TransactionKind{models.KindCharge, models.KindUse, models.KindCharge}

	for i, delta := range deltas {
		_, err := store.HistoryAppend(context.Background(), models.HistoryRecord{
			ID:         string(rune('a' + i)),
			UserID:     1,
			Delta:      delta,
			Kind:       kinds[i],
			OccurredAt: now, // identical timestamps: order must come from the seq column
		})
		require.NoError(t, err)
	}

	records, err := store.HistoryListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, delta := range deltas {
		assert.Equal(t, delta, records[i].Delta)
		assert.Equal(t, kinds[i], records[i].Kind)
	}
}

func TestHistoryListByUser_OtherUsersExcluded(t *testing.T) {
	store := openTestStore(t)

	_, err := store.HistoryAppend(context.Background(), models.HistoryRecord{
		ID: "a", UserID: 1, Delta: 100, Kind: models.KindCharge, OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = store.HistoryAppend(context.Background(), models.HistoryRecord{
		ID: "b", UserID: 2, Delta: 200, Kind: models.KindCharge, OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	records, err := store.HistoryListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(100), records[0].Delta)
}
