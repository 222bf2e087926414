package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

func TestAccountGet_AbsentVsZero(t *testing.T) {
	store := NewMemoryPointStore()

	_, exists, err := store.AccountGet(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.AccountSet(context.Background(), 1, 0)
	require.NoError(t, err)

	balance, exists, err := store.AccountGet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, exists, "a zero balance must stay distinguishable from absent")
	assert.Equal(t, int64(0), balance.Amount)
}

func TestAccountSet_AssignsNotAdds(t *testing.T) {
	store := NewMemoryPointStore()

	_, err := store.AccountSet(context.Background(), 1, 500)
	require.NoError(t, err)
	balance, err := store.AccountSet(context.Background(), 1, 200)
	require.NoError(t, err)

	assert.Equal(t, int64(200), balance.Amount)
}

func TestHistoryListByUser_FiltersAndOrders(t *testing.T) {
	store := NewMemoryPointStore()

	for i, userID := range []int64{1, 2, 1, 1, 2} {
		_, err := store.HistoryAppend(context.Background(), models.HistoryRecord{
			ID:         string(rune('a' + i)),
			UserID:     userID,
			Delta:      int64(100 * (i + 1)),
			Kind:       models.KindCharge,
			OccurredAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	records, err := store.HistoryListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(100), records[0].Delta)
	assert.Equal(t, int64(300), records[1].Delta)
	assert.Equal(t, int64(400), records[2].Delta)
}

func TestHistoryListByUser_Empty(t *testing.T) {
	store := NewMemoryPointStore()

	records, err := store.HistoryListByUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, records)
}
