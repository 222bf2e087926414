package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/point-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/point-ledger-service/internal/models"
	"github.com/sheikh-saqib/point-ledger-service/internal/storage/memory"
)

func TestConcurrentCharges_NoLostUpdates(t *testing.T) {
	store := memory.NewMemoryPointStore()
	l := NewLedger(store)

	const (
		goroutines   = 50
		chargeAmount = int64(100)
	)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Charge(context.Background(), 1, chargeAmount)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := l.InquireBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines)*chargeAmount, balance.Amount)

	records, err := l.InquireHistory(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, goroutines)
}

func TestConcurrentChargesAndUses_ExactFinalBalance(t *testing.T) {
	store := memory.NewMemoryPointStore()
	l := NewLedger(store)

	const (
		pairs        = 25
		initial      = int64(100000)
		chargeAmount = int64(300)
		useAmount    = int64(200)
	)

	_, err := l.Charge(context.Background(), 1, initial)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := l.Charge(context.Background(), 1, chargeAmount)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := l.Use(context.Background(), 1, useAmount)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := l.InquireBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, initial+pairs*(chargeAmount-useAmount), balance.Amount)

	records, err := l.InquireHistory(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1+2*pairs)
}

func TestConcurrentMutations_IndependentAccounts(t *testing.T) {
	store := memory.NewMemoryPointStore()
	l := NewLedger(store)

	const (
		accounts     = 10
		perAccount   = 10
		chargeAmount = int64(100)
	)

	var wg sync.WaitGroup
	for id := int64(1); id <= accounts; id++ {
		for i := 0; i < perAccount; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, err := l.Charge(context.Background(), userID, chargeAmount)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	for id := int64(1); id <= accounts; id++ {
		balance, err := l.InquireBalance(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(perAccount)*chargeAmount, balance.Amount, "account %d", id)
	}
}

func TestMutation_NotBlockedByUnrelatedAccountLock(t *testing.T) {
	store := memory.NewMemoryPointStore()
	l := NewLedger(store, WithLockWait(time.Second))

	// Account 2's lock is held for the whole test.
	lock := l.locks.get(2)
	require.NoError(t, lock.acquire(context.Background(), 0))
	defer lock.release()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := l.Charge(context.Background(), 1, 100)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("charge on account 1 blocked behind account 2's lock")
	}
}

// slowSetStore stretches the window between the balance read and the write.
// Without per-account serialization two concurrent mutations would read the
// same current amount and one update would be lost.
type slowSetStore struct {
	interfaces.PointStore
	delay time.Duration
}

func (s *slowSetStore) AccountSet(ctx context.Context, userID int64, amount int64) (models.Balance, error) {
	time.Sleep(s.delay)
	return s.PointStore.AccountSet(ctx, userID, amount)
}

func TestConcurrentCharges_NoInterleavedCriticalSections(t *testing.T) {
	store := &slowSetStore{
		PointStore: memory.NewMemoryPointStore(),
		delay:      5 * time.Millisecond,
	}
	l := NewLedger(store)

	const goroutines = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Charge(context.Background(), 1, 100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := l.InquireBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*100), balance.Amount)
}
