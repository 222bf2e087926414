package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/point-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/point-ledger-service/internal/models"
	"github.com/sheikh-saqib/point-ledger-service/internal/models/events"
)

// Per-charge bounds. A single charge below the minimum or above the
// maximum is rejected before any lock or store access.
const (
	MinChargeAmount int64 = 100
	MaxChargeAmount int64 = 500000
)

// Ledger is the concurrency-safe mutation core over a PointStore.
//
// Mutations on the same user id are serialized through a per-account lock;
// mutations on different ids proceed in parallel. Reads do not take the
// lock and see the most recently committed write.
type Ledger struct {
	store     interfaces.PointStore
	locks     *lockRegistry
	publisher interfaces.EventPublisher // optional
	lockWait  time.Duration             // 0 = wait indefinitely
	log       *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher makes the ledger emit a BalanceChanged event after every
// committed mutation.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithLockWait bounds how long a mutation waits for the per-account lock
// before failing with ErrLockTimeout. Zero waits indefinitely.
func WithLockWait(d time.Duration) Option {
	return func(l *Ledger) { l.lockWait = d }
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger creates a ledger core over the given store.
func NewLedger(store interfaces.PointStore, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		locks: newLockRegistry(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InquireBalance returns the current balance for userID.
// An account that was spent down to zero is still found; only an id the
// store has never held fails with ErrAccountNotFound.
func (l *Ledger) InquireBalance(ctx context.Context, userID int64) (models.Balance, error) {
	balance, exists, err := l.store.AccountGet(ctx, userID)
	if err != nil {
		return models.Balance{}, err
	}
	if !exists {
		return models.Balance{}, ErrAccountNotFound
	}
	return balance, nil
}

// InquireHistory returns all history records for userID in the order they
// were committed. An empty history fails with ErrAccountNotFound.
func (l *Ledger) InquireHistory(ctx context.Context, userID int64) ([]models.HistoryRecord, error) {
	records, err := l.store.HistoryListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrAccountNotFound
	}
	return records, nil
}

// Charge credits amount points to userID, creating the account on first
// charge. The amount must be within [MinChargeAmount, MaxChargeAmount];
// the bounds depend only on the request, so they are checked before the
// lock is taken.
func (l *Ledger) Charge(ctx context.Context, userID int64, amount int64) (models.Balance, error) {
	if amount < MinChargeAmount {
		return models.Balance{}, ErrAmountBelowMinimum
	}
	if amount > MaxChargeAmount {
		return models.Balance{}, ErrAmountAboveMaximum
	}

	balance, record, err := l.charge(ctx, userID, amount)
	if err != nil {
		return models.Balance{}, err
	}

	l.publish(ctx, balance, record)
	return balance, nil
}

// charge is the locked read-compute-write section of Charge.
func (l *Ledger) charge(ctx context.Context, userID int64, amount int64) (models.Balance, models.HistoryRecord, error) {
	lock := l.locks.get(userID)
	if err := lock.acquire(ctx, l.lockWait); err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}
	defer lock.release()

	// An absent account reads as zero: the first charge creates it.
	current, _, err := l.store.AccountGet(ctx, userID)
	if err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}

	updated, err := l.store.AccountSet(ctx, userID, current.Amount+amount)
	if err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}

	record, err := l.appendHistory(ctx, models.HistoryRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Delta:      amount,
		Kind:       models.KindCharge,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}
	return updated, record, nil
}

// Use debits amount points from userID. The amount must be positive (a
// zero or negative debit would turn into a hidden credit); like the charge
// bounds this depends only on the request and is checked before the lock.
// Fails with ErrAccountNotFound if the account was never created and
// ErrInsufficientBalance if it holds fewer points than requested.
func (l *Ledger) Use(ctx context.Context, userID int64, amount int64) (models.Balance, error) {
	if amount <= 0 {
		return models.Balance{}, ErrAmountNotPositive
	}

	balance, record, err := l.use(ctx, userID, amount)
	if err != nil {
		return models.Balance{}, err
	}

	l.publish(ctx, balance, record)
	return balance, nil
}

// use is the locked read-validate-write section of Use.
func (l *Ledger) use(ctx context.Context, userID int64, amount int64) (models.Balance, models.HistoryRecord, error) {
	lock := l.locks.get(userID)
	if err := lock.acquire(ctx, l.lockWait); err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}
	defer lock.release()

	current, exists, err := l.store.AccountGet(ctx, userID)
	if err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}
	if !exists {
		return models.Balance{}, models.HistoryRecord{}, ErrAccountNotFound
	}
	if current.Amount < amount {
		return models.Balance{}, models.HistoryRecord{}, ErrInsufficientBalance
	}

	updated, err := l.store.AccountSet(ctx, userID, current.Amount-amount)
	if err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}

	record, err := l.appendHistory(ctx, models.HistoryRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Delta:      -amount,
		Kind:       models.KindUse,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return models.Balance{}, models.HistoryRecord{}, err
	}
	return updated, record, nil
}

// appendHistory writes the history record for an already-committed balance
// write. The balance write is the commit point: a failed append is retried
// once while the lock is still held, and if the retry also fails the
// caller gets a PartialCommitError so the divergence is never silent.
func (l *Ledger) appendHistory(ctx context.Context, record models.HistoryRecord) (models.HistoryRecord, error) {
	appended, err := l.store.HistoryAppend(ctx, record)
	if err == nil {
		return appended, nil
	}

	l.log.Warn("history append failed, retrying",
		"user_id", record.UserID, "kind", record.Kind, "error", err)

	appended, err = l.store.HistoryAppend(ctx, record)
	if err == nil {
		return appended, nil
	}
	return models.HistoryRecord{}, &PartialCommitError{
		UserID: record.UserID,
		Kind:   record.Kind,
		Err:    err,
	}
}

// publish emits BalanceChanged outside the critical section. Failures are
// logged, never surfaced: the mutation is already committed.
func (l *Ledger) publish(ctx context.Context, balance models.Balance, record models.HistoryRecord) {
	if l.publisher == nil {
		return
	}

	event := events.BalanceChanged{
		RecordID:   record.ID,
		UserID:     record.UserID,
		Kind:       record.Kind,
		Delta:      record.Delta,
		NewAmount:  balance.Amount,
		OccurredAt: record.OccurredAt,
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.log.Warn("failed to publish balance change",
			"user_id", record.UserID, "kind", record.Kind, "error", err)
	}
}
