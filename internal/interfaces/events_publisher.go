package interfaces

import "context"

// EventPublisher delivers domain events to interested consumers.
// Publication is best-effort from the ledger's point of view: a failed
// publish never undoes a committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}
