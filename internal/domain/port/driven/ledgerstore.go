package driven

import "context"

// LedgerCapacity is the maximum number of item IDs the notification
// ledger retains. Inserts past capacity evict the oldest entries first.
const LedgerCapacity = 50

// LedgerStore is the bounded history of item IDs that have already been
// notified about.
type LedgerStore interface {
	// ListNotified returns the recorded item IDs in insertion order
	// (oldest first).
	ListNotified(ctx context.Context) ([]string, error)

	// Record appends the given IDs. IDs already present are not
	// re-appended (order of first appearance is preserved), then the
	// ledger is truncated to the LedgerCapacity most recent entries.
	//
	// Callers must invoke Record only after the notification delivery has
	// been confirmed successful; recording first would silently suppress
	// a legitimate retry after a crash.
	Record(ctx context.Context, ids []string) error
}
