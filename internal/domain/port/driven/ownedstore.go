package driven

import "context"

// OwnedStore is the user-controlled set of item IDs manually marked as
// owned. An ID in this set always resolves to owned, regardless of what
// the entitlement query says.
type OwnedStore interface {
	// ListOwned returns the marked item IDs in insertion order.
	ListOwned(ctx context.Context) ([]string, error)

	// MarkOwned adds the given IDs to the set. Idempotent.
	MarkOwned(ctx context.Context, ids ...string) error

	// Clear removes every marked ID.
	Clear(ctx context.Context) error
}
