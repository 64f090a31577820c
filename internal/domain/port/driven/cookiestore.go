package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
)

// ErrCookiesNotFound indicates no credential bundle has been persisted yet.
// Callers treat this as "run unauthenticated", not as a failure.
var ErrCookiesNotFound = errors.New("cookie bundle not found")

// CookieStore persists the session credential bundle. Implementations
// perform filesystem writes only; extraction from a running browser is an
// external collaborator's job.
type CookieStore interface {
	// Load reads the persisted bundle. Returns ErrCookiesNotFound when no
	// bundle exists.
	Load(ctx context.Context) (*model.CredentialBundle, error)

	// Replace overwrites the persisted bundle atomically: concurrent
	// readers see either the old bundle or the new one, never a partial
	// write.
	Replace(ctx context.Context, bundle *model.CredentialBundle) error

	// Backup writes a timestamped snapshot of the current bundle and
	// prunes old snapshots by count. A no-op when no bundle exists.
	Backup(ctx context.Context) error
}
