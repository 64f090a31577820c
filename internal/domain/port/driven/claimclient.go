package driven

import (
	"context"
	"errors"
)

// ErrClaimRejected indicates the storefront accepted the request but
// refused the order at the application level (captcha wall, region lock,
// offer no longer free).
var ErrClaimRejected = errors.New("claim rejected by storefront")

// ClaimClient performs checkout operations for zero-cost offers.
type ClaimClient interface {
	// OfferOwned reports whether the account already owns the offer.
	// known is false when the storefront could not say either way; owned
	// is only meaningful when known is true.
	OfferOwned(ctx context.Context, namespace, offerID string) (owned, known bool, err error)

	// PlaceFreeOrder issues the single-shot free-order mutation.
	// Application-level refusals are reported as ErrClaimRejected.
	PlaceFreeOrder(ctx context.Context, namespace, offerID string) error

	// PlaceOrderFallback runs the two-phase preview-then-confirm checkout.
	// The two phases execute back to back within one logical transaction;
	// the returned error names the phase that failed.
	PlaceOrderFallback(ctx context.Context, namespace, offerID string) error
}
