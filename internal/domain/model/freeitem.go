package model

import "time"

// FreeItem is a catalog entry that is currently claimable at zero cost.
// Items are re-derived from the storefront on every poll; only the ID is
// ever persisted (in the notification ledger).
type FreeItem struct {
	ID           string // Opaque offer ID assigned by the storefront catalog.
	Namespace    string // Product-family grouping; the ownership-matching key.
	Title        string
	Description  string
	URL          string    // Resolved product page URL.
	Slug         string    // Slug the URL was resolved from; empty when only the generic listing page applied.
	PromotionEnd time.Time // End of the current giveaway window; zero when upstream omits it.
}
