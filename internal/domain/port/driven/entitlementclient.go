package driven

import "context"

// EntitlementClient queries which product namespaces an account holds
// rights to.
type EntitlementClient interface {
	// FetchOwnedNamespaces pages through the account's entitlements in a
	// single logical query and returns the set of owned namespaces.
	// Catalog item IDs present in the entitlement records are deliberately
	// not exposed: namespace membership is the only ownership signal the
	// resolver trusts.
	FetchOwnedNamespaces(ctx context.Context, accountID string) (map[string]struct{}, error)
}
