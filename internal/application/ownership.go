// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// OwnershipService merges the remote entitlement signal with the local
// manual-override set into a single owned/unowned verdict per item.
type OwnershipService struct {
	entitlements driven.EntitlementClient
	overrides    driven.OwnedStore
}

// NewOwnershipService creates a new OwnershipService.
func NewOwnershipService(entitlements driven.EntitlementClient, overrides driven.OwnedStore) *OwnershipService {
	return &OwnershipService{
		entitlements: entitlements,
		overrides:    overrides,
	}
}

// Resolve returns an owned verdict for every item. The check degrades
// rather than fails: without credentials, or when the account ID cannot
// be extracted, or when the entitlement query errors, every item is
// treated as unowned and the pipeline continues. Manual overrides always
// win over the entitlement signal.
//
// Matching is by namespace only. Entitlements also carry catalog item
// IDs, but those frequently fail to line up with catalog offers, so they
// are ignored. Known approximation: a namespace hosting several distinct
// items makes all of them look owned once one is.
func (s *OwnershipService) Resolve(ctx context.Context, items []model.FreeItem, bundle *model.CredentialBundle) map[string]bool {
	verdict := make(map[string]bool, len(items))
	for _, item := range items {
		verdict[item.ID] = false
	}

	if bundle != nil {
		s.applyEntitlements(ctx, items, bundle, verdict)
	} else {
		slog.Info("no credentials, skipping entitlement check")
	}

	s.applyOverrides(ctx, verdict)

	return verdict
}

// applyEntitlements fills the verdict from the remote entitlement query.
// Every failure path logs and leaves the verdict untouched (all unowned).
func (s *OwnershipService) applyEntitlements(ctx context.Context, items []model.FreeItem, bundle *model.CredentialBundle, verdict map[string]bool) {
	accountID, err := bundle.AccountID()
	if err != nil {
		slog.Warn("could not extract account ID, treating all items as unowned", "error", err)
		return
	}

	owned, err := s.entitlements.FetchOwnedNamespaces(ctx, accountID)
	if err != nil {
		slog.Warn("entitlement query failed, treating all items as unowned", "error", err)
		return
	}

	var ownedCount int
	for _, item := range items {
		if _, ok := owned[item.Namespace]; ok {
			verdict[item.ID] = true
			ownedCount++
		}
	}

	slog.Info("entitlements checked",
		"namespaces", len(owned),
		"items", len(items),
		"owned", ownedCount,
	)
}

// applyOverrides forces owned=true for manually marked items.
func (s *OwnershipService) applyOverrides(ctx context.Context, verdict map[string]bool) {
	ids, err := s.overrides.ListOwned(ctx)
	if err != nil {
		slog.Warn("could not load owned overrides", "error", err)
		return
	}

	for _, id := range ids {
		if _, tracked := verdict[id]; tracked {
			verdict[id] = true
		}
	}
}
