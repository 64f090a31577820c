// Command claimctl attempts a best-effort automated claim of every
// currently-free item the account does not own. Claim failures are
// per-item and do not affect the exit code; only catalog or credential
// failures are fatal.
package main

import (
	"context"
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/promowatch/internal/adapter/driven/cookiefile"
	"github.com/ericfisherdev/promowatch/internal/adapter/driven/storefront"
	sqliteadapter "github.com/ericfisherdev/promowatch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/promowatch/internal/application"
	"github.com/ericfisherdev/promowatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Claiming is pointless without a session; unlike the notify
	// pipeline, a missing bundle is fatal here.
	cookieStore := cookiefile.NewStore(cfg.CookiesPath)
	bundle, err := cookieStore.Load(ctx)
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	store := storefront.NewClient(bundle, cfg.Country)
	overrides := sqliteadapter.NewOwnedRepo(db)
	ownership := application.NewOwnershipService(store, overrides)

	items, err := store.FetchFreeItems(ctx, cfg.Locale, cfg.Country)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		slog.Info("no current promotions")
		return nil
	}

	verdict := ownership.Resolve(ctx, items, bundle)
	candidates := items[:0:0]
	for _, item := range items {
		if !verdict[item.ID] {
			candidates = append(candidates, item)
		}
	}
	if len(candidates) == 0 {
		slog.Info("all free items already owned")
		return nil
	}

	claimer := application.NewClaimService(store, cfg.ClaimDelayMin, cfg.ClaimDelayMax)
	results := claimer.ClaimAll(ctx, candidates)

	claimed, alreadyOwned, failed := application.Summarize(results)
	slog.Info("claim run complete",
		"claimed", len(claimed),
		"already_owned", len(alreadyOwned),
		"failed", len(failed),
	)
	for _, r := range failed {
		slog.Warn("claim failed", "title", r.Title, "detail", r.Detail)
	}

	// Claimed and already-owned items are marked in the overrides so the
	// notifier stops reporting them even before the entitlement query
	// catches up.
	var ownedNow []string
	for _, r := range append(claimed, alreadyOwned...) {
		ownedNow = append(ownedNow, r.ItemID)
	}
	if len(ownedNow) > 0 {
		if err := overrides.MarkOwned(ctx, ownedNow...); err != nil {
			slog.Error("could not mark claimed items owned", "error", err)
		}
	}

	return nil
}
