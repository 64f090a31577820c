package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// NotifyService runs the free-item detection and notification pipeline:
// fetch the catalog, resolve ownership, compute the not-yet-notified
// delta, deliver the digest, and only then record the delivery in the
// ledger.
type NotifyService struct {
	cookies   driven.CookieStore
	catalog   driven.CatalogClient
	ownership *OwnershipService
	ledger    driven.LedgerStore
	notifier  driven.Notifier // nil disables delivery; the ledger is then left untouched.
	locale    string
	country   string
}

// NewNotifyService creates a NotifyService with all required dependencies.
// notifier may be nil when delivery is not configured.
func NewNotifyService(
	cookies driven.CookieStore,
	catalog driven.CatalogClient,
	ownership *OwnershipService,
	ledger driven.LedgerStore,
	notifier driven.Notifier,
	locale, country string,
) *NotifyService {
	return &NotifyService{
		cookies:   cookies,
		catalog:   catalog,
		ownership: ownership,
		ledger:    ledger,
		notifier:  notifier,
		locale:    locale,
		country:   country,
	}
}

// Run executes one pipeline cycle. Catalog and credential-load failures
// are fatal for the run; an absent credential bundle is not (the
// ownership check degrades to all-unowned). "Nothing new to notify" is a
// successful run.
func (s *NotifyService) Run(ctx context.Context) error {
	start := time.Now()

	bundle, err := s.loadBundle(ctx)
	if err != nil {
		return err
	}

	items, err := s.catalog.FetchFreeItems(ctx, s.locale, s.country)
	if err != nil {
		return fmt.Errorf("fetch free items: %w", err)
	}
	slog.Info("catalog fetched", "free_items", len(items))

	if len(items) == 0 {
		slog.Info("no current promotions")
		return nil
	}

	verdict := s.ownership.Resolve(ctx, items, bundle)

	var unowned []model.FreeItem
	for _, item := range items {
		if verdict[item.ID] {
			slog.Info("already owned", "title", item.Title, "id", item.ID)
			continue
		}
		unowned = append(unowned, item)
	}

	if len(unowned) == 0 {
		slog.Info("all free items already owned")
		return nil
	}

	notified, err := s.ledger.ListNotified(ctx)
	if err != nil {
		return fmt.Errorf("load notification ledger: %w", err)
	}

	fresh := Delta(notified, unowned)
	if len(fresh) == 0 {
		slog.Info("no new items, all already notified", "unowned", len(unowned))
		return nil
	}

	for _, item := range fresh {
		slog.Info("new free item", "title", item.Title, "url", item.URL)
	}

	if s.notifier == nil {
		slog.Warn("notification delivery not configured, skipping send; ledger left unchanged")
		return nil
	}

	subject, textBody, htmlBody := ComposeDigest(fresh, time.Now())
	if err := s.notifier.Send(ctx, subject, textBody, htmlBody); err != nil {
		// Do not record: an unrecorded failure retries on the next run,
		// a recorded one is lost forever.
		return fmt.Errorf("send notification: %w", err)
	}

	ids := make([]string, len(fresh))
	for i, item := range fresh {
		ids[i] = item.ID
	}
	if err := s.ledger.Record(ctx, ids); err != nil {
		return fmt.Errorf("record notified items: %w", err)
	}

	slog.Info("notification cycle complete",
		"new_items", len(fresh),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// loadBundle loads the credential bundle, treating absence as "run
// unauthenticated" and anything else as fatal. An invalid bundle is
// reported but still used; individual calls will fail soft downstream.
func (s *NotifyService) loadBundle(ctx context.Context) (*model.CredentialBundle, error) {
	bundle, err := s.cookies.Load(ctx)
	if errors.Is(err, driven.ErrCookiesNotFound) {
		slog.Info("no cookie bundle, ownership check will be skipped")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cookie bundle: %w", err)
	}

	if refresh, reason := bundle.NeedsRefresh(time.Now()); refresh {
		slog.Warn("cookie bundle needs refresh", "reason", reason)
	}

	return bundle, nil
}

// Delta returns the candidates whose ID is not yet in the ledger,
// preserving candidate order.
func Delta(notified []string, candidates []model.FreeItem) []model.FreeItem {
	seen := make(map[string]struct{}, len(notified))
	for _, id := range notified {
		seen[id] = struct{}{}
	}

	var fresh []model.FreeItem
	for _, item := range candidates {
		if _, ok := seen[item.ID]; !ok {
			fresh = append(fresh, item)
		}
	}
	return fresh
}
