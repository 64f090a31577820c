// Command promowatch runs one cycle of the free-item notification
// pipeline. It is meant to be invoked by an external scheduler (cron or
// a systemd timer), exits 0 when the cycle completed -- including when
// there was nothing new to notify -- and non-zero when the catalog fetch
// or credential loading failed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/promowatch/internal/adapter/driven/cookiefile"
	"github.com/ericfisherdev/promowatch/internal/adapter/driven/mail"
	"github.com/ericfisherdev/promowatch/internal/adapter/driven/storefront"
	sqliteadapter "github.com/ericfisherdev/promowatch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/promowatch/internal/application"
	"github.com/ericfisherdev/promowatch/internal/config"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
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
	slog.Info("config loaded",
		"locale", cfg.Locale,
		"country", cfg.Country,
		"cookies_path", cfg.CookiesPath,
		"db_path", cfg.DBPath,
		"smtp_configured", cfg.HasSMTP(),
	)

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

	cookieStore := cookiefile.NewStore(cfg.CookiesPath)
	ledger := sqliteadapter.NewLedgerRepo(db)
	overrides := sqliteadapter.NewOwnedRepo(db)

	// The pipeline reuses one storefront client for both catalog and
	// entitlement calls; the bundle is re-loaded inside the service so a
	// missing file degrades instead of failing here.
	bundle, err := cookieStore.Load(ctx)
	if err != nil && !errors.Is(err, driven.ErrCookiesNotFound) {
		return err
	}
	store := storefront.NewClient(bundle, cfg.Country)

	var notifier driven.Notifier
	if cfg.HasSMTP() {
		notifier = mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPTo)
	} else {
		slog.Warn("smtp not configured, notifications will be logged but not delivered")
	}

	ownership := application.NewOwnershipService(store, overrides)
	svc := application.NewNotifyService(cookieStore, store, ownership, ledger, notifier, cfg.Locale, cfg.Country)

	return svc.Run(ctx)
}
