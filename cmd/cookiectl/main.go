// Command cookiectl inspects and manages the persisted cookie bundle.
//
// Usage:
//
//	cookiectl [info]          show bundle status (default)
//	cookiectl check           exit 1 when the bundle needs a refresh
//	cookiectl backup          snapshot the bundle into the backup directory
//	cookiectl import <file>   validate, back up, and atomically install a
//	                          browser-exported cookie file
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ericfisherdev/promowatch/internal/adapter/driven/cookiefile"
	"github.com/ericfisherdev/promowatch/internal/config"
	"github.com/ericfisherdev/promowatch/internal/domain/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		return 1
	}

	ctx := context.Background()
	store := cookiefile.NewStore(cfg.CookiesPath)

	command := "info"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "info":
		return info(ctx, store)
	case "check":
		return check(ctx, store)
	case "backup":
		if err := store.Backup(ctx); err != nil {
			slog.Error("backup failed", "error", err)
			return 1
		}
		fmt.Println("backup written")
		return 0
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: cookiectl import <file>")
			return 2
		}
		return importBundle(ctx, store, os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: cookiectl [info|check|backup|import <file>]\n", command)
		return 2
	}
}

func info(ctx context.Context, store *cookiefile.Store) int {
	bundle, err := store.Load(ctx)
	if err != nil {
		fmt.Printf("no usable cookie bundle: %v\n", err)
		return 1
	}

	now := time.Now()
	fmt.Printf("cookies: %d\n", len(bundle.Cookies))
	fmt.Printf("domains: %v\n", bundle.Domains())
	for _, status := range bundle.CriticalStatus(now) {
		switch {
		case !status.Found:
			fmt.Printf("  %s: MISSING\n", status.Name)
		case status.Session:
			fmt.Printf("  %s: session cookie\n", status.Name)
		default:
			fmt.Printf("  %s: expires in %d days\n", status.Name, status.DaysLeft)
		}
	}

	if refresh, reason := bundle.NeedsRefresh(now); refresh {
		fmt.Printf("refresh needed: %s\n", reason)
	} else {
		fmt.Printf("%s\n", reason)
	}
	return 0
}

// check is the scriptable variant of info: silent on stdout semantics,
// exit status says whether a refresh is due.
func check(ctx context.Context, store *cookiefile.Store) int {
	bundle, err := store.Load(ctx)
	if err != nil {
		fmt.Printf("refresh needed: %v\n", err)
		return 1
	}

	if refresh, reason := bundle.NeedsRefresh(time.Now()); refresh {
		fmt.Printf("refresh needed: %s\n", reason)
		return 1
	}
	fmt.Println("cookies are fresh")
	return 0
}

func importBundle(ctx context.Context, store *cookiefile.Store, path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read import file", "error", err)
		return 1
	}

	var cookies []model.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		slog.Error("parse import file", "path", path, "error", err)
		return 1
	}

	bundle := &model.CredentialBundle{Cookies: cookies}
	if valid, reason := bundle.Validate(time.Now()); !valid {
		slog.Error("import rejected", "reason", reason)
		return 1
	}

	if err := store.Backup(ctx); err != nil {
		slog.Error("backup before import failed", "error", err)
		return 1
	}
	if err := store.Replace(ctx, bundle); err != nil {
		slog.Error("install imported bundle", "error", err)
		return 1
	}

	fmt.Printf("imported %d cookies\n", len(cookies))
	return 0
}
