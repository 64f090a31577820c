// Command markowned manages the manual owned-overrides set. Marking an
// item owned stops future notifications for it regardless of what the
// entitlement query reports.
//
// Usage:
//
//	markowned <item-id> [<item-id>...]   mark items as owned
//	markowned -list                      print marked item IDs
//	markowned -clear                     remove all marks
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	sqliteadapter "github.com/ericfisherdev/promowatch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/promowatch/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	list := flag.Bool("list", false, "print marked item IDs")
	clear := flag.Bool("clear", false, "remove all marks")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		return 1
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err)
		return 1
	}
	defer db.Close()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		slog.Error("run migrations", "error", err)
		return 1
	}

	ctx := context.Background()
	repo := sqliteadapter.NewOwnedRepo(db)

	switch {
	case *list:
		ids, err := repo.ListOwned(ctx)
		if err != nil {
			slog.Error("list owned items", "error", err)
			return 1
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return 0

	case *clear:
		if err := repo.Clear(ctx); err != nil {
			slog.Error("clear owned items", "error", err)
			return 1
		}
		fmt.Println("cleared all owned marks")
		return 0

	default:
		ids := flag.Args()
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, "usage: markowned [-list|-clear] <item-id>...")
			return 2
		}
		if err := repo.MarkOwned(ctx, ids...); err != nil {
			slog.Error("mark items owned", "error", err)
			return 1
		}
		fmt.Printf("marked %d item(s) as owned\n", len(ids))
		return 0
	}
}
