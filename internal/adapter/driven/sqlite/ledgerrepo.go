package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LedgerStore = (*LedgerRepo)(nil)

// LedgerRepo is the SQLite implementation of the LedgerStore port.
// Insertion order is the autoincrement seq column, so discovery order
// survives restarts.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo creates a new LedgerRepo backed by the given DB.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// ListNotified returns all recorded item IDs, oldest first.
func (r *LedgerRepo) ListNotified(ctx context.Context) ([]string, error) {
	const query = `SELECT item_id FROM notified_items ORDER BY seq`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notified items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan notified item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notified items: %w", err)
	}
	return ids, nil
}

// Record appends the given IDs, skipping ones already present, then
// truncates the ledger to the most recent LedgerCapacity entries by
// dropping from the front. The append and the truncation commit together.
func (r *LedgerRepo) Record(ctx context.Context, ids []string) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `INSERT OR IGNORE INTO notified_items (item_id) VALUES (?)`
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, insert, id); err != nil {
			return fmt.Errorf("record notified item %s: %w", id, err)
		}
	}

	const prune = `DELETE FROM notified_items
		WHERE seq NOT IN (SELECT seq FROM notified_items ORDER BY seq DESC LIMIT ?)`
	if _, err := tx.ExecContext(ctx, prune, driven.LedgerCapacity); err != nil {
		return fmt.Errorf("prune notification ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger record: %w", err)
	}
	return nil
}
