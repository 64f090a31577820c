package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OwnedStore = (*OwnedRepo)(nil)

// OwnedRepo is the SQLite implementation of the OwnedStore port. The set
// is append-only in normal operation; Clear exists for the manual
// marking tool.
type OwnedRepo struct {
	db *DB
}

// NewOwnedRepo creates a new OwnedRepo backed by the given DB.
func NewOwnedRepo(db *DB) *OwnedRepo {
	return &OwnedRepo{db: db}
}

// ListOwned returns the manually marked item IDs in insertion order.
func (r *OwnedRepo) ListOwned(ctx context.Context) ([]string, error) {
	const query = `SELECT item_id FROM owned_items ORDER BY seq`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list owned items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owned item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owned items: %w", err)
	}
	return ids, nil
}

// MarkOwned adds the given IDs to the set. Idempotent -- already-marked
// IDs are silently skipped.
func (r *OwnedRepo) MarkOwned(ctx context.Context, ids ...string) error {
	const insert = `INSERT OR IGNORE INTO owned_items (item_id) VALUES (?)`
	for _, id := range ids {
		if _, err := r.db.Writer.ExecContext(ctx, insert, id); err != nil {
			return fmt.Errorf("mark item %s owned: %w", id, err)
		}
	}
	return nil
}

// Clear removes every marked ID.
func (r *OwnedRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM owned_items`); err != nil {
		return fmt.Errorf("clear owned items: %w", err)
	}
	return nil
}
