package pnl

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index on active manual entries.
const uniqueViolation = "23505"

// ListActive returns active manual entries ordered by item id.
func (r *Repository) ListActive(ctx context.Context) ([]ManualEntry, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT item_id, description, category, amount, COALESCE(notes, ''), is_active,
       revision, COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at
FROM pnl_manual_entries
WHERE is_active
ORDER BY item_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ManualEntry
	for rows.Next() {
		var e ManualEntry
		if err := rows.Scan(&e.ItemID, &e.Description, &e.Category, &e.Amount, &e.Notes,
			&e.IsActive, &e.Revision, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetActive fetches one active entry by item id.
func (r *Repository) GetActive(ctx context.Context, itemID string) (ManualEntry, error) {
	if r == nil || r.pool == nil {
		return ManualEntry{}, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT item_id, description, category, amount, COALESCE(notes, ''), is_active,
       revision, COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at
FROM pnl_manual_entries
WHERE item_id = $1 AND is_active`
	var e ManualEntry
	err := r.pool.QueryRow(ctx, query, itemID).Scan(&e.ItemID, &e.Description, &e.Category,
		&e.Amount, &e.Notes, &e.IsActive, &e.Revision, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ManualEntry{}, fmt.Errorf("%w: %s", ErrManualEntryNotFound, itemID)
		}
		return ManualEntry{}, err
	}
	return e, nil
}

// CountActive counts active entries; zero means the catalog was never seeded.
func (r *Repository) CountActive(ctx context.Context) (int, error) {
	if r == nil || r.pool == nil {
		return 0, fmt.Errorf("pnl repo not initialised")
	}
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pnl_manual_entries WHERE is_active`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertCatalog inserts the seed catalog at zero amounts. A unique violation
// means another process seeded concurrently, which is treated as success:
// the partial unique index guarantees at most one active entry per item id
// either way.
func (r *Repository) InsertCatalog(ctx context.Context, items []CatalogItem, revision func() string) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("pnl repo not initialised")
	}
	const query = `
INSERT INTO pnl_manual_entries (item_id, description, category, amount, is_active, revision, created_by, created_at, updated_at)
VALUES ($1, $2, $3, 0, TRUE, $4, 'system', NOW(), NOW())`
	for _, item := range items {
		if _, err := r.pool.Exec(ctx, query, item.ItemID, item.Description, string(item.Category), revision()); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				continue
			}
			return err
		}
	}
	return nil
}

// UpdateAmount rewrites the amount, notes and revision of one active entry.
func (r *Repository) UpdateAmount(ctx context.Context, itemID string, amount float64, notes, updatedBy, newRevision string) (ManualEntry, error) {
	if r == nil || r.pool == nil {
		return ManualEntry{}, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
UPDATE pnl_manual_entries
SET amount = $2, notes = NULLIF($3, ''), updated_by = $4, revision = $5, updated_at = NOW()
WHERE item_id = $1 AND is_active
RETURNING item_id, description, category, amount, COALESCE(notes, ''), is_active,
          revision, COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at`
	var e ManualEntry
	err := r.pool.QueryRow(ctx, query, itemID, amount, notes, updatedBy, newRevision).Scan(
		&e.ItemID, &e.Description, &e.Category, &e.Amount, &e.Notes,
		&e.IsActive, &e.Revision, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ManualEntry{}, fmt.Errorf("%w: %s", ErrManualEntryNotFound, itemID)
		}
		return ManualEntry{}, err
	}
	return e, nil
}
