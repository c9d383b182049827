package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepo persists per-courier rejected delivery ids.
type LedgerRepo struct {
	db *pgxpool.Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(db *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Insert records the (courier, delivery) pair. Re-inserting is a no-op.
func (r *LedgerRepo) Insert(ctx context.Context, courierID string, deliveryID int64) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO rejections (courier_id, delivery_id)
        VALUES ($1, $2)
        ON CONFLICT (courier_id, delivery_id) DO NOTHING
    `, courierID, deliveryID)
	if err != nil {
		return fmt.Errorf("insert rejection %s/%d: %w", courierID, deliveryID, err)
	}
	return nil
}

// Delete removes the (courier, delivery) pair. Deleting a missing pair is a no-op.
func (r *LedgerRepo) Delete(ctx context.Context, courierID string, deliveryID int64) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM rejections
        WHERE courier_id = $1 AND delivery_id = $2
    `, courierID, deliveryID)
	if err != nil {
		return fmt.Errorf("delete rejection %s/%d: %w", courierID, deliveryID, err)
	}
	return nil
}

// Exists reports whether the pair is recorded.
func (r *LedgerRepo) Exists(ctx context.Context, courierID string, deliveryID int64) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM rejections
            WHERE courier_id = $1 AND delivery_id = $2
        )
    `, courierID, deliveryID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check rejection %s/%d: %w", courierID, deliveryID, err)
	}
	return found, nil
}

// List returns every delivery id the courier has rejected.
func (r *LedgerRepo) List(ctx context.Context, courierID string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
        SELECT delivery_id FROM rejections
        WHERE courier_id = $1
        ORDER BY delivery_id
    `, courierID)
	if err != nil {
		return nil, fmt.Errorf("list rejections %s: %w", courierID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rejection %s: %w", courierID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rejections %s: %w", courierID, err)
	}
	return ids, nil
}
