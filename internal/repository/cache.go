package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

// CacheRepo persists per-courier delivery collection snapshots.
type CacheRepo struct {
	db *pgxpool.Pool
}

// NewCacheRepo creates a new CacheRepo.
func NewCacheRepo(db *pgxpool.Pool) *CacheRepo {
	return &CacheRepo{db: db}
}

// Upsert replaces the entry for (courier, kind).
func (r *CacheRepo) Upsert(ctx context.Context, e domain.CacheEntry) error {
	payload, err := json.Marshal(e.Deliveries)
	if err != nil {
		return fmt.Errorf("marshal cache payload %s/%s: %w", e.CourierID, e.Kind, err)
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO cache_entries (courier_id, kind, stamped_at, ttl_seconds, payload)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (courier_id, kind) DO UPDATE
        SET stamped_at = EXCLUDED.stamped_at,
            ttl_seconds = EXCLUDED.ttl_seconds,
            payload = EXCLUDED.payload
    `, e.CourierID, string(e.Kind), e.Timestamp, int64(e.TTL/time.Second), payload)
	if err != nil {
		return fmt.Errorf("upsert cache entry %s/%s: %w", e.CourierID, e.Kind, err)
	}
	return nil
}

// Get returns the entry for (courier, kind), or nil when none exists.
func (r *CacheRepo) Get(ctx context.Context, courierID string, kind domain.CacheKind) (*domain.CacheEntry, error) {
	var (
		stampedAt  time.Time
		ttlSeconds int64
		payload    []byte
	)
	err := r.db.QueryRow(ctx, `
        SELECT stamped_at, ttl_seconds, payload
        FROM cache_entries
        WHERE courier_id = $1 AND kind = $2
    `, courierID, string(kind)).Scan(&stampedAt, &ttlSeconds, &payload)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache entry %s/%s: %w", courierID, kind, err)
	}

	var deliveries []domain.Delivery
	if err := json.Unmarshal(payload, &deliveries); err != nil {
		return nil, fmt.Errorf("unmarshal cache payload %s/%s: %w", courierID, kind, err)
	}
	return &domain.CacheEntry{
		CourierID:  courierID,
		Kind:       kind,
		Timestamp:  stampedAt,
		TTL:        time.Duration(ttlSeconds) * time.Second,
		Deliveries: deliveries,
	}, nil
}

// Delete removes the entry for (courier, kind). Missing entries are a no-op.
func (r *CacheRepo) Delete(ctx context.Context, courierID string, kind domain.CacheKind) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM cache_entries
        WHERE courier_id = $1 AND kind = $2
    `, courierID, string(kind))
	if err != nil {
		return fmt.Errorf("delete cache entry %s/%s: %w", courierID, kind, err)
	}
	return nil
}
