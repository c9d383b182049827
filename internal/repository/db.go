package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and pings a new pgx connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate creates the local-state tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS rejections (
            courier_id  TEXT        NOT NULL,
            delivery_id BIGINT      NOT NULL,
            rejected_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (courier_id, delivery_id)
        );

        CREATE TABLE IF NOT EXISTS cache_entries (
            courier_id  TEXT        NOT NULL,
            kind        TEXT        NOT NULL,
            stamped_at  TIMESTAMPTZ NOT NULL,
            ttl_seconds BIGINT      NOT NULL,
            payload     JSONB       NOT NULL,
            PRIMARY KEY (courier_id, kind)
        );
    `)
	return err
}
