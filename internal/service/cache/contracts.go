//go:generate mockgen -source=contracts.go -destination=cache_mocks_test.go -package=cache_test

package cache

import (
	"context"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

// EntryRepo abstracts the durable cache entry storage.
type EntryRepo interface {
	Upsert(ctx context.Context, e domain.CacheEntry) error
	Get(ctx context.Context, courierID string, kind domain.CacheKind) (*domain.CacheEntry, error)
	Delete(ctx context.Context, courierID string, kind domain.CacheKind) error
}

// RemoteReader abstracts the remote store reads used to refill the cache on
// a miss.
type RemoteReader interface {
	GetActive(ctx context.Context, courierID string) ([]domain.Delivery, error)
	GetCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error)
}
