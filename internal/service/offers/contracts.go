//go:generate mockgen -source=contracts.go -destination=offers_mocks_test.go -package=offers_test

package offers

import (
	"context"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

// Guard abstracts the active-delivery singleton check.
type Guard interface {
	HasActiveDelivery(ctx context.Context, courierID string) (bool, error)
}

// Ledger abstracts the subset of rejection ledger operations the offer flow
// needs.
type Ledger interface {
	MarkRejected(ctx context.Context, courierID string, deliveryID int64) error
	ListRejected(ctx context.Context, courierID string) map[int64]struct{}
}

// Remote abstracts the remote store operations the offer flow needs.
type Remote interface {
	ListPending(ctx context.Context, limit int) ([]domain.Delivery, error)
	Accept(ctx context.Context, deliveryID int64, courierID string) (*domain.Delivery, error)
	Reject(ctx context.Context, deliveryID int64, courierID, reason string) error
}

// CacheWriter abstracts the single cache write acceptance performs.
type CacheWriter interface {
	UpsertOne(ctx context.Context, courierID string, kind domain.CacheKind, d domain.Delivery) error
}

// Eligibility abstracts the payout account precondition provider.
type Eligibility interface {
	HasActivePayoutAccount(ctx context.Context, courierID string) (bool, error)
}
