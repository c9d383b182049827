package deliverystore

import (
	"context"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

// Store is the contract against the authoritative remote delivery store.
type Store interface {
	// ListPending returns PENDING deliveries ordered most-recently-updated
	// first, ties broken by id ascending, at most limit entries.
	ListPending(ctx context.Context, limit int) ([]domain.Delivery, error)
	// GetActive returns the courier's non-terminal deliveries.
	GetActive(ctx context.Context, courierID string) ([]domain.Delivery, error)
	// GetCompleted returns the courier's delivery history.
	GetCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error)
	// Accept claims a pending delivery for the courier. A lost race maps to
	// apperr.ErrConflict.
	Accept(ctx context.Context, deliveryID int64, courierID string) (*domain.Delivery, error)
	// Reject notifies the store that the courier declined the delivery.
	Reject(ctx context.Context, deliveryID int64, courierID, reason string) error
	// Transition applies a courier-driven status transition and returns the
	// authoritative delivery.
	Transition(ctx context.Context, deliveryID int64, courierID string, kind domain.TransitionKind, reason string) (*domain.Delivery, error)
}
