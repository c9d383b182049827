package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

// Guard derives the singleton-active-delivery view from the cache. It has
// no state of its own: every call recomputes from the latest cache read.
type Guard struct {
	store  *Store
	logger logx.Logger
	faults prometheus.Counter
}

// NewGuard creates a Guard over the given cache store.
func NewGuard(store *Store, logger logx.Logger, faults prometheus.Counter) *Guard {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Guard{store: store, logger: logger, faults: faults}
}

// HasActiveDelivery reports whether the courier currently holds a
// non-terminal delivery.
func (g *Guard) HasActiveDelivery(ctx context.Context, courierID string) (bool, error) {
	d, err := g.GetActiveDelivery(ctx, courierID)
	if err != nil {
		return false, err
	}
	return d != nil, nil
}

// GetActiveDelivery returns the courier's single active delivery, or nil.
// Observing more than one is a consistency fault: it is logged, counted,
// and defensively resolved to the most recently accepted delivery so the
// courier is never blocked.
func (g *Guard) GetActiveDelivery(ctx context.Context, courierID string) (*domain.Delivery, error) {
	if courierID == "" {
		return nil, apperr.ErrInvalid
	}
	deliveries, err := g.store.Read(ctx, courierID, domain.CacheActive)
	if err != nil {
		return nil, err
	}

	var active []domain.Delivery
	for _, d := range deliveries {
		if d.Active() {
			active = append(active, d)
		}
	}
	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		return &active[0], nil
	}

	if g.faults != nil {
		g.faults.Inc()
	}
	g.logger.Error("active delivery consistency fault",
		logx.String("courier_id", courierID),
		logx.Int("active_count", len(active)),
	)

	latest := active[0]
	for _, d := range active[1:] {
		if acceptedAfter(d, latest) {
			latest = d
		}
	}
	return &latest, nil
}

func acceptedAfter(a, b domain.Delivery) bool {
	if a.AcceptedAt == nil {
		return false
	}
	if b.AcceptedAt == nil {
		return true
	}
	return a.AcceptedAt.After(*b.AcceptedAt)
}
