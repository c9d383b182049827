// Package progress drives an accepted delivery through pickup, transit and
// completion, mirroring every transition into the delivery cache.
package progress

import (
	"context"
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
	"github.com/fabio1974/courier-offer-engine/internal/pubsub"
)

// ActiveSource abstracts the guard lookup for the courier's active delivery.
type ActiveSource interface {
	GetActiveDelivery(ctx context.Context, courierID string) (*domain.Delivery, error)
}

// CacheStore abstracts the cache writes transitions perform.
type CacheStore interface {
	UpsertOne(ctx context.Context, courierID string, kind domain.CacheKind, d domain.Delivery) error
	Invalidate(ctx context.Context, courierID string, kind domain.CacheKind) error
}

// Remote abstracts the remote transition operation.
type Remote interface {
	Transition(ctx context.Context, deliveryID int64, courierID string, kind domain.TransitionKind, reason string) (*domain.Delivery, error)
}

// Controller is the delivery status state machine.
type Controller struct {
	guard  ActiveSource
	cache  CacheStore
	remote Remote
	bus    *pubsub.Bus
	logger logx.Logger
	now    func() time.Time
}

// NewController creates a delivery status Controller.
func NewController(guard ActiveSource, cache CacheStore, remote Remote, bus *pubsub.Bus, logger logx.Logger) *Controller {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Controller{
		guard:  guard,
		cache:  cache,
		remote: remote,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Pickup moves the courier's ACCEPTED delivery to PICKED_UP.
func (c *Controller) Pickup(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
	return c.transition(ctx, courierID, deliveryID, domain.TransitionPickup, "")
}

// StartTransit moves the courier's PICKED_UP delivery to IN_TRANSIT.
func (c *Controller) StartTransit(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
	return c.transition(ctx, courierID, deliveryID, domain.TransitionStartTransit, "")
}

// Complete moves the courier's IN_TRANSIT delivery to COMPLETED.
func (c *Controller) Complete(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
	return c.transition(ctx, courierID, deliveryID, domain.TransitionComplete, "")
}

// Cancel reopens the courier's active delivery to PENDING with the courier
// cleared, keeping an audit copy in the completed view, and immediately
// frees the guard by invalidating the active cache entry.
func (c *Controller) Cancel(ctx context.Context, courierID string, deliveryID int64, reason string) (*domain.Delivery, error) {
	return c.transition(ctx, courierID, deliveryID, domain.TransitionCancel, reason)
}

func (c *Controller) transition(ctx context.Context, courierID string, deliveryID int64, kind domain.TransitionKind, reason string) (*domain.Delivery, error) {
	if courierID == "" || deliveryID <= 0 {
		return nil, apperr.ErrInvalid
	}

	active, err := c.guard.GetActiveDelivery(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if active == nil || active.ID != deliveryID {
		return nil, apperr.ErrNotFound
	}
	if !kind.Allows(active.Status) {
		return nil, apperr.ErrInvalidTransition
	}

	// remote first: a remote failure leaves local state untouched and is
	// surfaced for caller-driven retry
	updated, err := c.remote.Transition(ctx, deliveryID, courierID, kind, reason)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.TransitionCancel:
		c.mirror(ctx, courierID, domain.CacheCompleted, c.auditCopy(*updated, courierID, reason))
		if err := c.cache.Invalidate(ctx, courierID, domain.CacheActive); err != nil {
			c.logger.Warn("active cache invalidation after cancel failed",
				logx.String("courier_id", courierID),
				logx.Int64("delivery_id", deliveryID),
				logx.Any("err", err),
			)
		}
	case domain.TransitionComplete:
		c.mirror(ctx, courierID, domain.CacheActive, *updated)
		c.mirror(ctx, courierID, domain.CacheCompleted, *updated)
	default:
		c.mirror(ctx, courierID, domain.CacheActive, *updated)
	}

	c.logger.Info("delivery transitioned",
		logx.String("event", "delivery_transitioned"),
		logx.String("courier_id", courierID),
		logx.Int64("delivery_id", deliveryID),
		logx.String("kind", string(kind)),
		logx.String("status", string(updated.Status)),
	)
	if c.bus != nil {
		c.bus.DeliveryStatusChanged.Publish(*updated)
	}
	return updated, nil
}

// auditCopy builds the historical CANCELLED record shown in the completed
// view; the live entity itself reopens as PENDING and unassigned.
func (c *Controller) auditCopy(reopened domain.Delivery, courierID, reason string) domain.Delivery {
	hist := reopened
	hist.Status = domain.StatusCancelled
	hist.CourierID = courierID
	if hist.CancelledAt == nil {
		now := c.now()
		hist.CancelledAt = &now
	}
	if hist.CancellationReason == "" {
		hist.CancellationReason = reason
	}
	return hist
}

func (c *Controller) mirror(ctx context.Context, courierID string, kind domain.CacheKind, d domain.Delivery) {
	if err := c.cache.UpsertOne(ctx, courierID, kind, d); err != nil {
		// remote is already authoritative; the next cache miss refetches
		c.logger.Warn("cache mirror after transition failed",
			logx.String("courier_id", courierID),
			logx.String("kind", string(kind)),
			logx.Int64("delivery_id", d.ID),
			logx.Any("err", err),
		)
	}
}
