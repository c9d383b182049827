// Package sync applies push-delivered delivery updates to the local cache.
// Push and foreground polling deliberately converge on the same
// precedence-merge write, so their arrival order never matters.
package sync

import (
	"context"
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
	"github.com/fabio1974/courier-offer-engine/internal/pubsub"
)

// Event is a single push-delivered delivery update.
type Event struct {
	CourierID string          `json:"courier_id"`
	Delivery  domain.Delivery `json:"delivery"`
	SentAt    time.Time       `json:"sent_at"`
}

// CacheWriter abstracts the cache merge the processor performs.
type CacheWriter interface {
	UpsertOne(ctx context.Context, courierID string, kind domain.CacheKind, d domain.Delivery) error
}

// Processor merges push events into the delivery cache.
type Processor struct {
	cache  CacheWriter
	bus    *pubsub.Bus
	logger logx.Logger
}

// NewProcessor creates a push-update Processor.
func NewProcessor(cache CacheWriter, bus *pubsub.Bus, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Processor{cache: cache, bus: bus, logger: logger}
}

// Handle merges a single event. Unknown statuses are dropped rather than
// retried: they can never merge meaningfully.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if e.CourierID == "" || e.Delivery.ID <= 0 {
		return nil
	}
	if !e.Delivery.Status.Valid() {
		p.logger.Warn("push event with unknown status dropped",
			logx.String("courier_id", e.CourierID),
			logx.Int64("delivery_id", e.Delivery.ID),
			logx.String("status", string(e.Delivery.Status)),
		)
		return nil
	}

	if err := p.cache.UpsertOne(ctx, e.CourierID, domain.CacheActive, e.Delivery); err != nil {
		return err
	}
	if e.Delivery.Status.Terminal() {
		if err := p.cache.UpsertOne(ctx, e.CourierID, domain.CacheCompleted, e.Delivery); err != nil {
			return err
		}
	}

	if p.bus != nil {
		p.bus.DeliveryStatusChanged.Publish(e.Delivery)
	}
	return nil
}
