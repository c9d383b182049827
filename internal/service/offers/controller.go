package offers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
	"github.com/fabio1974/courier-offer-engine/internal/pubsub"
)

const (
	defaultCountdown = 30 * time.Second
	notifyTimeout    = 5 * time.Second
	timeoutReason    = "timeout"
)

// presented tracks one courier's unresolved offer.
type presented struct {
	offer    domain.Offer
	timer    *time.Timer
	resolved bool
	inFlight bool
}

// Controller owns the accept/reject/expire state machine of presented
// offers, one unresolved offer per courier at a time.
type Controller struct {
	mu      sync.Mutex
	current map[string]*presented

	ledger      Ledger
	cache       CacheWriter
	remote      Remote
	eligibility Eligibility
	bus         *pubsub.Bus
	countdown   time.Duration
	logger      logx.Logger
	deadLetters prometheus.Counter

	// wg tracks fire-and-forget reject notifies so tests can drain them.
	wg sync.WaitGroup
}

// NewController creates an offer lifecycle Controller.
func NewController(ledger Ledger, cache CacheWriter, remote Remote, eligibility Eligibility, bus *pubsub.Bus, countdown time.Duration, logger logx.Logger, deadLetters prometheus.Counter) *Controller {
	if countdown <= 0 {
		countdown = defaultCountdown
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Controller{
		current:     make(map[string]*presented),
		ledger:      ledger,
		cache:       cache,
		remote:      remote,
		eligibility: eligibility,
		bus:         bus,
		countdown:   countdown,
		logger:      logger,
		deadLetters: deadLetters,
	}
}

// Present starts the countdown for an offer. While the courier's previous
// offer is unresolved, presenting another returns apperr.ErrOfferPending.
func (c *Controller) Present(offer domain.Offer) error {
	if offer.CourierID == "" || offer.DeliveryID <= 0 {
		return apperr.ErrInvalid
	}
	if offer.Countdown <= 0 {
		offer.Countdown = c.countdown
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.current[offer.CourierID]; ok && !cur.resolved {
		return apperr.ErrOfferPending
	}

	p := &presented{offer: offer}
	p.timer = time.AfterFunc(offer.Countdown, func() {
		c.expire(offer.CourierID, offer.DeliveryID)
	})
	c.current[offer.CourierID] = p

	c.logger.Info("offer presented",
		logx.String("event", "offer_presented"),
		logx.String("courier_id", offer.CourierID),
		logx.Int64("delivery_id", offer.DeliveryID),
		logx.Duration("countdown", offer.Countdown),
	)
	if c.bus != nil {
		c.bus.OfferPresented.Publish(offer)
	}
	return nil
}

// Current returns the courier's unresolved offer, or nil.
func (c *Controller) Current(courierID string) *domain.Offer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.current[courierID]; ok && !p.resolved {
		offer := p.offer
		return &offer
	}
	return nil
}

// Accept resolves the presented offer by claiming the delivery. The payout
// precondition is checked before the remote store is touched. Any failure
// resolves the offer as accept-failed (the delivery stays eligible for
// other couriers and is not recorded as rejected here) and the error is
// returned so the client can re-poll.
func (c *Controller) Accept(ctx context.Context, courierID string) (*domain.Delivery, error) {
	p, err := c.begin(courierID)
	if err != nil {
		return nil, err
	}
	deliveryID := p.offer.DeliveryID

	active, err := c.eligibility.HasActivePayoutAccount(ctx, courierID)
	if err != nil {
		c.resolve(courierID, p, domain.OfferAcceptFailed, "payout account check failed", false)
		return nil, fmt.Errorf("accept %d: payout check: %w", deliveryID, err)
	}
	if !active {
		c.resolve(courierID, p, domain.OfferAcceptFailed, "no active payout account", false)
		return nil, apperr.ErrPayoutAccountRequired
	}

	d, err := c.remote.Accept(ctx, deliveryID, courierID)
	if err != nil {
		reason := "accept failed"
		if errors.Is(err, apperr.ErrConflict) {
			reason = "taken by another courier"
		}
		c.resolve(courierID, p, domain.OfferAcceptFailed, reason, false)
		return nil, err
	}

	if err := c.cache.UpsertOne(ctx, courierID, domain.CacheActive, *d); err != nil {
		// the remote accept already happened; the guard refetches on miss
		c.logger.Warn("cache write after accept failed",
			logx.String("courier_id", courierID),
			logx.Int64("delivery_id", deliveryID),
			logx.Any("err", err),
		)
	}

	c.resolve(courierID, p, domain.OfferAccepted, "", false)
	if c.bus != nil {
		c.bus.DeliveryStatusChanged.Publish(*d)
	}
	return d, nil
}

// Reject resolves the presented offer as declined. The ledger write is
// authoritative: it must succeed (and is returned for caller retry when it
// does not), while the remote notify is fire-and-forget.
func (c *Controller) Reject(ctx context.Context, courierID, reason string) error {
	p, err := c.begin(courierID)
	if err != nil {
		return err
	}

	if err := c.ledger.MarkRejected(ctx, courierID, p.offer.DeliveryID); err != nil {
		c.abort(courierID, p)
		return fmt.Errorf("reject %d: %w", p.offer.DeliveryID, err)
	}

	c.resolve(courierID, p, domain.OfferRejected, reason, true)
	return nil
}

// expire fires when the countdown elapses with no user action and behaves
// exactly as Reject("timeout").
func (c *Controller) expire(courierID string, deliveryID int64) {
	c.mu.Lock()
	p, ok := c.current[courierID]
	if !ok || p.resolved || p.inFlight || p.offer.DeliveryID != deliveryID {
		c.mu.Unlock()
		return
	}
	p.inFlight = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := c.ledger.MarkRejected(ctx, courierID, deliveryID); err != nil {
		// no caller to retry an expiry; the offer will simply be
		// re-presented on a later poll
		c.logger.Warn("ledger write on offer expiry failed",
			logx.String("courier_id", courierID),
			logx.Int64("delivery_id", deliveryID),
			logx.Any("err", err),
		)
	}
	c.resolve(courierID, p, domain.OfferExpired, timeoutReason, true)
}

// begin claims the courier's unresolved offer for a terminal action.
// Whichever of accept, reject, or expiry begins first wins; the others see
// apperr.ErrOfferResolved and are no-ops.
func (c *Controller) begin(courierID string) (*presented, error) {
	if courierID == "" {
		return nil, apperr.ErrInvalid
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.current[courierID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if p.resolved || p.inFlight {
		return nil, apperr.ErrOfferResolved
	}
	p.inFlight = true
	p.timer.Stop()
	return p, nil
}

// abort returns a claimed offer to the presented state after a retriable
// local failure, rearming the countdown for the remaining budget.
func (c *Controller) abort(courierID string, p *presented) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.inFlight = false
	remaining := p.offer.Countdown - time.Since(p.offer.PresentedAt)
	if remaining < 0 {
		remaining = 0
	}
	p.timer = time.AfterFunc(remaining, func() {
		c.expire(courierID, p.offer.DeliveryID)
	})
}

// resolve finalizes the offer and publishes the outcome. When notifyRemote
// is set, the remote store is told about the rejection on a best-effort
// fire-and-forget basis; failures go to the dead-letter log and counter.
func (c *Controller) resolve(courierID string, p *presented, outcome domain.OfferOutcome, reason string, notifyRemote bool) {
	c.mu.Lock()
	p.resolved = true
	p.inFlight = false
	c.mu.Unlock()

	c.logger.Info("offer resolved",
		logx.String("event", "offer_resolved"),
		logx.String("courier_id", courierID),
		logx.Int64("delivery_id", p.offer.DeliveryID),
		logx.String("outcome", string(outcome)),
		logx.String("reason", reason),
	)

	if notifyRemote {
		deliveryID := p.offer.DeliveryID
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := c.remote.Reject(ctx, deliveryID, courierID, reason); err != nil {
				if c.deadLetters != nil {
					c.deadLetters.Inc()
				}
				c.logger.Error("reject notify dead-lettered",
					logx.String("event", "reject_notify_dead_letter"),
					logx.String("courier_id", courierID),
					logx.Int64("delivery_id", deliveryID),
					logx.String("reason", reason),
					logx.Any("err", err),
				)
			}
		}()
	}

	if c.bus != nil {
		c.bus.OfferResolved.Publish(domain.OfferResolution{
			DeliveryID: p.offer.DeliveryID,
			CourierID:  courierID,
			Outcome:    outcome,
			Reason:     reason,
		})
	}
}

// Wait blocks until in-flight reject notifies finish. Test helper.
func (c *Controller) Wait() { c.wg.Wait() }
