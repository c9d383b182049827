package offers

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

const defaultPageSize = 1000

// Poller discovers at most one presentable offer per invocation: the most
// recently updated PENDING delivery the courier has not rejected, provided
// the courier is free. Polling is read-only; nothing is mutated until the
// courier acts on the offer.
type Poller struct {
	guard     Guard
	ledger    Ledger
	remote    Remote
	pageSize  int
	countdown time.Duration
	logger    logx.Logger
	polls     *prometheus.CounterVec
	now       func() time.Time
}

// NewPoller creates a Poller.
func NewPoller(guard Guard, ledger Ledger, remote Remote, pageSize int, countdown time.Duration, logger logx.Logger, polls *prometheus.CounterVec) *Poller {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if countdown <= 0 {
		countdown = defaultCountdown
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Poller{
		guard:     guard,
		ledger:    ledger,
		remote:    remote,
		pageSize:  pageSize,
		countdown: countdown,
		logger:    logger,
		polls:     polls,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Poll returns the next offer for the courier, apperr.ErrCourierBusy while
// an active delivery is held, or apperr.ErrNoOffer when the pending page
// has no surviving candidate. Busy and empty are distinct outcomes on
// purpose: the client renders them differently.
func (p *Poller) Poll(ctx context.Context, courierID string) (*domain.Offer, error) {
	if courierID == "" {
		return nil, apperr.ErrInvalid
	}

	busy, err := p.guard.HasActiveDelivery(ctx, courierID)
	if err != nil {
		p.countPoll("error")
		return nil, err
	}
	if busy {
		p.countPoll("busy")
		return nil, apperr.ErrCourierBusy
	}

	pending, err := p.remote.ListPending(ctx, p.pageSize)
	if err != nil {
		p.countPoll("error")
		return nil, err
	}
	sortNewestFirst(pending)

	rejected := p.ledger.ListRejected(ctx, courierID)
	for _, d := range pending {
		if d.Status != domain.StatusPending {
			continue
		}
		if _, skip := rejected[d.ID]; skip {
			continue
		}
		p.countPoll("presented")
		return &domain.Offer{
			DeliveryID:       d.ID,
			CourierID:        courierID,
			PickupLocation:   d.PickupLocation,
			DropoffLocation:  d.DropoffLocation,
			EstimatedPayment: d.EstimatedPayment,
			Countdown:        p.countdown,
			PresentedAt:      p.now(),
		}, nil
	}

	p.countPoll("empty")
	return nil, apperr.ErrNoOffer
}

// IsNoOffer reports whether the poll error is one of the two expected
// empty-handed outcomes.
func IsNoOffer(err error) bool {
	return errors.Is(err, apperr.ErrNoOffer) || errors.Is(err, apperr.ErrCourierBusy)
}

// sortNewestFirst orders by last update descending, ties by id ascending,
// regardless of how the remote page arrived.
func sortNewestFirst(deliveries []domain.Delivery) {
	sort.SliceStable(deliveries, func(i, j int) bool {
		if deliveries[i].UpdatedAt.Equal(deliveries[j].UpdatedAt) {
			return deliveries[i].ID < deliveries[j].ID
		}
		return deliveries[i].UpdatedAt.After(deliveries[j].UpdatedAt)
	})
}

func (p *Poller) countPoll(outcome string) {
	if p.polls != nil {
		p.polls.WithLabelValues(outcome).Inc()
	}
}
