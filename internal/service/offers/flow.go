package offers

import (
	"context"
	"errors"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

// Flow combines discovery and the lifecycle controller into the single
// operation the session API exposes: "give me my current or next offer".
type Flow struct {
	poller *Poller
	ctrl   *Controller
}

// NewFlow creates a Flow.
func NewFlow(poller *Poller, ctrl *Controller) *Flow {
	return &Flow{poller: poller, ctrl: ctrl}
}

// Next returns the courier's unresolved offer if one is presented, and
// otherwise polls for a fresh candidate and presents it.
func (f *Flow) Next(ctx context.Context, courierID string) (*domain.Offer, error) {
	if cur := f.ctrl.Current(courierID); cur != nil {
		return cur, nil
	}

	offer, err := f.poller.Poll(ctx, courierID)
	if err != nil {
		return nil, err
	}

	if err := f.ctrl.Present(*offer); err != nil {
		// lost a race against a concurrent poll; its offer stands
		if errors.Is(err, apperr.ErrOfferPending) {
			if cur := f.ctrl.Current(courierID); cur != nil {
				return cur, nil
			}
		}
		return nil, err
	}
	return offer, nil
}

// Accept resolves the courier's presented offer by accepting it.
func (f *Flow) Accept(ctx context.Context, courierID string) (*domain.Delivery, error) {
	return f.ctrl.Accept(ctx, courierID)
}

// Reject resolves the courier's presented offer by declining it.
func (f *Flow) Reject(ctx context.Context, courierID, reason string) error {
	return f.ctrl.Reject(ctx, courierID, reason)
}
