// Package ledger records which deliveries a courier has declined. Entries
// never expire on their own; only an explicit unmark removes them.
package ledger

import (
	"context"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

// Repo abstracts the durable rejection storage.
type Repo interface {
	Insert(ctx context.Context, courierID string, deliveryID int64) error
	Delete(ctx context.Context, courierID string, deliveryID int64) error
	Exists(ctx context.Context, courierID string, deliveryID int64) (bool, error)
	List(ctx context.Context, courierID string) ([]int64, error)
}

// Service is the rejection ledger.
type Service struct {
	repo   Repo
	logger logx.Logger
}

// NewService creates a ledger Service.
func NewService(repo Repo, logger logx.Logger) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{repo: repo, logger: logger}
}

// MarkRejected durably records the pair. Idempotent; persistence failures
// are returned for the caller to retry.
func (s *Service) MarkRejected(ctx context.Context, courierID string, deliveryID int64) error {
	if courierID == "" || deliveryID <= 0 {
		return apperr.ErrInvalid
	}
	return s.repo.Insert(ctx, courierID, deliveryID)
}

// UnmarkRejected durably removes the pair. Idempotent.
func (s *Service) UnmarkRejected(ctx context.Context, courierID string, deliveryID int64) error {
	if courierID == "" || deliveryID <= 0 {
		return apperr.ErrInvalid
	}
	return s.repo.Delete(ctx, courierID, deliveryID)
}

// IsRejected reports whether the courier declined the delivery. A read
// failure degrades to "not rejected": starving a courier of every offer is
// worse than re-showing a declined one.
func (s *Service) IsRejected(ctx context.Context, courierID string, deliveryID int64) bool {
	if courierID == "" || deliveryID <= 0 {
		return false
	}
	found, err := s.repo.Exists(ctx, courierID, deliveryID)
	if err != nil {
		s.logger.Warn("rejection read failed, treating as not rejected",
			logx.String("courier_id", courierID),
			logx.Int64("delivery_id", deliveryID),
			logx.Any("err", err),
		)
		return false
	}
	return found
}

// ListRejected returns the set of delivery ids the courier declined. A read
// failure degrades to the empty set, same as IsRejected.
func (s *Service) ListRejected(ctx context.Context, courierID string) map[int64]struct{} {
	set := make(map[int64]struct{})
	if courierID == "" {
		return set
	}
	ids, err := s.repo.List(ctx, courierID)
	if err != nil {
		s.logger.Warn("rejection list read failed, treating as empty",
			logx.String("courier_id", courierID),
			logx.Any("err", err),
		)
		return set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
