package deliverystore

import (
	"context"
	"errors"
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig describes the retry budget of the RetryingStore.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingStore retries the read operations of a Store with exponential
// backoff. Writes (Accept, Reject, Transition) pass through untouched:
// retrying those belongs to the caller, which knows whether the user still
// wants the action.
type RetryingStore struct {
	next    Store
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingStore wraps next with read retries. Returns nil when next is nil.
func NewRetryingStore(next Store, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingStore {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingStore{next: next, logger: logger, retries: retries, cfg: cfg}
}

// ListPending retries the underlying read on transient failure.
func (s *RetryingStore) ListPending(ctx context.Context, limit int) ([]domain.Delivery, error) {
	return retryRead(ctx, s, "ListPending", func() ([]domain.Delivery, error) {
		return s.next.ListPending(ctx, limit)
	})
}

// GetActive retries the underlying read on transient failure.
func (s *RetryingStore) GetActive(ctx context.Context, courierID string) ([]domain.Delivery, error) {
	return retryRead(ctx, s, "GetActive", func() ([]domain.Delivery, error) {
		return s.next.GetActive(ctx, courierID)
	})
}

// GetCompleted retries the underlying read on transient failure.
func (s *RetryingStore) GetCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error) {
	return retryRead(ctx, s, "GetCompleted", func() ([]domain.Delivery, error) {
		return s.next.GetCompleted(ctx, courierID)
	})
}

// Accept passes through without retry.
func (s *RetryingStore) Accept(ctx context.Context, deliveryID int64, courierID string) (*domain.Delivery, error) {
	return s.next.Accept(ctx, deliveryID, courierID)
}

// Reject passes through without retry.
func (s *RetryingStore) Reject(ctx context.Context, deliveryID int64, courierID, reason string) error {
	return s.next.Reject(ctx, deliveryID, courierID, reason)
}

// Transition passes through without retry.
func (s *RetryingStore) Transition(ctx context.Context, deliveryID int64, courierID string, kind domain.TransitionKind, reason string) (*domain.Delivery, error) {
	return s.next.Transition(ctx, deliveryID, courierID, kind, reason)
}

func retryRead[T any](ctx context.Context, s *RetryingStore, method string, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == s.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(s.cfg.BaseDelay, s.cfg.MaxDelay, attempt)
		if s.retries != nil {
			s.retries.Inc()
		}
		s.logger.Warn("delivery store retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return zero, lastErr
}

// isRetryable reports whether a failure is worth another read attempt.
func isRetryable(err error) bool {
	return errors.Is(err, apperr.ErrUnavailable)
}

// backoff computes the retry delay for the given attempt.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
