// Package cache keeps the per-courier view of active and completed
// deliveries consistent with the remote store under a bounded staleness
// window. It is the sole writer of cache entries; every other component
// goes through it.
package cache

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

const defaultTTL = 30 * time.Minute

// Store is the TTL-bounded delivery cache.
type Store struct {
	repo   EntryRepo
	remote RemoteReader
	ttl    time.Duration
	clock  Clock
	logger logx.Logger
	reads  *prometheus.CounterVec
}

// NewStore creates a Store. A nil clock falls back to wall time and a
// non-positive ttl to 30 minutes.
func NewStore(repo EntryRepo, remote RemoteReader, ttl time.Duration, clock Clock, logger logx.Logger, reads *prometheus.CounterVec) *Store {
	if clock == nil {
		clock = RealClock{}
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Store{repo: repo, remote: remote, ttl: ttl, clock: clock, logger: logger, reads: reads}
}

// Put replaces the entry for (courier, kind), stamping it with the current
// time and the configured TTL.
func (s *Store) Put(ctx context.Context, courierID string, kind domain.CacheKind, deliveries []domain.Delivery) error {
	if courierID == "" || !kind.Valid() {
		return apperr.ErrInvalid
	}
	return s.repo.Upsert(ctx, domain.CacheEntry{
		CourierID:  courierID,
		Kind:       kind,
		Timestamp:  s.clock.Now().UTC(),
		TTL:        s.ttl,
		Deliveries: deliveries,
	})
}

// Get returns the cached collection, or ok=false on a miss. A stale entry
// counts as a miss and is evicted as a side effect.
func (s *Store) Get(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, bool, error) {
	if courierID == "" || !kind.Valid() {
		return nil, false, apperr.ErrInvalid
	}
	entry, err := s.repo.Get(ctx, courierID, kind)
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		s.countRead("miss")
		return nil, false, nil
	}
	if !entry.Fresh(s.clock.Now()) {
		s.countRead("miss")
		if dErr := s.repo.Delete(ctx, courierID, kind); dErr != nil {
			s.logger.Warn("stale cache eviction failed",
				logx.String("courier_id", courierID),
				logx.String("kind", string(kind)),
				logx.Any("err", dErr),
			)
		}
		return nil, false, nil
	}
	s.countRead("hit")
	return entry.Deliveries, true, nil
}

// UpsertOne merges a single delivery into the entry for (courier, kind)
// using the status-precedence rule, so a racing push event and foreground
// poll can never regress recorded progress. A missing or stale entry is
// started fresh with just the incoming delivery.
func (s *Store) UpsertOne(ctx context.Context, courierID string, kind domain.CacheKind, d domain.Delivery) error {
	if courierID == "" || !kind.Valid() {
		return apperr.ErrInvalid
	}
	entry, err := s.repo.Get(ctx, courierID, kind)
	if err != nil {
		return err
	}

	var deliveries []domain.Delivery
	if entry != nil && entry.Fresh(s.clock.Now()) {
		deliveries = entry.Deliveries
	}

	merged := false
	for i, existing := range deliveries {
		if existing.ID == d.ID {
			deliveries[i] = domain.MergeByPrecedence(existing, d)
			merged = true
			break
		}
	}
	if !merged {
		deliveries = append(deliveries, d)
	}
	sort.Slice(deliveries, func(i, j int) bool { return deliveries[i].ID < deliveries[j].ID })

	return s.Put(ctx, courierID, kind, deliveries)
}

// Invalidate force-expires the entry for (courier, kind).
func (s *Store) Invalidate(ctx context.Context, courierID string, kind domain.CacheKind) error {
	if courierID == "" || !kind.Valid() {
		return apperr.ErrInvalid
	}
	return s.repo.Delete(ctx, courierID, kind)
}

// Read is the local-first consumer path: cached data when fresh, otherwise
// a remote fetch whose result is cached and returned.
func (s *Store) Read(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
	deliveries, ok, err := s.Get(ctx, courierID, kind)
	if err != nil {
		return nil, err
	}
	if ok {
		return deliveries, nil
	}
	return s.refetch(ctx, courierID, kind)
}

// RefreshCompleted bypasses the cache for the completed collection: a
// just-finished delivery must never hide behind a fresh-enough snapshot.
func (s *Store) RefreshCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error) {
	if courierID == "" {
		return nil, apperr.ErrInvalid
	}
	return s.refetch(ctx, courierID, domain.CacheCompleted)
}

func (s *Store) refetch(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
	var (
		deliveries []domain.Delivery
		err        error
	)
	switch kind {
	case domain.CacheActive:
		deliveries, err = s.remote.GetActive(ctx, courierID)
	case domain.CacheCompleted:
		deliveries, err = s.remote.GetCompleted(ctx, courierID)
	default:
		return nil, apperr.ErrInvalid
	}
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, courierID, kind, deliveries); err != nil {
		// a failed cache write must not hide a successful remote read
		s.logger.Warn("cache write after refetch failed",
			logx.String("courier_id", courierID),
			logx.String("kind", string(kind)),
			logx.Any("err", err),
		)
	}
	return deliveries, nil
}

func (s *Store) countRead(result string) {
	if s.reads != nil {
		s.reads.WithLabelValues(result).Inc()
	}
}
