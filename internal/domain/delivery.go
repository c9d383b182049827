package domain

import "time"

type (
	// Status represents the lifecycle status of a delivery.
	Status string
	// TransitionKind represents a courier-driven delivery status transition.
	TransitionKind string
	// CacheKind selects one of the per-courier cached delivery collections.
	CacheKind string
)

// List of cached collection kinds
const (
	CacheActive    CacheKind = "active"
	CacheCompleted CacheKind = "completed"
)

// Valid checks if the CacheKind is valid
func (k CacheKind) Valid() bool {
	return k == CacheActive || k == CacheCompleted
}

// Coordinates is a geographic point consumed from the remote store.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Delivery is the central entity synchronized between the remote store and
// the local cache.
type Delivery struct {
	ID                 int64       `json:"id"`
	CourierID          string      `json:"courier_id,omitempty"`
	Status             Status      `json:"status"`
	PickupLocation     Coordinates `json:"pickup_location"`
	DropoffLocation    Coordinates `json:"dropoff_location"`
	EstimatedPayment   float64     `json:"estimated_payment"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	AcceptedAt         *time.Time  `json:"accepted_at,omitempty"`
	PickedUpAt         *time.Time  `json:"picked_up_at,omitempty"`
	InTransitAt        *time.Time  `json:"in_transit_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
}

// Active reports whether the delivery occupies its courier.
func (d Delivery) Active() bool { return d.Status.Active() }

// MergeByPrecedence keeps whichever copy of a delivery carries the
// higher-precedence status; a tie keeps the incoming copy. Double-writes
// from a racing push event and a foreground poll are therefore safe in any
// arrival order.
func MergeByPrecedence(existing, incoming Delivery) Delivery {
	if existing.Status.Precedence() > incoming.Status.Precedence() {
		return existing
	}
	return incoming
}

// CacheEntry is a timestamped snapshot of one cached delivery collection.
type CacheEntry struct {
	CourierID  string
	Kind       CacheKind
	Timestamp  time.Time
	TTL        time.Duration
	Deliveries []Delivery
}

// Fresh reports whether the entry is still inside its staleness window.
func (e CacheEntry) Fresh(now time.Time) bool {
	return now.Sub(e.Timestamp) <= e.TTL
}
