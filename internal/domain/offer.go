package domain

import "time"

// Offer is a read-only, time-boxed projection of a PENDING delivery
// presented to one courier. Presenting it mutates nothing; only
// acceptance or rejection does.
type Offer struct {
	DeliveryID       int64
	CourierID        string
	PickupLocation   Coordinates
	DropoffLocation  Coordinates
	EstimatedPayment float64
	Countdown        time.Duration
	PresentedAt      time.Time
}

// OfferOutcome describes how a presented offer was resolved.
type OfferOutcome string

// List of offer outcomes
const (
	OfferAccepted     OfferOutcome = "accepted"
	OfferRejected     OfferOutcome = "rejected"
	OfferExpired      OfferOutcome = "expired"
	OfferAcceptFailed OfferOutcome = "accept_failed"
)

// OfferResolution is delivered to subscribers when an offer leaves the
// PRESENTED state.
type OfferResolution struct {
	DeliveryID int64
	CourierID  string
	Outcome    OfferOutcome
	Reason     string
}
