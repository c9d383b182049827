package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates the remote store rejected an accept because another
// courier won the race (HTTP 409). Surfaced distinctly so the client can
// re-poll immediately instead of retrying the same offer.
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable indicates a transient I/O failure; the caller decides
// whether to retry.
var ErrUnavailable = errors.New("temporarily unavailable")

// ErrPayoutAccountRequired is returned when acceptance is short-circuited
// locally because the courier has no active payout account.
var ErrPayoutAccountRequired = errors.New("active payout account required")

// ErrInvalidTransition is returned when a delivery transition is requested
// from a status that is not a valid predecessor.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrCourierBusy is returned by offer discovery while the courier already
// holds an active delivery. Distinct from ErrNoOffer on purpose.
var ErrCourierBusy = errors.New("courier has an active delivery")

// ErrNoOffer is returned when discovery exhausts the pending page without a
// surviving candidate.
var ErrNoOffer = errors.New("no offer available")

// ErrOfferPending is returned when a new offer is presented while one is
// still unresolved.
var ErrOfferPending = errors.New("an offer is already presented")

// ErrOfferResolved is returned when accept or reject arrives after the
// presented offer was already resolved.
var ErrOfferResolved = errors.New("offer already resolved")
