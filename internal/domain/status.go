package domain

// List of possible delivery statuses
const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusInTransit Status = "IN_TRANSIT"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// List of allowed statuses
var allowedStatuses = [...]Status{
	StatusPending, StatusAccepted, StatusPickedUp,
	StatusInTransit, StatusCompleted, StatusCancelled,
}

// precedence is the total order used to resolve concurrent cache writes:
// a copy further along the lifecycle must never be overwritten by an
// earlier one. Terminal statuses share the top rank.
var precedence = map[Status]int{
	StatusPending:   0,
	StatusAccepted:  1,
	StatusPickedUp:  2,
	StatusInTransit: 3,
	StatusCompleted: 4,
	StatusCancelled: 4,
}

// transitions lists the allowed predecessor statuses per transition kind.
var transitions = map[TransitionKind][]Status{
	TransitionPickup:       {StatusAccepted},
	TransitionStartTransit: {StatusPickedUp},
	TransitionComplete:     {StatusInTransit},
	TransitionCancel:       {StatusAccepted, StatusPickedUp, StatusInTransit},
}

// Valid checks if the Status is valid
func (s Status) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Precedence returns the rank of the status in the merge order.
// Unknown statuses rank below PENDING so they never replace real progress.
func (s Status) Precedence() int {
	p, ok := precedence[s]
	if !ok {
		return -1
	}
	return p
}

// Active reports whether a delivery in this status occupies its courier.
func (s Status) Active() bool {
	switch s {
	case StatusAccepted, StatusPickedUp, StatusInTransit:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends the delivery lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// List of delivery transition kinds
const (
	TransitionPickup       TransitionKind = "pickup"
	TransitionStartTransit TransitionKind = "startTransit"
	TransitionComplete     TransitionKind = "complete"
	TransitionCancel       TransitionKind = "cancel"
)

// Allows reports whether the transition may be taken from the given status.
func (k TransitionKind) Allows(from Status) bool {
	for _, s := range transitions[k] {
		if s == from {
			return true
		}
	}
	return false
}

// Valid checks if the TransitionKind is valid
func (k TransitionKind) Valid() bool {
	_, ok := transitions[k]
	return ok
}
