package pubsub

import (
	"sync"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

const defaultBuffer = 16

// Topic fans one event type out to any number of independent subscribers.
// Publish never blocks: a subscriber that stops draining loses events
// rather than stalling the engine.
type Topic[T any] struct {
	mu   sync.RWMutex
	subs map[int]chan T
	next int
	buf  int
}

// NewTopic creates a topic with the given per-subscriber buffer.
func NewTopic[T any](buffer int) *Topic[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Topic[T]{subs: make(map[int]chan T), buf: buffer}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function. Cancel closes the channel.
func (t *Topic[T]) Subscribe() (<-chan T, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	ch := make(chan T, t.buf)
	t.subs[id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if sub, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber.
func (t *Topic[T]) Publish(ev T) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Bus bundles the notification topics the presentation layer consumes.
type Bus struct {
	OfferPresented        *Topic[domain.Offer]
	OfferResolved         *Topic[domain.OfferResolution]
	DeliveryStatusChanged *Topic[domain.Delivery]
}

// NewBus creates a Bus with default buffers.
func NewBus() *Bus {
	return &Bus{
		OfferPresented:        NewTopic[domain.Offer](defaultBuffer),
		OfferResolved:         NewTopic[domain.OfferResolution](defaultBuffer),
		DeliveryStatusChanged: NewTopic[domain.Delivery](defaultBuffer),
	}
}
