package kafka

import (
	"strings"
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
	syncsvc "github.com/fabio1974/courier-offer-engine/internal/service/sync"
)

// EventDTO is the wire shape of a push delivery update
type EventDTO struct {
	CourierID string          `json:"courier_id"`
	Delivery  domain.Delivery `json:"delivery"`
	SentAt    time.Time       `json:"sent_at"`
}

// ToDomain converts EventDTO to a sync.Event
func ToDomain(dto EventDTO) syncsvc.Event {
	return syncsvc.Event{
		CourierID: strings.TrimSpace(dto.CourierID),
		Delivery:  dto.Delivery,
		SentAt:    dto.SentAt,
	}
}
