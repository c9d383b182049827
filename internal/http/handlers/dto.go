package handlers

import (
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

type coordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type offerResponse struct {
	DeliveryID       int64          `json:"delivery_id"`
	PickupLocation   coordinatesDTO `json:"pickup_location"`
	DropoffLocation  coordinatesDTO `json:"dropoff_location"`
	EstimatedPayment float64        `json:"estimated_payment"`
	CountdownSeconds int            `json:"countdown_seconds"`
	ExpiresAt        time.Time      `json:"expires_at"`
}

func toOfferResponse(o domain.Offer) offerResponse {
	return offerResponse{
		DeliveryID:       o.DeliveryID,
		PickupLocation:   coordinatesDTO(o.PickupLocation),
		DropoffLocation:  coordinatesDTO(o.DropoffLocation),
		EstimatedPayment: o.EstimatedPayment,
		CountdownSeconds: int(o.Countdown / time.Second),
		ExpiresAt:        o.PresentedAt.Add(o.Countdown),
	}
}

type deliveryResponse struct {
	ID                 int64          `json:"id"`
	CourierID          string         `json:"courier_id,omitempty"`
	Status             string         `json:"status"`
	PickupLocation     coordinatesDTO `json:"pickup_location"`
	DropoffLocation    coordinatesDTO `json:"dropoff_location"`
	EstimatedPayment   float64        `json:"estimated_payment"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	AcceptedAt         *time.Time     `json:"accepted_at,omitempty"`
	PickedUpAt         *time.Time     `json:"picked_up_at,omitempty"`
	InTransitAt        *time.Time     `json:"in_transit_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
}

func toDeliveryResponse(d domain.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:                 d.ID,
		CourierID:          d.CourierID,
		Status:             string(d.Status),
		PickupLocation:     coordinatesDTO(d.PickupLocation),
		DropoffLocation:    coordinatesDTO(d.DropoffLocation),
		EstimatedPayment:   d.EstimatedPayment,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		AcceptedAt:         d.AcceptedAt,
		PickedUpAt:         d.PickedUpAt,
		InTransitAt:        d.InTransitAt,
		CompletedAt:        d.CompletedAt,
		CancelledAt:        d.CancelledAt,
		CancellationReason: d.CancellationReason,
	}
}

func toDeliveryResponses(ds []domain.Delivery) []deliveryResponse {
	out := make([]deliveryResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDeliveryResponse(d))
	}
	return out
}

type rejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}
