package handlers

import (
	"context"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

type offerUsecase interface {
	Next(ctx context.Context, courierID string) (*domain.Offer, error)
	Accept(ctx context.Context, courierID string) (*domain.Delivery, error)
	Reject(ctx context.Context, courierID, reason string) error
}

type deliveryUsecase interface {
	Pickup(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error)
	StartTransit(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error)
	Complete(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error)
	Cancel(ctx context.Context, courierID string, deliveryID int64, reason string) (*domain.Delivery, error)
}

type deliveryViews interface {
	Read(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error)
	RefreshCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error)
}
