package handlers

import (
	"net/http"
	"path"

	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

// DeliveryHandler serves delivery progression and cached list views.
type DeliveryHandler struct {
	svc    deliveryUsecase
	views  deliveryViews
	logger logx.Logger
}

func NewDeliveryHandler(svc deliveryUsecase, views deliveryViews, logger logx.Logger) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, views: views, logger: logger}
}

type transitionFunc func(r *http.Request, courierID string, deliveryID int64) (*domain.Delivery, error)

func (h *DeliveryHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	courierID, err := courierFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	deliveryID, err := deliveryFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	delivery, err := fn(r, courierID, deliveryID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryResponse(*delivery))
}

func (h *DeliveryHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, courierID string, deliveryID int64) (*domain.Delivery, error) {
		return h.svc.Pickup(r.Context(), courierID, deliveryID)
	})
}

func (h *DeliveryHandler) StartTransit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, courierID string, deliveryID int64) (*domain.Delivery, error) {
		return h.svc.StartTransit(r.Context(), courierID, deliveryID)
	})
}

func (h *DeliveryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, courierID string, deliveryID int64) (*domain.Delivery, error) {
		return h.svc.Complete(r.Context(), courierID, deliveryID)
	})
}

func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	courierID, err := courierFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	deliveryID, err := deliveryFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req cancelRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "cancellation reason is required")
		return
	}

	delivery, err := h.svc.Cancel(r.Context(), courierID, deliveryID, req.Reason)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryResponse(*delivery))
}

// List serves the cached active or completed collection of a courier.
// ?refresh=1 on the completed view bypasses the cache.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	courierID, err := courierFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	kind := domain.CacheKind(path.Base(r.URL.Path))
	if !kind.Valid() {
		writeError(h.logger, w, r, http.StatusBadRequest, "unknown delivery collection")
		return
	}

	var (
		deliveries []domain.Delivery
		readErr    error
	)
	if kind == domain.CacheCompleted && r.URL.Query().Get("refresh") == "1" {
		deliveries, readErr = h.views.RefreshCompleted(r.Context(), courierID)
	} else {
		deliveries, readErr = h.views.Read(r.Context(), courierID, kind)
	}
	if readErr != nil {
		writeDomainError(h.logger, w, r, readErr)
		return
	}

	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryResponses(deliveries))
}
