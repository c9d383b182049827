package handlers

import (
	"net/http"

	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

// OfferHandler serves the offer session endpoints of one courier.
type OfferHandler struct {
	svc    offerUsecase
	logger logx.Logger
}

func NewOfferHandler(svc offerUsecase, logger logx.Logger) *OfferHandler {
	return &OfferHandler{svc: svc, logger: logger}
}

// Next returns the currently presented offer, discovering a fresh one when
// none is on the table.
func (h *OfferHandler) Next(w http.ResponseWriter, r *http.Request) {
	courierID, err := courierFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.svc.Next(r.Context(), courierID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, r, http.StatusOK, toOfferResponse(*offer))
}

func (h *OfferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	courierID, err := courierFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	delivery, err := h.svc.Accept(r.Context(), courierID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, r, http.StatusOK, toDeliveryResponse(*delivery))
}

func (h *OfferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	courierID, err := courierFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req rejectRequest
	if r.ContentLength > 0 {
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}
	}

	if err := h.svc.Reject(r.Context(), courierID, req.Reason); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
