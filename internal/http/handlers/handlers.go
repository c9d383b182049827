// Package handlers contains the HTTP handlers of the offer engine.
package handlers

import (
	"net/http"

	"github.com/fabio1974/courier-offer-engine/internal/logx"
)

// Handlers carries the endpoints that do not belong to a use case.
type Handlers struct {
	logger logx.Logger
}

func New(logger logx.Logger) *Handlers {
	return &Handlers{logger: logger}
}

func (h *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

func (h *Handlers) HealthcheckHead(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.logger, w, r, http.StatusNotFound, "route not found")
}
