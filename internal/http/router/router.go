// Package router assembles the chi route tree of the offer engine.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fabio1974/courier-offer-engine/internal/http/handlers"
)

// Deps carries everything the route tree mounts.
type Deps struct {
	Base     *handlers.Handlers
	Offer    *handlers.OfferHandler
	Delivery *handlers.DeliveryHandler
	Registry *prometheus.Registry
}

func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/ping", deps.Base.Ping)
	r.Head("/healthcheck", deps.Base.HealthcheckHead)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Route("/couriers/{courierID}", func(r chi.Router) {
		r.Route("/offer", func(r chi.Router) {
			r.Get("/", deps.Offer.Next)
			r.Post("/accept", deps.Offer.Accept)
			r.Post("/reject", deps.Offer.Reject)
		})

		r.Get("/deliveries/active", deps.Delivery.List)
		r.Get("/deliveries/completed", deps.Delivery.List)
		r.Route("/deliveries/{deliveryID}", func(r chi.Router) {
			r.Post("/pickup", deps.Delivery.Pickup)
			r.Post("/transit", deps.Delivery.StartTransit)
			r.Post("/complete", deps.Delivery.Complete)
			r.Post("/cancel", deps.Delivery.Cancel)
		})
	})

	r.NotFound(deps.Base.NotFound)

	return r
}
