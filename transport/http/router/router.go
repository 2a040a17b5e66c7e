package router

import (
	"voyage/internal/handlers/appointment"
	"voyage/internal/handlers/booking"
	"voyage/internal/handlers/corporate"
	"voyage/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Appointment appointment.Handler
	Booking     booking.Handler
	Corporate   corporate.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Auth           middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.Auth.APIKey, r.Auth.Auth, r.Auth.RBAC)

		r.DomainHandlers.Appointment.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Corporate.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, auth middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Auth:           auth,
	}
}
