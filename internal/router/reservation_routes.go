package router

import (
	"github.com/labstack/echo/v4"

	"github.com/luciamoran/table-reservation/internal/handler"
	"github.com/luciamoran/table-reservation/internal/middleware"
)

// RegisterReservations registers the customer reservation endpoints
// under /v1. Every route requires a valid JWT with the CUSTOMER role.
// Mutations additionally pass the rate limiter; the two read views
// pass the user-scoped response cache, whose keys the engine
// invalidates after successful mutations. Both middlewares are
// pass-throughs when Redis is absent.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, viewCache, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)

	g.POST("/reservations", h.Create, limiter)
	// PATCH without the path id serves form posts that carry
	// reservation_id in the body.
	g.PATCH("/reservations", h.Update, limiter)
	g.PATCH("/reservations/:id", h.Update, limiter)
	g.DELETE("/reservations/:id", h.Cancel, limiter)

	g.GET("/reservations", h.List, viewCache)
	g.GET("/reservations/:id", h.Get, viewCache)
}
