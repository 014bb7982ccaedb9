package router

import (
	"github.com/labstack/echo/v4"

	"github.com/luciamoran/table-reservation/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints:
// the table catalog, menu specials and testimonials. viewCache is
// the shared response-cache middleware (route+query keyed); it
// degrades to a pass-through when Redis is absent.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, viewCache echo.MiddlewareFunc) {
	e.GET("/v1/tables", p.ListTables, viewCache)
	e.GET("/v1/menu/specials", p.ListMenuSpecials, viewCache)
	e.GET("/v1/testimonials", p.ListTestimonials, viewCache)
}
