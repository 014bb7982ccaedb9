// Package router wires URL paths to handlers and hangs the right
// middleware on each group: nothing here contains behavior of its
// own.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/luciamoran/table-reservation/internal/handler"
	"github.com/luciamoran/table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register,
// login, refresh and logout live under /v1/auth without a session;
// /v1/me requires a valid access token. Logout deliberately runs
// outside the JWT middleware so an expired session can still be
// closed with its refresh token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("STAFF", "CUSTOMER"))
	auth.GET("/me", a.Me)
}
