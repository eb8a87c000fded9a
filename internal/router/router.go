// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Eizen94/pokedex-api/internal/handler"
	"github.com/Eizen94/pokedex-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: exchanges the old refresh token for a new pair.
	g.POST("/refresh", a.Refresh)
	// Non-rotating: issues a fresh access token for an existing refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh_token body or a bearer header, so it
	// lives outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the public catalog browse endpoints.  The Redis
// response cache and the token-bucket limiter wrap these routes; both
// degrade to no-ops when Redis is unavailable.  The admin cache flush is
// JWT-protected and restricted to the ADMIN role.
func RegisterCatalog(e *echo.Echo, p *handler.PokemonHandler, cacheMW, limitMW echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group("/v1", limitMW, cacheMW)
	g.GET("/pokemon", p.List)
	g.GET("/pokemon/:id", p.Detail)

	admin := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.POST("/catalog/cache/flush", p.FlushCache)
}
