package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Eizen94/pokedex-api/internal/handler"
	"github.com/Eizen94/pokedex-api/internal/middleware"
)

// RegisterUser registers the user-scoped endpoints under /v1.  All routes
// require a valid JWT; favorites and profile documents are always resolved
// through the authenticated subject, so no route takes a user id parameter.
func RegisterUser(e *echo.Echo, f *handler.FavoriteHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	)

	g.GET("/favorites", f.List)
	g.POST("/favorites", f.Add)
	g.PATCH("/favorites/:pokemonID", f.Edit)
	g.DELETE("/favorites/:pokemonID", f.Remove)

	g.GET("/profile", p.Get)
	g.PUT("/profile", p.Update)
	g.PUT("/profile/settings", p.UpdateSettings)
}
